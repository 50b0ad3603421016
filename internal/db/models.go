package db

import "time"

// Vehicle types
const (
	VehicleTypeCar  = "car"
	VehicleTypeBike = "bike"
)

// Booking lifecycle statuses. Completed and cancelled are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Payment statuses, an independent axis from the booking status.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Display statuses derived from the clock, never persisted.
const (
	DisplayUpcoming  = "upcoming"
	DisplayOngoing   = "ongoing"
	DisplayCompleted = "completed"
	DisplayCancelled = "cancelled"
)

type Vehicle struct {
	ID           string
	Name         string
	Type         string
	HourlyRate   int
	Rating       float64
	Seats        int
	Transmission string
	Fuel         string
	Available    bool
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CustomerDetails is a snapshot taken at booking time. It is intentionally
// not a reference to the users table: later profile edits must not rewrite
// past bookings.
type CustomerDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type Booking struct {
	ID              string
	VehicleID       string
	UserID          string
	StartTime       time.Time
	EndTime         time.Time
	TotalPrice      int
	Status          string
	PaymentStatus   string
	Customer        CustomerDetails
	StripeSessionID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// bookingTransitions are the only allowed persisted status changes.
var bookingTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from one persisted status
// to another. Reschedule is not represented here; it re-enters pending
// through its own path.
func CanTransition(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Modifiable reports whether the booking can still be cancelled or
// rescheduled.
func (b *Booking) Modifiable() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// DisplayStatus computes the user-facing status from the clock. A cancelled
// booking stays cancelled regardless of its window.
func (b *Booking) DisplayStatus(now time.Time) string {
	if b.Status == StatusCancelled {
		return DisplayCancelled
	}
	switch {
	case now.Before(b.StartTime):
		return DisplayUpcoming
	case now.After(b.EndTime):
		return DisplayCompleted
	default:
		return DisplayOngoing
	}
}
