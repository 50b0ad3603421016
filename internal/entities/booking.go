package entities

import "time"

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type CreateBookingRequest struct {
	VehicleID string          `json:"vehicle_id"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Customer  CustomerDetails `json:"customer"`
}

type RescheduleBookingRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type AvailabilityRequest struct {
	VehicleID string    `json:"vehicle_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}

// BookingResponse is a booking resolved for display: the vehicle snapshot is
// nil when the vehicle no longer exists, and DisplayStatus is derived from
// the clock on every read.
type BookingResponse struct {
	ID            string           `json:"id"`
	VehicleID     string           `json:"vehicle_id"`
	UserID        string           `json:"user_id"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	TotalPrice    int              `json:"total_price"`
	Status        string           `json:"status"`
	PaymentStatus string           `json:"payment_status"`
	DisplayStatus string           `json:"display_status"`
	Customer      CustomerDetails  `json:"customer"`
	Vehicle       *VehicleResponse `json:"vehicle"`
	CheckoutURL   string           `json:"checkout_url,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
