package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vroomgo/internal/apperrors"
	"vroomgo/internal/db"
	"vroomgo/internal/entities"
	"vroomgo/internal/metrics"
	"vroomgo/internal/pricing"
	"vroomgo/internal/repository"
)

// Notifier delivers booking emails and SMS. Implementations must not block
// the booking flow; failures are logged, never surfaced to the caller.
type Notifier interface {
	BookingCreated(booking db.Booking, vehicle *db.Vehicle)
	BookingStatusChanged(booking db.Booking, vehicle *db.Vehicle, newStatus string)
}

// Payments abstracts the checkout provider. A nil Payments disables payment
// collection entirely. The booking id must be attached to the session so
// provider webhooks can be correlated back to the booking.
type Payments interface {
	CreateCheckoutSession(bookingID string, amount int64, currency, customerEmail string) (url, sessionID string, err error)
	RefundBySession(sessionID string) error
}

type BookingService struct {
	bookings repository.BookingRepository
	vehicles repository.VehicleRepository
	notifier Notifier
	payments Payments
	logger   zerolog.Logger
}

func NewBookingService(bookings repository.BookingRepository, vehicles repository.VehicleRepository, notifier Notifier, payments Payments, logger zerolog.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		vehicles: vehicles,
		notifier: notifier,
		payments: payments,
		logger:   logger,
	}
}

// CheckAvailability reports whether the window [start, end) is free for the
// vehicle. It is a read-only query; Create and Reschedule re-run the check
// inside their write transaction.
func (s *BookingService) CheckAvailability(ctx context.Context, vehicleID string, start, end time.Time, excludeBookingID string) (bool, error) {
	if vehicleID == "" {
		return false, apperrors.Validation("vehicle_id is required")
	}
	if !end.After(start) {
		return false, apperrors.Validation("end time must be after start time")
	}
	count, err := s.bookings.CountOverlapping(ctx, vehicleID, start, end, excludeBookingID)
	if err != nil {
		return false, apperrors.Store(err)
	}
	return count == 0, nil
}

func (s *BookingService) CreateBooking(ctx context.Context, userID string, req entities.CreateBookingRequest) (*entities.BookingResponse, error) {
	if err := validateCustomer(req.Customer); err != nil {
		return nil, err
	}
	if req.VehicleID == "" {
		return nil, apperrors.Validation("vehicle_id is required")
	}

	vehicle, err := s.vehicles.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle %s not found", req.VehicleID)
	}
	if !vehicle.Available {
		return nil, apperrors.Unavailable("vehicle %s is not open for booking", vehicle.Name)
	}

	total, err := pricing.Total(req.StartTime, req.EndTime, vehicle.HourlyRate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking := &db.Booking{
		ID:            uuid.NewString(),
		VehicleID:     vehicle.ID,
		UserID:        userID,
		StartTime:     req.StartTime.UTC(),
		EndTime:       req.EndTime.UTC(),
		TotalPrice:    total,
		Status:        db.StatusPending,
		PaymentStatus: db.PaymentPending,
		Customer: db.CustomerDetails{
			FirstName: strings.TrimSpace(req.Customer.FirstName),
			LastName:  strings.TrimSpace(req.Customer.LastName),
			Email:     strings.TrimSpace(req.Customer.Email),
			Phone:     strings.TrimSpace(req.Customer.Phone),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.bookings.CreateIfAvailable(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrWindowConflict) {
			metrics.IncBookingConflict()
			return nil, apperrors.Unavailable("vehicle is already booked for the requested window")
		}
		return nil, apperrors.Store(err)
	}
	metrics.IncBookingCreated()

	checkoutURL := s.startCheckout(ctx, booking)

	if s.notifier != nil {
		s.notifier.BookingCreated(*booking, vehicle)
	}

	resp := toBookingResponse(*booking, vehicle, time.Now().UTC())
	resp.CheckoutURL = checkoutURL
	return &resp, nil
}

// startCheckout opens a checkout session for the booking. A payment provider
// failure does not fail the booking; the customer can settle later.
func (s *BookingService) startCheckout(ctx context.Context, booking *db.Booking) string {
	if s.payments == nil {
		return ""
	}

	amount := int64(booking.TotalPrice) * 100
	url, sessionID, err := s.payments.CreateCheckoutSession(booking.ID, amount, "inr", booking.Customer.Email)
	if err != nil {
		s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("checkout session failed")
		return ""
	}
	if err := s.bookings.SetStripeSession(ctx, booking.ID, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("could not record checkout session")
	}
	booking.StripeSessionID = sessionID
	return url
}

func (s *BookingService) CancelBooking(ctx context.Context, id, userID string, isAdmin bool) error {
	booking, err := s.getOwned(ctx, id, userID, isAdmin)
	if err != nil {
		return err
	}
	if !booking.Modifiable() {
		return apperrors.InvalidState("booking is already %s", booking.Status)
	}

	if err := s.bookings.UpdateStatus(ctx, id, db.StatusCancelled); err != nil {
		return apperrors.Store(err)
	}
	metrics.IncBookingCancelled()

	s.refundIfPaid(ctx, booking)
	s.notifyStatus(ctx, id, db.StatusCancelled)
	return nil
}

func (s *BookingService) RescheduleBooking(ctx context.Context, id, userID string, isAdmin bool, newStart, newEnd time.Time) (*entities.BookingResponse, error) {
	booking, err := s.getOwned(ctx, id, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	if !booking.Modifiable() {
		return nil, apperrors.InvalidState("booking is already %s", booking.Status)
	}
	now := time.Now().UTC()
	if !booking.StartTime.After(now) {
		return nil, apperrors.InvalidState("booking window has already started")
	}

	vehicle, err := s.vehicles.GetByID(ctx, booking.VehicleID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle %s no longer exists", booking.VehicleID)
	}

	total, err := pricing.Total(newStart, newEnd, vehicle.HourlyRate)
	if err != nil {
		return nil, err
	}

	err = s.bookings.RescheduleIfAvailable(ctx, id, newStart.UTC(), newEnd.UTC(), total)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrWindowConflict):
			metrics.IncBookingConflict()
			return nil, apperrors.Unavailable("vehicle is already booked for the requested window")
		case errors.Is(err, sql.ErrNoRows):
			return nil, apperrors.NotFound("booking %s not found", id)
		default:
			return nil, apperrors.Store(err)
		}
	}
	metrics.IncBookingRescheduled()

	updated, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if s.notifier != nil {
		s.notifier.BookingStatusChanged(*updated, vehicle, db.StatusPending)
	}

	resp := toBookingResponse(*updated, vehicle, time.Now().UTC())
	return &resp, nil
}

// UpdateStatus is the admin path: confirm, complete or cancel a booking
// along the allowed transition edges.
func (s *BookingService) UpdateStatus(ctx context.Context, id, newStatus string) error {
	switch newStatus {
	case db.StatusConfirmed, db.StatusCompleted, db.StatusCancelled:
	default:
		return apperrors.Validation("unknown status %q", newStatus)
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return apperrors.Store(err)
	}
	if booking == nil {
		return apperrors.NotFound("booking %s not found", id)
	}
	if !db.CanTransition(booking.Status, newStatus) {
		return apperrors.InvalidTransition("cannot move booking from %s to %s", booking.Status, newStatus)
	}

	if err := s.bookings.UpdateStatus(ctx, id, newStatus); err != nil {
		return apperrors.Store(err)
	}
	if newStatus == db.StatusCancelled {
		metrics.IncBookingCancelled()
		s.refundIfPaid(ctx, booking)
	}
	s.notifyStatus(ctx, id, newStatus)
	return nil
}

// ListUserBookings resolves each booking to its vehicle snapshot. A booking
// whose vehicle has disappeared is still returned, with a nil vehicle.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]entities.BookingResponse, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return s.resolve(ctx, bookings)
}

func (s *BookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]entities.BookingResponse, error) {
	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return s.resolve(ctx, bookings)
}

// SettlePaymentBySession records the payment outcome reported by the
// provider webhook. Payment state never gates the booking status.
func (s *BookingService) SettlePaymentBySession(ctx context.Context, sessionID, paymentStatus string) error {
	booking, err := s.bookings.GetByStripeSession(ctx, sessionID)
	if err != nil {
		return apperrors.Store(err)
	}
	if booking == nil {
		return apperrors.NotFound("no booking for session %s", sessionID)
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, booking.ID, paymentStatus); err != nil {
		return apperrors.Store(err)
	}
	return nil
}

// SettlePayment records a payment outcome for a booking resolved by id, used
// by webhook events that carry the booking id in their metadata.
func (s *BookingService) SettlePayment(ctx context.Context, bookingID, paymentStatus string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return apperrors.Store(err)
	}
	if booking == nil {
		return apperrors.NotFound("booking %s not found", bookingID)
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, bookingID, paymentStatus); err != nil {
		return apperrors.Store(err)
	}
	return nil
}

func (s *BookingService) resolve(ctx context.Context, bookings []db.Booking) ([]entities.BookingResponse, error) {
	now := time.Now().UTC()
	vehicleCache := make(map[string]*db.Vehicle)

	responses := make([]entities.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		vehicle, seen := vehicleCache[booking.VehicleID]
		if !seen {
			var err error
			vehicle, err = s.vehicles.GetByID(ctx, booking.VehicleID)
			if err != nil {
				return nil, apperrors.Store(err)
			}
			vehicleCache[booking.VehicleID] = vehicle
		}
		responses = append(responses, toBookingResponse(booking, vehicle, now))
	}
	return responses, nil
}

func (s *BookingService) getOwned(ctx context.Context, id, userID string, isAdmin bool) (*db.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking %s not found", id)
	}
	if !isAdmin && booking.UserID != userID {
		// Hide other users' bookings rather than confirming they exist.
		return nil, apperrors.NotFound("booking %s not found", id)
	}
	return booking, nil
}

func (s *BookingService) refundIfPaid(ctx context.Context, booking *db.Booking) {
	if s.payments == nil || booking.PaymentStatus != db.PaymentPaid || booking.StripeSessionID == "" {
		return
	}
	if err := s.payments.RefundBySession(booking.StripeSessionID); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("refund failed")
		return
	}
	if err := s.bookings.UpdatePaymentStatus(ctx, booking.ID, db.PaymentRefunded); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("could not record refund")
	}
}

func (s *BookingService) notifyStatus(ctx context.Context, id, newStatus string) {
	if s.notifier == nil {
		return
	}
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil || booking == nil {
		return
	}
	vehicle, err := s.vehicles.GetByID(ctx, booking.VehicleID)
	if err != nil {
		vehicle = nil
	}
	s.notifier.BookingStatusChanged(*booking, vehicle, newStatus)
}

func validateCustomer(c entities.CustomerDetails) error {
	var missing []string
	if strings.TrimSpace(c.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(c.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return apperrors.Validation("missing customer fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func toBookingResponse(booking db.Booking, vehicle *db.Vehicle, now time.Time) entities.BookingResponse {
	resp := entities.BookingResponse{
		ID:            booking.ID,
		VehicleID:     booking.VehicleID,
		UserID:        booking.UserID,
		StartTime:     booking.StartTime,
		EndTime:       booking.EndTime,
		TotalPrice:    booking.TotalPrice,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		DisplayStatus: booking.DisplayStatus(now),
		Customer: entities.CustomerDetails{
			FirstName: booking.Customer.FirstName,
			LastName:  booking.Customer.LastName,
			Email:     booking.Customer.Email,
			Phone:     booking.Customer.Phone,
		},
		CreatedAt: booking.CreatedAt,
		UpdatedAt: booking.UpdatedAt,
	}
	if vehicle != nil {
		v := toVehicleResponse(*vehicle)
		resp.Vehicle = &v
	}
	return resp
}
