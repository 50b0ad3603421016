package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vroomgo/internal/db"
)

// ErrWindowConflict is returned by the conditional writes when the requested
// window overlaps a pending or confirmed booking for the same vehicle.
var ErrWindowConflict = errors.New("booking window conflicts with an existing booking")

// BookingFilter narrows the admin booking listing.
type BookingFilter struct {
	Status    string
	VehicleID string
	Day       *time.Time
}

type BookingRepository interface {
	// CreateIfAvailable checks the overlap condition and inserts the booking
	// in one transaction, so two concurrent creates for the same vehicle
	// cannot both succeed.
	CreateIfAvailable(ctx context.Context, booking *db.Booking) error
	// RescheduleIfAvailable moves a booking to a new window under the same
	// transactional overlap check, ignoring the booking's own window. On
	// success the booking re-enters pending.
	RescheduleIfAvailable(ctx context.Context, id string, start, end time.Time, totalPrice int) error
	GetByID(ctx context.Context, id string) (*db.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]db.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]db.Booking, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]db.Booking, error)
	CountOverlapping(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) (int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetStripeSession(ctx context.Context, id, sessionID string) error
	GetByStripeSession(ctx context.Context, sessionID string) (*db.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) error
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(sqlDB *sql.DB) BookingRepository {
	return &bookingRepository{db: sqlDB}
}

const bookingColumns = `id, vehicle_id, user_id, start_time, end_time, total_price, status, payment_status,
       first_name, last_name, email, phone, stripe_session_id, created_at, updated_at`

// Half-open interval overlap: [start, end) conflicts with [b_start, b_end)
// iff start < b_end AND end > b_start. Touching endpoints do not conflict.
const overlapCondition = `vehicle_id = $1
          AND status IN ('pending', 'confirmed')
          AND start_time < $3
          AND end_time > $2`

func (r *bookingRepository) CreateIfAvailable(ctx context.Context, booking *db.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create booking tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockVehicle(ctx, tx, booking.VehicleID); err != nil {
		return err
	}

	var conflicts int
	query := `SELECT COUNT(*) FROM bookings WHERE ` + overlapCondition
	err = tx.QueryRowContext(ctx, query, booking.VehicleID, booking.StartTime, booking.EndTime).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("error counting overlapping bookings: %w", err)
	}
	if conflicts > 0 {
		return ErrWindowConflict
	}

	insert := `
        INSERT INTO bookings
        (id, vehicle_id, user_id, start_time, end_time, total_price, status, payment_status,
         first_name, last_name, email, phone, stripe_session_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = tx.ExecContext(ctx, insert,
		booking.ID,
		booking.VehicleID,
		booking.UserID,
		booking.StartTime,
		booking.EndTime,
		booking.TotalPrice,
		booking.Status,
		booking.PaymentStatus,
		booking.Customer.FirstName,
		booking.Customer.LastName,
		booking.Customer.Email,
		booking.Customer.Phone,
		booking.StripeSessionID,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting booking: %w", err)
	}

	return tx.Commit()
}

func (r *bookingRepository) RescheduleIfAvailable(ctx context.Context, id string, start, end time.Time, totalPrice int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reschedule tx: %w", err)
	}
	defer tx.Rollback()

	var vehicleID string
	err = tx.QueryRowContext(ctx, `SELECT vehicle_id FROM bookings WHERE id = $1`, id).Scan(&vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("error loading booking %s: %w", id, err)
	}

	if err := lockVehicle(ctx, tx, vehicleID); err != nil {
		return err
	}

	var conflicts int
	query := `SELECT COUNT(*) FROM bookings WHERE ` + overlapCondition + ` AND id <> $4`
	err = tx.QueryRowContext(ctx, query, vehicleID, start, end, id).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("error counting overlapping bookings: %w", err)
	}
	if conflicts > 0 {
		return ErrWindowConflict
	}

	// The status guard keeps a racing cancel or complete from being
	// overwritten back to pending.
	update := `
        UPDATE bookings
        SET start_time = $1, end_time = $2, total_price = $3, status = $4, updated_at = $5
        WHERE id = $6 AND status IN ('pending', 'confirmed')`
	result, err := tx.ExecContext(ctx, update, start, end, totalPrice, db.StatusPending, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error updating booking window: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}

	return tx.Commit()
}

// lockVehicle serializes writers per vehicle for the duration of the
// transaction via a Postgres advisory lock.
func lockVehicle(ctx context.Context, tx *sql.Tx, vehicleID string) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, vehicleID)
	if err != nil {
		return fmt.Errorf("error acquiring vehicle lock: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying booking %s: %w", id, err)
	}
	return booking, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID string) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryBookings(ctx, query, userID)
}

func (r *bookingRepository) List(ctx context.Context, filter BookingFilter) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.VehicleID != "" {
		args = append(args, filter.VehicleID)
		query += fmt.Sprintf(" AND vehicle_id = $%d", len(args))
	}
	if filter.Day != nil {
		day := filter.Day.UTC().Truncate(24 * time.Hour)
		args = append(args, day, day.Add(24*time.Hour))
		query += fmt.Sprintf(" AND start_time >= $%d AND start_time < $%d", len(args)-1, len(args))
	}
	query += " ORDER BY start_time DESC"

	return r.queryBookings(ctx, query, args...)
}

func (r *bookingRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE created_at >= $1 ORDER BY created_at`
	return r.queryBookings(ctx, query, since)
}

func (r *bookingRepository) CountOverlapping(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE ` + overlapCondition
	args := []interface{}{vehicleID, start, end}
	if excludeID != "" {
		query += ` AND id <> $4`
		args = append(args, excludeID)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting overlapping bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error updating booking status: %w", err)
	}
	return requireRow(result)
}

func (r *bookingRepository) SetStripeSession(ctx context.Context, id, sessionID string) error {
	query := `UPDATE bookings SET stripe_session_id = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, sessionID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error setting stripe session: %w", err)
	}
	return requireRow(result)
}

func (r *bookingRepository) GetByStripeSession(ctx context.Context, sessionID string) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE stripe_session_id = $1`
	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying booking by session: %w", err)
	}
	return booking, nil
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) error {
	query := `UPDATE bookings SET payment_status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, paymentStatus, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error updating payment status: %w", err)
	}
	return requireRow(result)
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]db.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking rows: %w", err)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID,
		&b.VehicleID,
		&b.UserID,
		&b.StartTime,
		&b.EndTime,
		&b.TotalPrice,
		&b.Status,
		&b.PaymentStatus,
		&b.Customer.FirstName,
		&b.Customer.LastName,
		&b.Customer.Email,
		&b.Customer.Phone,
		&b.StripeSessionID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
