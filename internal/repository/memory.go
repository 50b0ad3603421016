package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"vroomgo/internal/db"
)

// MemoryStore is an in-memory implementation of the booking, vehicle, user
// and job repositories. It honors the same conditional-write semantics as
// the Postgres implementation (the overlap check and the write happen under
// one lock) and backs the service and handler tests.
type MemoryStore struct {
	mu       sync.Mutex
	bookings map[string]db.Booking
	vehicles map[string]db.Vehicle
	users    map[string]db.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[string]db.Booking),
		vehicles: make(map[string]db.Vehicle),
		users:    make(map[string]db.User),
	}
}

func overlaps(b db.Booking, vehicleID string, start, end time.Time, excludeID string) bool {
	if b.VehicleID != vehicleID || b.ID == excludeID {
		return false
	}
	if b.Status != db.StatusPending && b.Status != db.StatusConfirmed {
		return false
	}
	return start.Before(b.EndTime) && end.After(b.StartTime)
}

func (s *MemoryStore) CreateIfAvailable(ctx context.Context, booking *db.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bookings {
		if overlaps(existing, booking.VehicleID, booking.StartTime, booking.EndTime, "") {
			return ErrWindowConflict
		}
	}
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *MemoryStore) RescheduleIfAvailable(ctx context.Context, id string, start, end time.Time, totalPrice int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return sql.ErrNoRows
	}
	if booking.Status != db.StatusPending && booking.Status != db.StatusConfirmed {
		return sql.ErrNoRows
	}
	for _, existing := range s.bookings {
		if overlaps(existing, booking.VehicleID, start, end, id) {
			return ErrWindowConflict
		}
	}
	booking.StartTime = start
	booking.EndTime = end
	booking.TotalPrice = totalPrice
	booking.Status = db.StatusPending
	booking.UpdatedAt = time.Now().UTC()
	s.bookings[id] = booking
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookings []db.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			bookings = append(bookings, b)
		}
	}
	sortByCreatedDesc(bookings)
	return bookings, nil
}

func (s *MemoryStore) List(ctx context.Context, filter BookingFilter) ([]db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookings []db.Booking
	for _, b := range s.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.VehicleID != "" && b.VehicleID != filter.VehicleID {
			continue
		}
		if filter.Day != nil {
			day := filter.Day.UTC().Truncate(24 * time.Hour)
			if b.StartTime.Before(day) || !b.StartTime.Before(day.Add(24*time.Hour)) {
				continue
			}
		}
		bookings = append(bookings, b)
	}
	sortByCreatedDesc(bookings)
	return bookings, nil
}

func (s *MemoryStore) ListCreatedSince(ctx context.Context, since time.Time) ([]db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookings []db.Booking
	for _, b := range s.bookings {
		if !b.CreatedAt.Before(since) {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.Before(bookings[j].CreatedAt) })
	return bookings, nil
}

func (s *MemoryStore) CountOverlapping(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, b := range s.bookings {
		if overlaps(b, vehicleID, start, end, excludeID) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return sql.ErrNoRows
	}
	booking.Status = status
	booking.UpdatedAt = time.Now().UTC()
	s.bookings[id] = booking
	return nil
}

func (s *MemoryStore) SetStripeSession(ctx context.Context, id, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return sql.ErrNoRows
	}
	booking.StripeSessionID = sessionID
	booking.UpdatedAt = time.Now().UTC()
	s.bookings[id] = booking
	return nil
}

func (s *MemoryStore) GetByStripeSession(ctx context.Context, sessionID string) (*db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookings {
		if b.StripeSessionID == sessionID {
			booking := b
			return &booking, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return sql.ErrNoRows
	}
	booking.PaymentStatus = paymentStatus
	booking.UpdatedAt = time.Now().UTC()
	s.bookings[id] = booking
	return nil
}

// Vehicle repository

func (s *MemoryStore) ListVehicles(ctx context.Context, vehicleType, search string) ([]db.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var vehicles []db.Vehicle
	for _, v := range s.vehicles {
		if vehicleType != "" && v.Type != vehicleType {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(search)) {
			continue
		}
		vehicles = append(vehicles, v)
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].Name < vehicles[j].Name })
	return vehicles, nil
}

func (s *MemoryStore) GetVehicleByID(ctx context.Context, id string) (*db.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, nil
	}
	return &vehicle, nil
}

func (s *MemoryStore) CreateVehicle(ctx context.Context, vehicle *db.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (s *MemoryStore) UpdateVehicle(ctx context.Context, vehicle *db.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[vehicle.ID]; !ok {
		return sql.ErrNoRows
	}
	vehicle.UpdatedAt = time.Now().UTC()
	s.vehicles[vehicle.ID] = *vehicle
	return nil
}

func (s *MemoryStore) SetVehicleAvailability(ctx context.Context, id string, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[id]
	if !ok {
		return sql.ErrNoRows
	}
	vehicle.Available = available
	vehicle.UpdatedAt = time.Now().UTC()
	s.vehicles[id] = vehicle
	return nil
}

// User repository

func (s *MemoryStore) CreateUser(ctx context.Context, user *db.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []db.User
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

// Job repository

func (s *MemoryStore) ConfirmedIDsPastEnd(ctx context.Context, now time.Time) ([]string, error) {
	return s.idsByStatusPastEnd(db.StatusConfirmed, now), nil
}

func (s *MemoryStore) PendingIDsPastEnd(ctx context.Context, now time.Time) ([]string, error) {
	return s.idsByStatusPastEnd(db.StatusPending, now), nil
}

func (s *MemoryStore) idsByStatusPastEnd(status string, now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, b := range s.bookings {
		if b.Status == status && b.EndTime.Before(now) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func (s *MemoryStore) UpdateStatuses(ctx context.Context, ids []string, status string) error {
	for _, id := range ids {
		if err := s.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
	}
	return nil
}

func sortByCreatedDesc(bookings []db.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
}

// MemoryStore satisfies BookingRepository and JobRepository directly; the
// vehicle and user views need adapters because the method names would
// otherwise collide on one receiver.

func (s *MemoryStore) Vehicles() VehicleRepository { return memoryVehicleRepo{s} }
func (s *MemoryStore) Users() UserRepository       { return memoryUserRepo{s} }

type memoryVehicleRepo struct{ s *MemoryStore }

func (r memoryVehicleRepo) List(ctx context.Context, vehicleType, search string) ([]db.Vehicle, error) {
	return r.s.ListVehicles(ctx, vehicleType, search)
}

func (r memoryVehicleRepo) GetByID(ctx context.Context, id string) (*db.Vehicle, error) {
	return r.s.GetVehicleByID(ctx, id)
}

func (r memoryVehicleRepo) Create(ctx context.Context, vehicle *db.Vehicle) error {
	return r.s.CreateVehicle(ctx, vehicle)
}

func (r memoryVehicleRepo) Update(ctx context.Context, vehicle *db.Vehicle) error {
	return r.s.UpdateVehicle(ctx, vehicle)
}

func (r memoryVehicleRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	return r.s.SetVehicleAvailability(ctx, id, available)
}

type memoryUserRepo struct{ s *MemoryStore }

func (r memoryUserRepo) Create(ctx context.Context, user *db.User) error {
	return r.s.CreateUser(ctx, user)
}

func (r memoryUserRepo) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	return r.s.GetUserByEmail(ctx, email)
}

func (r memoryUserRepo) GetByID(ctx context.Context, id string) (*db.User, error) {
	return r.s.GetUserByID(ctx, id)
}

func (r memoryUserRepo) List(ctx context.Context) ([]db.User, error) {
	return r.s.ListUsers(ctx)
}
