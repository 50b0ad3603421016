package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vroomgo/internal/db"
)

func storedBooking(t *testing.T, store *MemoryStore, status string, start, end time.Time) db.Booking {
	t.Helper()
	now := time.Now().UTC()
	booking := db.Booking{
		ID:            uuid.NewString(),
		VehicleID:     "veh-1",
		UserID:        "user-1",
		StartTime:     start,
		EndTime:       end,
		TotalPrice:    100,
		Status:        status,
		PaymentStatus: db.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, store.CreateIfAvailable(context.Background(), &booking))
	return booking
}

func TestRescheduleTerminalBookingRejected(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	booking := storedBooking(t, store, db.StatusPending, base, base.Add(2*time.Hour))

	// A cancel that lands between the modifiability check and the window
	// update must win; the reschedule cannot revive the booking.
	require.NoError(t, store.UpdateStatus(ctx, booking.ID, db.StatusCancelled))

	err := store.RescheduleIfAvailable(ctx, booking.ID, base.Add(4*time.Hour), base.Add(6*time.Hour), 200)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	stored, err := store.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, stored.Status)
	assert.Equal(t, base, stored.StartTime)
}

func TestRescheduleReleasesOldWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	booking := storedBooking(t, store, db.StatusConfirmed, base, base.Add(2*time.Hour))

	// Moving within overlap of its own window is allowed.
	require.NoError(t, store.RescheduleIfAvailable(ctx, booking.ID, base.Add(time.Hour), base.Add(3*time.Hour), 200))

	stored, err := store.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, stored.Status)
	assert.Equal(t, base.Add(time.Hour), stored.StartTime)
}
