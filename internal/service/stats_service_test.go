package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vroomgo/internal/apperrors"
	"vroomgo/internal/db"
	"vroomgo/internal/repository"
)

func seedBooking(t *testing.T, store *repository.MemoryStore, vehicleID, status string, created, start, end time.Time, price int) db.Booking {
	t.Helper()
	booking := db.Booking{
		ID:            uuid.NewString(),
		VehicleID:     vehicleID,
		UserID:        "user-1",
		StartTime:     start,
		EndTime:       end,
		TotalPrice:    price,
		Status:        status,
		PaymentStatus: db.PaymentPending,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, store.CreateIfAvailable(context.Background(), &booking))
	return booking
}

func TestStatsReport(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewStatsService(store, store.Vehicles())

	car := seedVehicle(t, store, 100)
	bike := db.Vehicle{ID: uuid.NewString(), Name: "Activa", Type: db.VehicleTypeBike, HourlyRate: 40, Available: true}
	require.NoError(t, store.CreateVehicle(ctx, &bike))

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)

	// Inside the window: two kept bookings and one cancellation.
	seedBooking(t, store, car.ID, db.StatusConfirmed,
		since.Add(24*time.Hour), since.Add(48*time.Hour), since.Add(52*time.Hour), 400)
	seedBooking(t, store, bike.ID, db.StatusPending,
		since.Add(30*time.Hour), since.Add(54*time.Hour), since.Add(56*time.Hour), 80)
	seedBooking(t, store, car.ID, db.StatusCancelled,
		since.Add(40*time.Hour), since.Add(80*time.Hour), since.Add(82*time.Hour), 200)

	// Before the window: counts toward totals only.
	seedBooking(t, store, car.ID, db.StatusCompleted,
		since.Add(-72*time.Hour), since.Add(-48*time.Hour), since.Add(-44*time.Hour), 400)

	report, err := svc.Report(ctx, since, until)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalBookings)
	assert.Equal(t, 2, report.ActiveBookings)
	// Cancelled bookings never count as revenue.
	assert.Equal(t, 880, report.TotalRevenue)
	assert.Equal(t, 480, report.WindowRevenue)

	// (4h + 2h) / 2 kept bookings.
	assert.InDelta(t, 3.0, report.AverageDuration, 0.001)
	// (24h + 24h) lead time over 2 kept bookings, in days.
	assert.InDelta(t, 1.0, report.AverageLeadTime, 0.001)
	// 1 cancelled of 3 windowed.
	assert.InDelta(t, 33.333, report.CancellationRate, 0.01)

	require.Len(t, report.RevenuePerVehicle, 2)
	assert.Equal(t, car.ID, report.RevenuePerVehicle[0].VehicleID)
	assert.Equal(t, 400, report.RevenuePerVehicle[0].Revenue)
	assert.Equal(t, car.Name, report.RevenuePerVehicle[0].VehicleName)

	require.Len(t, report.VehicleUtilization, 2)
	// Car: 4 booked hours of a 168-hour window.
	assert.Equal(t, car.ID, report.VehicleUtilization[0].VehicleID)
	assert.InDelta(t, 4.0/168*100, report.VehicleUtilization[0].Percentage, 0.001)
}

func TestStatsReportEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewStatsService(store, store.Vehicles())

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	report, err := svc.Report(ctx, since, since.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.Zero(t, report.TotalBookings)
	assert.Zero(t, report.TotalRevenue)
	assert.Zero(t, report.CancellationRate)
	assert.Empty(t, report.RevenuePerVehicle)
}

func TestStatsReportInvalidWindow(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewStatsService(store, store.Vehicles())

	now := time.Now().UTC()
	_, err := svc.Report(context.Background(), now, now)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestStatsReportUnknownVehicleName(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewStatsService(store, store.Vehicles())

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedBooking(t, store, uuid.NewString(), db.StatusConfirmed,
		since.Add(time.Hour), since.Add(24*time.Hour), since.Add(26*time.Hour), 200)

	report, err := svc.Report(ctx, since, since.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, report.RevenuePerVehicle, 1)
	assert.Equal(t, "Unknown Vehicle", report.RevenuePerVehicle[0].VehicleName)
}
