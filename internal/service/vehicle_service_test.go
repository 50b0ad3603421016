package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vroomgo/internal/apperrors"
	"vroomgo/internal/db"
	"vroomgo/internal/entities"
	"vroomgo/internal/repository"
)

func carRequest() entities.VehicleRequest {
	return entities.VehicleRequest{
		Name:         "Swift Dzire",
		Type:         db.VehicleTypeCar,
		HourlyRate:   120,
		Seats:        5,
		Transmission: "manual",
		Fuel:         "petrol",
		Available:    true,
	}
}

func TestVehicleCRUD(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewVehicleService(store.Vehicles())

	created, err := svc.Create(ctx, carRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Swift Dzire", got.Name)

	req := carRequest()
	req.HourlyRate = 150
	updated, err := svc.Update(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 150, updated.HourlyRate)

	// Retiring hides the vehicle from booking, it does not delete it.
	require.NoError(t, svc.Retire(ctx, created.ID))
	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)
}

func TestVehicleListFilters(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewVehicleService(store.Vehicles())

	_, err := svc.Create(ctx, carRequest())
	require.NoError(t, err)

	bike := carRequest()
	bike.Name = "Royal Enfield"
	bike.Type = db.VehicleTypeBike
	bike.Seats = 2
	_, err = svc.Create(ctx, bike)
	require.NoError(t, err)

	cars, err := svc.List(ctx, db.VehicleTypeCar, "")
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Swift Dzire", cars[0].Name)

	matched, err := svc.List(ctx, "", "enfield")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Royal Enfield", matched[0].Name)

	_, err = svc.List(ctx, "boat", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestVehicleValidation(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewVehicleService(store.Vehicles())

	req := carRequest()
	req.Name = "  "
	_, err := svc.Create(ctx, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	req = carRequest()
	req.HourlyRate = 0
	_, err = svc.Create(ctx, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
