package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"vroomgo/internal/apperrors"
	"vroomgo/internal/db"
	"vroomgo/internal/entities"
	"vroomgo/internal/repository"
)

type VehicleService struct {
	vehicles repository.VehicleRepository
}

func NewVehicleService(vehicles repository.VehicleRepository) *VehicleService {
	return &VehicleService{vehicles: vehicles}
}

func (s *VehicleService) List(ctx context.Context, vehicleType, search string) ([]entities.VehicleResponse, error) {
	if vehicleType != "" && vehicleType != db.VehicleTypeCar && vehicleType != db.VehicleTypeBike {
		return nil, apperrors.Validation("unknown vehicle type %q", vehicleType)
	}
	vehicles, err := s.vehicles.List(ctx, vehicleType, search)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	responses := make([]entities.VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		responses = append(responses, toVehicleResponse(v))
	}
	return responses, nil
}

func (s *VehicleService) Get(ctx context.Context, id string) (*entities.VehicleResponse, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle %s not found", id)
	}
	resp := toVehicleResponse(*vehicle)
	return &resp, nil
}

func (s *VehicleService) Create(ctx context.Context, req entities.VehicleRequest) (*entities.VehicleResponse, error) {
	if err := validateVehicle(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	vehicle := &db.Vehicle{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Type:         req.Type,
		HourlyRate:   req.HourlyRate,
		Rating:       req.Rating,
		Seats:        req.Seats,
		Transmission: req.Transmission,
		Fuel:         req.Fuel,
		Available:    req.Available,
		ImageURL:     req.ImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, apperrors.Store(err)
	}
	resp := toVehicleResponse(*vehicle)
	return &resp, nil
}

func (s *VehicleService) Update(ctx context.Context, id string, req entities.VehicleRequest) (*entities.VehicleResponse, error) {
	if err := validateVehicle(req); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle %s not found", id)
	}

	vehicle.Name = strings.TrimSpace(req.Name)
	vehicle.Type = req.Type
	vehicle.HourlyRate = req.HourlyRate
	vehicle.Rating = req.Rating
	vehicle.Seats = req.Seats
	vehicle.Transmission = req.Transmission
	vehicle.Fuel = req.Fuel
	vehicle.Available = req.Available
	vehicle.ImageURL = req.ImageURL
	vehicle.UpdatedAt = time.Now().UTC()

	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, apperrors.Store(err)
	}
	resp := toVehicleResponse(*vehicle)
	return &resp, nil
}

// Retire takes a vehicle out of the catalog. Vehicles are never deleted:
// existing bookings keep resolving, new ones are refused.
func (s *VehicleService) Retire(ctx context.Context, id string) error {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return apperrors.Store(err)
	}
	if vehicle == nil {
		return apperrors.NotFound("vehicle %s not found", id)
	}
	if err := s.vehicles.SetAvailability(ctx, id, false); err != nil {
		return apperrors.Store(err)
	}
	return nil
}

func validateVehicle(req entities.VehicleRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.Validation("vehicle name is required")
	}
	if req.Type != db.VehicleTypeCar && req.Type != db.VehicleTypeBike {
		return apperrors.Validation("vehicle type must be %q or %q", db.VehicleTypeCar, db.VehicleTypeBike)
	}
	if req.HourlyRate <= 0 {
		return apperrors.Validation("hourly rate must be positive")
	}
	return nil
}

func toVehicleResponse(v db.Vehicle) entities.VehicleResponse {
	return entities.VehicleResponse{
		ID:           v.ID,
		Name:         v.Name,
		Type:         v.Type,
		HourlyRate:   v.HourlyRate,
		Rating:       v.Rating,
		Seats:        v.Seats,
		Transmission: v.Transmission,
		Fuel:         v.Fuel,
		Available:    v.Available,
		ImageURL:     v.ImageURL,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
