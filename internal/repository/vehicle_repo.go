package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vroomgo/internal/db"
)

type VehicleRepository interface {
	List(ctx context.Context, vehicleType, search string) ([]db.Vehicle, error)
	// GetByID returns (nil, nil) when the vehicle does not exist.
	GetByID(ctx context.Context, id string) (*db.Vehicle, error)
	Create(ctx context.Context, vehicle *db.Vehicle) error
	Update(ctx context.Context, vehicle *db.Vehicle) error
	SetAvailability(ctx context.Context, id string, available bool) error
}

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(sqlDB *sql.DB) VehicleRepository {
	return &vehicleRepository{db: sqlDB}
}

const vehicleColumns = `id, name, type, hourly_rate, rating, seats, transmission, fuel, available, image_url, created_at, updated_at`

func (r *vehicleRepository) List(ctx context.Context, vehicleType, search string) ([]db.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE 1=1`
	var args []interface{}

	if vehicleType != "" {
		args = append(args, vehicleType)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		query += fmt.Sprintf(" AND LOWER(name) LIKE $%d", len(args))
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		var v db.Vehicle
		if err := scanVehicle(rows, &v); err != nil {
			return nil, fmt.Errorf("error scanning vehicle row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vehicle rows: %w", err)
	}
	return vehicles, nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*db.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	var v db.Vehicle
	err := scanVehicle(r.db.QueryRowContext(ctx, query, id), &v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying vehicle %s: %w", id, err)
	}
	return &v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *db.Vehicle) error {
	query := `
        INSERT INTO vehicles (id, name, type, hourly_rate, rating, seats, transmission, fuel, available, image_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.Name,
		vehicle.Type,
		vehicle.HourlyRate,
		vehicle.Rating,
		vehicle.Seats,
		vehicle.Transmission,
		vehicle.Fuel,
		vehicle.Available,
		vehicle.ImageURL,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting vehicle: %w", err)
	}
	return nil
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *db.Vehicle) error {
	query := `
        UPDATE vehicles
        SET name = $1, type = $2, hourly_rate = $3, rating = $4, seats = $5,
            transmission = $6, fuel = $7, available = $8, image_url = $9, updated_at = $10
        WHERE id = $11`
	result, err := r.db.ExecContext(ctx, query,
		vehicle.Name,
		vehicle.Type,
		vehicle.HourlyRate,
		vehicle.Rating,
		vehicle.Seats,
		vehicle.Transmission,
		vehicle.Fuel,
		vehicle.Available,
		vehicle.ImageURL,
		time.Now().UTC(),
		vehicle.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating vehicle: %w", err)
	}
	return requireRow(result)
}

func (r *vehicleRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	query := `UPDATE vehicles SET available = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, available, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error updating vehicle availability: %w", err)
	}
	return requireRow(result)
}

func scanVehicle(row rowScanner, v *db.Vehicle) error {
	return row.Scan(
		&v.ID,
		&v.Name,
		&v.Type,
		&v.HourlyRate,
		&v.Rating,
		&v.Seats,
		&v.Transmission,
		&v.Fuel,
		&v.Available,
		&v.ImageURL,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
}
