package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the tables and indexes the service needs. Safe to run
// on every startup.
func CreateSchema(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS vehicles (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('car', 'bike')),
            hourly_rate INTEGER NOT NULL CHECK (hourly_rate > 0),
            rating DOUBLE PRECISION NOT NULL DEFAULT 0,
            seats INTEGER NOT NULL DEFAULT 0,
            transmission TEXT NOT NULL DEFAULT '',
            fuel TEXT NOT NULL DEFAULT '',
            available BOOLEAN NOT NULL DEFAULT TRUE,
            image_url TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,

		`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            phone TEXT NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL,
            is_admin BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,

		`CREATE TABLE IF NOT EXISTS bookings (
            id UUID PRIMARY KEY,
            vehicle_id UUID NOT NULL,
            user_id UUID NOT NULL,
            start_time TIMESTAMPTZ NOT NULL,
            end_time TIMESTAMPTZ NOT NULL CHECK (end_time > start_time),
            total_price INTEGER NOT NULL CHECK (total_price >= 0),
            status TEXT NOT NULL DEFAULT 'pending',
            payment_status TEXT NOT NULL DEFAULT 'pending',
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT NOT NULL,
            phone TEXT NOT NULL,
            stripe_session_id TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_vehicle_id ON bookings(vehicle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_window ON bookings(vehicle_id, start_time, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_type ON vehicles(type)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing schema query: %w", err)
		}
	}
	return nil
}
