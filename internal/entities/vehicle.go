package entities

import "time"

type VehicleRequest struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	HourlyRate   int     `json:"hourly_rate"`
	Rating       float64 `json:"rating"`
	Seats        int     `json:"seats"`
	Transmission string  `json:"transmission"`
	Fuel         string  `json:"fuel"`
	Available    bool    `json:"available"`
	ImageURL     string  `json:"image_url"`
}

type VehicleResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	HourlyRate   int       `json:"hourly_rate"`
	Rating       float64   `json:"rating"`
	Seats        int       `json:"seats"`
	Transmission string    `json:"transmission"`
	Fuel         string    `json:"fuel"`
	Available    bool      `json:"available"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
