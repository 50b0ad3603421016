// Package pricing holds the billable-duration and price arithmetic for a
// rental window. Durations bill in whole hours, rounded up, with a one hour
// minimum: a 61 minute rental bills as 2 hours, a 20 minute rental as 1.
package pricing

import (
	"time"

	"vroomgo/internal/apperrors"
)

// Duration returns the billable hours for the window [start, end).
func Duration(start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, apperrors.Validation("end time must be after start time")
	}
	hours := int(end.Sub(start) / time.Hour)
	if end.Sub(start)%time.Hour != 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return hours, nil
}

// Total returns the price for the window at the given hourly rate.
func Total(start, end time.Time, hourlyRate int) (int, error) {
	if hourlyRate <= 0 {
		return 0, apperrors.Validation("hourly rate must be positive")
	}
	hours, err := Duration(start, end)
	if err != nil {
		return 0, err
	}
	return hours * hourlyRate, nil
}
