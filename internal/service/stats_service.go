package service

import (
	"context"
	"sort"
	"time"

	"vroomgo/internal/apperrors"
	"vroomgo/internal/db"
	"vroomgo/internal/entities"
	"vroomgo/internal/pricing"
	"vroomgo/internal/repository"
)

type StatsService struct {
	bookings repository.BookingRepository
	vehicles repository.VehicleRepository
}

func NewStatsService(bookings repository.BookingRepository, vehicles repository.VehicleRepository) *StatsService {
	return &StatsService{bookings: bookings, vehicles: vehicles}
}

// Report aggregates booking activity. Totals cover every booking on record;
// the windowed figures cover bookings created in [since, until).
// Cancelled bookings are excluded from revenue but counted for the
// cancellation rate.
func (s *StatsService) Report(ctx context.Context, since, until time.Time) (*entities.StatsResponse, error) {
	if !until.After(since) {
		return nil, apperrors.Validation("report window end must be after start")
	}

	all, err := s.bookings.List(ctx, repository.BookingFilter{})
	if err != nil {
		return nil, apperrors.Store(err)
	}
	vehicles, err := s.vehicles.List(ctx, "", "")
	if err != nil {
		return nil, apperrors.Store(err)
	}

	vehicleNames := make(map[string]string, len(vehicles))
	for _, v := range vehicles {
		vehicleNames[v.ID] = v.Name
	}

	report := &entities.StatsResponse{TotalBookings: len(all)}

	var windowed []db.Booking
	for _, b := range all {
		if b.Status == db.StatusPending || b.Status == db.StatusConfirmed {
			report.ActiveBookings++
		}
		if b.Status != db.StatusCancelled {
			report.TotalRevenue += b.TotalPrice
		}
		if !b.CreatedAt.Before(since) && b.CreatedAt.Before(until) {
			windowed = append(windowed, b)
		}
	}

	var cancelled int
	var totalHours, totalLeadDays float64
	revenueByVehicle := make(map[string]*entities.VehicleRevenue)
	for _, b := range windowed {
		if b.Status == db.StatusCancelled {
			cancelled++
			continue
		}
		report.WindowRevenue += b.TotalPrice

		if hours, err := pricing.Duration(b.StartTime, b.EndTime); err == nil {
			totalHours += float64(hours)
		}
		totalLeadDays += b.StartTime.Sub(b.CreatedAt).Hours() / 24

		rv, ok := revenueByVehicle[b.VehicleID]
		if !ok {
			rv = &entities.VehicleRevenue{
				VehicleID:   b.VehicleID,
				VehicleName: vehicleName(vehicleNames, b.VehicleID),
			}
			revenueByVehicle[b.VehicleID] = rv
		}
		rv.Revenue += b.TotalPrice
		rv.Bookings++
	}

	if kept := len(windowed) - cancelled; kept > 0 {
		report.AverageDuration = totalHours / float64(kept)
		report.AverageLeadTime = totalLeadDays / float64(kept)
	}
	if len(windowed) > 0 {
		report.CancellationRate = float64(cancelled) / float64(len(windowed)) * 100
	}

	for _, rv := range revenueByVehicle {
		report.RevenuePerVehicle = append(report.RevenuePerVehicle, *rv)
	}
	sort.Slice(report.RevenuePerVehicle, func(i, j int) bool {
		return report.RevenuePerVehicle[i].Revenue > report.RevenuePerVehicle[j].Revenue
	})

	report.VehicleUtilization = utilization(all, vehicles, since, until)
	return report, nil
}

// utilization is the share of the report window each vehicle spent booked,
// using the intersection of each booking window with the report window.
func utilization(bookings []db.Booking, vehicles []db.Vehicle, since, until time.Time) []entities.VehicleUtilization {
	windowHours := until.Sub(since).Hours()
	if windowHours <= 0 {
		return nil
	}

	bookedHours := make(map[string]float64)
	for _, b := range bookings {
		if b.Status == db.StatusCancelled {
			continue
		}
		start := maxTime(b.StartTime, since)
		end := minTime(b.EndTime, until)
		if end.After(start) {
			bookedHours[b.VehicleID] += end.Sub(start).Hours()
		}
	}

	result := make([]entities.VehicleUtilization, 0, len(vehicles))
	for _, v := range vehicles {
		pct := bookedHours[v.ID] / windowHours * 100
		if pct > 100 {
			pct = 100
		}
		result = append(result, entities.VehicleUtilization{
			VehicleID:   v.ID,
			VehicleName: v.Name,
			Percentage:  pct,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Percentage > result[j].Percentage })
	return result
}

func vehicleName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "Unknown Vehicle"
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
