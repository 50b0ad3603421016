package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"vroomgo/internal/entities"
	"vroomgo/internal/metrics"
	"vroomgo/internal/repository"
	"vroomgo/internal/service"
)

type AdminHandler struct {
	Bookings *service.BookingService
	Vehicles *service.VehicleService
	Users    *service.AuthService
	Stats    *service.StatsService
}

func NewAdminHandler(bookings *service.BookingService, vehicles *service.VehicleService, users *service.AuthService, stats *service.StatsService) *AdminHandler {
	return &AdminHandler{Bookings: bookings, Vehicles: vehicles, Users: users, Stats: stats}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_bookings_list")
	filter := repository.BookingFilter{
		Status:    r.URL.Query().Get("status"),
		VehicleID: r.URL.Query().Get("vehicle_id"),
	}
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		day, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		filter.Day = &day
	}

	bookings, err := h.Bookings.ListBookings(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *AdminHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_bookings_status")
	id := mux.Vars(r)["id"]
	var req entities.UpdateBookingStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Bookings.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking status updated"})
}

func (h *AdminHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_vehicles_create")
	var req entities.VehicleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	vehicle, err := h.Vehicles.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

func (h *AdminHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_vehicles_update")
	var req entities.VehicleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	vehicle, err := h.Vehicles.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (h *AdminHandler) RetireVehicle(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_vehicles_retire")
	if err := h.Vehicles.Retire(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle retired"})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_users_list")
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetStats reports booking analytics for a window selected with
// ?range=week|month|quarter, defaulting to month.
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_stats")
	now := time.Now().UTC()
	var since time.Time
	switch r.URL.Query().Get("range") {
	case "week":
		since = now.AddDate(0, 0, -7)
	case "quarter":
		since = now.AddDate(0, -3, 0)
	default:
		since = now.AddDate(0, -1, 0)
	}

	stats, err := h.Stats.Report(r.Context(), since, now)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
