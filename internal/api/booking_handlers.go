package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"vroomgo/internal/auth"
	"vroomgo/internal/entities"
	"vroomgo/internal/metrics"
	"vroomgo/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	var req entities.AvailabilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	available, err := h.Service.CheckAvailability(r.Context(), req.VehicleID, req.StartTime, req.EndTime, "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.AvailabilityResponse{Available: available})
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_create")
	var req entities.CreateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	booking, err := h.Service.CreateBooking(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_list")
	bookings, err := h.Service.ListUserBookings(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_cancel")
	id := mux.Vars(r)["id"]
	err := h.Service.CancelBooking(r.Context(), id, auth.UserID(r.Context()), auth.IsAdmin(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

func (h *BookingHandler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_reschedule")
	id := mux.Vars(r)["id"]
	var req entities.RescheduleBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	booking, err := h.Service.RescheduleBooking(r.Context(), id, auth.UserID(r.Context()), auth.IsAdmin(r.Context()), req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
