package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vroomgo/internal/auth"
)

// NewRouter wires every endpoint. Handed the handlers rather than building
// them so tests can mount the router over an in-memory store.
func NewRouter(bookings *BookingHandler, vehicles *VehicleHandler, authH *AuthHandler, admin *AdminHandler, stripe *StripeWebhookHandler, mw *auth.Middleware) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public endpoints
	r.HandleFunc("/api/auth/register", authH.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authH.Login).Methods("POST")
	r.HandleFunc("/api/vehicles", vehicles.ListVehicles).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}", vehicles.GetVehicle).Methods("GET")
	r.HandleFunc("/api/availability", bookings.CheckAvailability).Methods("POST")
	if stripe != nil {
		r.HandleFunc("/api/stripe/webhook", stripe.HandleWebhook).Methods("POST")
	}

	// Authenticated user endpoints
	user := r.PathPrefix("/api/bookings").Subrouter()
	user.Use(mw.RequireUser)
	user.HandleFunc("", bookings.CreateBooking).Methods("POST")
	user.HandleFunc("", bookings.ListMyBookings).Methods("GET")
	user.HandleFunc("/{id}/cancel", bookings.CancelBooking).Methods("POST")
	user.HandleFunc("/{id}/reschedule", bookings.RescheduleBooking).Methods("POST")

	// Admin endpoints
	adm := r.PathPrefix("/admin").Subrouter()
	adm.Use(mw.RequireAdmin)
	adm.HandleFunc("/bookings", admin.ListBookings).Methods("GET")
	adm.HandleFunc("/bookings/{id}/status", admin.UpdateBookingStatus).Methods("PUT")
	adm.HandleFunc("/vehicles", admin.CreateVehicle).Methods("POST")
	adm.HandleFunc("/vehicles/{id}", admin.UpdateVehicle).Methods("PUT")
	adm.HandleFunc("/vehicles/{id}", admin.RetireVehicle).Methods("DELETE")
	adm.HandleFunc("/users", admin.ListUsers).Methods("GET")
	adm.HandleFunc("/stats", admin.GetStats).Methods("GET")

	return r
}
