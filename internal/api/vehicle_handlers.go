package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"vroomgo/internal/metrics"
	"vroomgo/internal/service"
)

type VehicleHandler struct {
	Service *service.VehicleService
}

func NewVehicleHandler(svc *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{Service: svc}
}

func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("vehicles_list")
	vehicleType := r.URL.Query().Get("type")
	search := r.URL.Query().Get("q")
	vehicles, err := h.Service.List(r.Context(), vehicleType, search)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("vehicles_get")
	vehicle, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}
