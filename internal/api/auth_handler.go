package api

import (
	"net/http"

	"vroomgo/internal/entities"
	"vroomgo/internal/metrics"
	"vroomgo/internal/service"
)

type AuthHandler struct {
	Service *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Service: svc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("auth_register")
	var req entities.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.Service.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("auth_login")
	var req entities.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.Service.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
