package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vroomgo/internal/auth"
	"vroomgo/internal/db"
	"vroomgo/internal/entities"
	"vroomgo/internal/repository"
	"vroomgo/internal/service"
)

const testSecret = "test-secret"

type testServer struct {
	store  *repository.MemoryStore
	router http.Handler
	auth   *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()

	bookingSvc := service.NewBookingService(store, store.Vehicles(), nil, nil, zerolog.Nop())
	vehicleSvc := service.NewVehicleService(store.Vehicles())
	authSvc := service.NewAuthService(store.Users(), testSecret)
	statsSvc := service.NewStatsService(store, store.Vehicles())

	router := NewRouter(
		NewBookingHandler(bookingSvc),
		NewVehicleHandler(vehicleSvc),
		NewAuthHandler(authSvc),
		NewAdminHandler(bookingSvc, vehicleSvc, authSvc, statsSvc),
		nil,
		auth.NewMiddleware(testSecret),
	)
	return &testServer{store: store, router: router, auth: authSvc}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) registerUser(t *testing.T, email string) string {
	t.Helper()
	resp, err := ts.auth.Register(context.Background(), entities.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	return resp.Token
}

func (ts *testServer) registerAdmin(t *testing.T, email string) string {
	t.Helper()
	ts.registerUser(t, email)
	ctx := context.Background()
	user, err := ts.store.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	user.IsAdmin = true
	require.NoError(t, ts.store.CreateUser(ctx, user))

	resp, err := ts.auth.Login(ctx, entities.LoginRequest{Email: email, Password: "hunter2hunter2"})
	require.NoError(t, err)
	return resp.Token
}

func (ts *testServer) seedVehicle(t *testing.T, rate int) db.Vehicle {
	t.Helper()
	vehicle := db.Vehicle{
		ID:         "veh-1",
		Name:       "Honda City",
		Type:       db.VehicleTypeCar,
		HourlyRate: rate,
		Available:  true,
	}
	require.NoError(t, ts.store.CreateVehicle(context.Background(), &vehicle))
	return vehicle
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestBookingEndpoints(t *testing.T) {
	ts := newTestServer(t)
	vehicle := ts.seedVehicle(t, 100)
	token := ts.registerUser(t, "user@example.com")
	otherToken := ts.registerUser(t, "other@example.com")

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	createReq := entities.CreateBookingRequest{
		VehicleID: vehicle.ID,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Customer: entities.CustomerDetails{
			FirstName: "Asha", LastName: "Rao",
			Email: "asha@example.com", Phone: "+919900112233",
		},
	}

	// Unauthenticated booking attempts are rejected.
	rec := ts.do(t, http.MethodPost, "/api/bookings", "", createReq)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/bookings", token, createReq)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[entities.BookingResponse](t, rec)
	assert.Equal(t, 200, created.TotalPrice)
	assert.Equal(t, db.StatusPending, created.Status)

	// The availability check is public and sees the new booking.
	rec = ts.do(t, http.MethodPost, "/api/availability", "", entities.AvailabilityRequest{
		VehicleID: vehicle.ID,
		StartTime: start.Add(time.Hour),
		EndTime:   start.Add(3 * time.Hour),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[entities.AvailabilityResponse](t, rec).Available)

	// An overlapping booking comes back as a conflict.
	overlap := createReq
	overlap.StartTime = start.Add(time.Hour)
	overlap.EndTime = start.Add(3 * time.Hour)
	rec = ts.do(t, http.MethodPost, "/api/bookings", otherToken, overlap)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/bookings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]entities.BookingResponse](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, db.DisplayUpcoming, listed[0].DisplayStatus)

	// Another user cancelling gets a 404, not a 403.
	rec = ts.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancel", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancel", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Cancelling again hits the terminal-state rule.
	rec = ts.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The freed window can be booked by the other user now.
	rec = ts.do(t, http.MethodPost, "/api/bookings", otherToken, overlap)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRescheduleEndpoint(t *testing.T) {
	ts := newTestServer(t)
	vehicle := ts.seedVehicle(t, 100)
	token := ts.registerUser(t, "user@example.com")

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	rec := ts.do(t, http.MethodPost, "/api/bookings", token, entities.CreateBookingRequest{
		VehicleID: vehicle.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Customer: entities.CustomerDetails{
			FirstName: "Asha", LastName: "Rao",
			Email: "asha@example.com", Phone: "+919900112233",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[entities.BookingResponse](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/reschedule", token, entities.RescheduleBookingRequest{
		StartTime: start.Add(3 * time.Hour),
		EndTime:   start.Add(6 * time.Hour),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[entities.BookingResponse](t, rec)
	assert.Equal(t, 300, updated.TotalPrice)
	assert.Equal(t, db.StatusPending, updated.Status)
}

func TestVehicleEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.seedVehicle(t, 100)

	rec := ts.do(t, http.MethodGet, "/api/vehicles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	vehicles := decode[[]entities.VehicleResponse](t, rec)
	require.Len(t, vehicles, 1)

	rec = ts.do(t, http.MethodGet, "/api/vehicles/"+vehicles[0].ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/vehicles/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/vehicles?type=boat", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", entities.RegisterRequest{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	registered := decode[entities.AuthResponse](t, rec)
	assert.NotEmpty(t, registered.Token)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", entities.LoginRequest{
		Email:    "asha@example.com",
		Password: "hunter2hunter2",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", entities.LoginRequest{
		Email:    "asha@example.com",
		Password: "nope-nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpoints(t *testing.T) {
	ts := newTestServer(t)
	vehicle := ts.seedVehicle(t, 100)
	userToken := ts.registerUser(t, "user@example.com")
	adminToken := ts.registerAdmin(t, "admin@example.com")

	// A plain user token is forbidden on admin routes.
	rec := ts.do(t, http.MethodGet, "/admin/bookings", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	rec = ts.do(t, http.MethodPost, "/api/bookings", userToken, entities.CreateBookingRequest{
		VehicleID: vehicle.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Customer: entities.CustomerDetails{
			FirstName: "Asha", LastName: "Rao",
			Email: "asha@example.com", Phone: "+919900112233",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[entities.BookingResponse](t, rec)

	rec = ts.do(t, http.MethodGet, fmt.Sprintf("/admin/bookings?status=%s&vehicle_id=%s", db.StatusPending, vehicle.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]entities.BookingResponse](t, rec)
	assert.Len(t, listed, 1)

	rec = ts.do(t, http.MethodGet, "/admin/bookings?date=not-a-date", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/admin/bookings/"+created.ID+"/status", adminToken, entities.UpdateBookingStatusRequest{Status: db.StatusConfirmed})
	assert.Equal(t, http.StatusOK, rec.Code)

	// pending -> completed is not a legal edge anymore, booking is confirmed;
	// confirmed -> pending never is.
	rec = ts.do(t, http.MethodPut, "/admin/bookings/"+created.ID+"/status", adminToken, entities.UpdateBookingStatusRequest{Status: db.StatusPending})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/admin/vehicles", adminToken, entities.VehicleRequest{
		Name: "Royal Enfield", Type: db.VehicleTypeBike, HourlyRate: 60, Available: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	bike := decode[entities.VehicleResponse](t, rec)

	rec = ts.do(t, http.MethodDelete, "/admin/vehicles/"+bike.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]entities.UserResponse](t, rec)
	assert.Len(t, users, 2)

	rec = ts.do(t, http.MethodGet, "/admin/stats?range=week", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[entities.StatsResponse](t, rec)
	assert.Equal(t, 1, stats.TotalBookings)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
