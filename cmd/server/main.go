package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v78"

	"vroomgo/internal/api"
	"vroomgo/internal/auth"
	"vroomgo/internal/config"
	"vroomgo/internal/db"
	"vroomgo/internal/logging"
	"vroomgo/internal/metrics"
	"vroomgo/internal/repository"
	"vroomgo/internal/service"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "json")
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.CreateSchema(sqlDB); err != nil {
		logger.Fatal().Err(err).Msg("failed to create schema")
	}

	metrics.Register()

	bookingRepo := repository.NewBookingRepository(sqlDB)
	vehicleRepo := repository.NewVehicleRepository(sqlDB)
	userRepo := repository.NewUserRepository(sqlDB)
	jobRepo := repository.NewJobRepository(sqlDB)

	var notifier service.Notifier
	if cfg.SendgridAPIKey != "" || cfg.TwilioAccountSID != "" {
		notifier = service.NewNotifyService(cfg, logger)
	}
	var payments service.Payments
	if cfg.StripeSecretKey != "" {
		stripe.Key = cfg.StripeSecretKey
		payments = service.NewStripeService(cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	}

	bookingSvc := service.NewBookingService(bookingRepo, vehicleRepo, notifier, payments, logger)
	vehicleSvc := service.NewVehicleService(vehicleRepo)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	statsSvc := service.NewStatsService(bookingRepo, vehicleRepo)
	jobSvc := service.NewJobService(jobRepo, logger)

	var stripeHandler *api.StripeWebhookHandler
	if cfg.StripeWebhookSecret != "" {
		stripeHandler = api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, bookingSvc, logger)
	}

	router := api.NewRouter(
		api.NewBookingHandler(bookingSvc),
		api.NewVehicleHandler(vehicleSvc),
		api.NewAuthHandler(authSvc),
		api.NewAdminHandler(bookingSvc, vehicleSvc, authSvc, statsSvc),
		stripeHandler,
		auth.NewMiddleware(cfg.JWTSecret),
	)

	scheduler := cron.New()
	scheduler.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := jobSvc.CompleteFinishedBookings(ctx); err != nil {
			logger.Error().Err(err).Msg("completing finished bookings failed")
		}
	})
	scheduler.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := jobSvc.CancelStalePendingBookings(ctx); err != nil {
			logger.Error().Err(err).Msg("cancelling stale bookings failed")
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	logger.Info().Str("port", cfg.Port).Msg("server listening")
	if err := http.ListenAndServe(":"+cfg.Port, cors(router)); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
