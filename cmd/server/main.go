// Package main is the entry point for the care scheduling API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sanjshine99/carepath/internal/config"
	"github.com/sanjshine99/carepath/internal/geo"
	"github.com/sanjshine99/carepath/internal/handler"
	"github.com/sanjshine99/carepath/internal/repository"
	"github.com/sanjshine99/carepath/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg := config.Load()

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := repository.NewDB(repository.DBConfig{
		URL:                 cfg.Database.URL,
		MaxOpenConns:        cfg.Database.MaxOpenConns,
		MaxIdleConns:        cfg.Database.MaxIdleConns,
		ConnMaxLifetime:     cfg.Database.ConnMaxLifetime,
		PoolMaxConns:        int32(cfg.Database.PoolMaxConns),
		PoolMinConns:        int32(cfg.Database.PoolMinConns),
		PoolMaxConnIdleTime: cfg.Database.PoolMaxConnIdleTime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database connection")
		}
	}()

	// Repositories.
	careGiverRepo := repository.NewCareGiverRepository(db)
	careReceiverRepo := repository.NewCareReceiverRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	settingsRepo := repository.NewSystemSettingsRepository(db)

	// External route-time lookup is best-effort: the estimator only
	// consults the routing service when a token is configured and falls
	// back to the haversine estimate otherwise.
	var routingClient geo.RoutingClient
	if cfg.Routing.APIKey != "" && cfg.Routing.BaseURL != "" {
		routingClient = geo.NewHTTPRoutingClient(cfg.Routing.BaseURL, cfg.Routing.APIKey)
		log.Info().Str("base_url", cfg.Routing.BaseURL).Msg("routing service configured")
	}
	estimator := geo.NewEstimator(routingClient)

	// Scheduling core.
	availabilityStore := service.NewAvailabilityStore(availabilityRepo)
	settingsService := service.NewSettingsService(settingsRepo, cfg.Settings.CacheTTL)
	feasibility := service.NewFeasibilityOracle(careGiverRepo, appointmentRepo, availabilityStore, settingsService, estimator)
	assignmentEngine := service.NewAssignmentEngine(careGiverRepo, appointmentRepo, availabilityStore, feasibility, settingsService)
	notifier := service.NewLoggingNotifier()
	orchestrator := service.NewOrchestrator(careReceiverRepo, assignmentEngine, notifier)
	validator := service.NewValidator(careReceiverRepo, careGiverRepo, appointmentRepo, availabilityStore)
	analyzer := service.NewAnalyzer(careGiverRepo, appointmentRepo, availabilityStore, settingsService, estimator)

	scheduleHandler := handler.NewScheduleHandler(
		orchestrator, validator, analyzer, feasibility, availabilityStore, settingsService,
		notifier, estimator, careReceiverRepo, careGiverRepo, appointmentRepo,
	)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL, "http://localhost:3000", "http://localhost:3001"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Health(req.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		handler.RegisterScheduleRoutes(r, scheduleHandler)

		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"carepath scheduling API v1"}`))
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
