// Package main is the entry point for the grievance ticket server.
// It serves edit and create sessions for grievance tickets: a session
// normalizes a stored ticket into an editable form, reconciles changes to
// an individual's documents, identities and payment channels, and submits
// the result as a mutation.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/unicef/hope-grievance/internal/config"
	"github.com/unicef/hope-grievance/internal/database"
	"github.com/unicef/hope-grievance/internal/grievance"
	"github.com/unicef/hope-grievance/internal/handlers"
	"github.com/unicef/hope-grievance/internal/middleware"
	"github.com/unicef/hope-grievance/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger, _ := zap.NewProduction()
	if cfg.Environment == "development" {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("Starting grievance ticket server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"schema_file", cfg.SchemaFile,
	)

	// Initialize database connection pool
	db, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// The schema cache is optional
	var (
		schemaCache services.SchemaCache
		cachePinger handlers.Pinger
	)
	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		sugar.Warnw("Redis unavailable, schema cache disabled", "error", err)
	} else {
		defer rdb.Close()
		schemaCache = services.NewRedisSchemaCache(rdb)
		cachePinger = handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	var schemaSource services.SchemaSource = services.NewDBSchemaSource(db)
	if cfg.SchemaFile != "" {
		schemaSource = services.NewFileSchemaSource(cfg.SchemaFile)
	}

	// Initialize services
	ticketStore := services.NewTicketStore(db, sugar)
	schemaSvc := services.NewSchemaService(schemaSource, schemaCache, cfg.SchemaCacheTTL, sugar)
	activitySvc := services.NewActivityLogService(db, sugar)
	sessionSvc := services.NewEditSessionService(ticketStore, schemaSvc, activitySvc,
		grievance.NewRegistry(), services.RequiredFieldsValidator{}, sugar)
	reaper := services.NewSessionReaper(sessionSvc, cfg.SessionIdleTimeout, sugar)

	// Start background reaper (drops abandoned edit sessions)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go reaper.Start(workerCtx, cfg.SessionSweepInterval)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionSvc, sugar)
	schemaHandler := handlers.NewSchemaHandler(schemaSvc, sugar)
	activityHandler := handlers.NewActivityHandler(activitySvc, sugar)
	healthHandler := handlers.NewHealthHandler(db, cachePinger, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWTSecret))
			r.Use(middleware.RateLimit(cfg.RateLimitRPM))

			// Field schema and value presentation
			r.Get("/schema/{scope}", schemaHandler.Get)
			r.Post("/present", schemaHandler.Present)

			// Edit and create sessions
			r.Route("/sessions", sessionHandler.Routes)

			// Activity log endpoints
			r.Route("/activity", func(r chi.Router) {
				r.Get("/ticket/{ticketId}", activityHandler.ByTicket)
				r.Get("/recent", activityHandler.Recent)
			})
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Infow("Server stopped", "open_sessions", sessionSvc.Count())
}
