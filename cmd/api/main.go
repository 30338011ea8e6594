// Package main is the entry point for the Tomo API server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/tomo-travel/tomo/backend/internal/auth"
	"github.com/tomo-travel/tomo/backend/internal/config"
	"github.com/tomo-travel/tomo/backend/internal/handler"
	"github.com/tomo-travel/tomo/backend/internal/middleware"
	"github.com/tomo-travel/tomo/backend/internal/repo"
	"github.com/tomo-travel/tomo/backend/internal/rules"
	"github.com/tomo-travel/tomo/backend/internal/service"
	"github.com/tomo-travel/tomo/backend/internal/ws"
	"github.com/tomo-travel/tomo/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic. Containerized
	// Postgres often comes up a few seconds after the API, so retry with
	// backoff instead of failing the first ping.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 30*time.Second)
	err = retry.Do(pingCtx, retry.WithMaxDuration(30*time.Second, retry.NewExponential(500*time.Millisecond)),
		func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
	cancelPing()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Migrations -------------------------------------------------------
	// Goose runs the embedded migrations on every start; already-applied
	// versions are a no-op.
	if err := runMigrations(pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Repositories and services ----------------------------------------
	trips := repo.NewTripRepo(pool)
	expenses := repo.NewExpenseRepo(pool)
	places := repo.NewPlaceRepo(pool)
	itineraries := repo.NewItineraryRepo(pool)
	notifications := repo.NewNotificationRepo(pool)
	contexts := repo.NewTripContextRepo(pool)

	hub := ws.NewHub()
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	go hub.Run(rootCtx)

	tripSvc := service.NewTripService(trips)
	expenseSvc := service.NewExpenseService(trips, expenses)
	placeSvc := service.NewPlaceService(trips, places)
	notificationSvc := service.NewNotificationService(notifications, hub)
	itinerarySvc := service.NewItineraryService(trips, itineraries, notificationSvc)
	warningSvc := service.NewWarningService(trips, expenses, contexts, places, notifications, hub, rules.DefaultThresholds())
	contextSvc := service.NewContextService(trips, contexts, warningSvc)
	exportSvc := service.NewExportService(trips, itineraries, places)

	// Background re-evaluation keeps time-based warnings (last train,
	// closing time) fresh between device reports.
	go warningSvc.RunSweeper(rootCtx, cfg.SweepInterval, cfg.ContextFreshWindow)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	server := handler.NewServer(
		tripSvc, expenseSvc, placeSvc, itinerarySvc,
		notificationSvc, contextSvc, exportSvc,
		tokens, hub,
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body-size cap. The auth gate wraps only the /trips subtree so
	// /healthz and /auth/device stay public.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Mount("/", server.Routes(middleware.RequireAuth(tokens)))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// No WriteTimeout: /ws connections are long-lived and manage their own
	// write deadlines.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")
	cancelRoot() // stops the sweeper and closes websocket clients

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// runMigrations applies the embedded goose migrations through a database/sql
// handle borrowed from the pgx pool.
func runMigrations(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}
