// Command server runs the repost autopilot backend: an HTTP API for
// candidate intake and settings, plus the periodic scheduling loop that
// refills the backlog and posts due candidates under pacing caps.
//
// Startup order:
//  1. Load .env (best effort) and configuration from the environment
//  2. Configure zerolog (level, optional pretty console)
//  3. Open SQLite, enable GORM tracing, run migrations
//  4. Set up OpenTelemetry (no-op unless OTEL_ENABLED)
//  5. Build the engine, start the cron tick loop
//  6. Serve HTTP until SIGINT/SIGTERM, then shut down gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/reelpilot/go-autopilot-backend/internal/config"
	"github.com/reelpilot/go-autopilot-backend/internal/events"
	httpapi "github.com/reelpilot/go-autopilot-backend/internal/http"
	"github.com/reelpilot/go-autopilot-backend/internal/observability"
	"github.com/reelpilot/go-autopilot-backend/internal/repo"
	"github.com/reelpilot/go-autopilot-backend/internal/scheduler"
	"github.com/reelpilot/go-autopilot-backend/internal/services"
	"github.com/reelpilot/go-autopilot-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting autopilot backend")

	// Storage
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.EnableTracing(db); err != nil {
		log.Fatal().Err(err).Msg("enable db tracing")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	// Tracing
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup opentelemetry")
	}

	// Engine + tick loop
	ring := events.NewRing(cfg.EventBufferCap)
	engine := services.NewAutopilotService(db, ring)

	var runner *scheduler.Runner
	if cfg.Scheduler.Enabled {
		runner = scheduler.New(engine, cfg.Scheduler.TickInterval, log.Logger)
		if err := runner.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("start scheduler")
		}
		log.Info().Dur("interval", cfg.Scheduler.TickInterval).Msg("scheduler started")
	} else {
		log.Warn().Msg("scheduler disabled; ticks must be triggered via the API")
	}

	// HTTP
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, engine, ring, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()
	log.Info().Str("addr", srv.Addr).Msg("http server listening")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// Stop accepting ticks first so no new posts start mid-shutdown.
	if runner != nil {
		runner.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}
