package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/config"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/metrics"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/pipeline"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting NHL bets worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("cron", cfg.WorkerCron).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	svc, err := pipeline.NewService(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pipeline")
	}
	defer svc.Close()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid timezone")
	}

	sched := scheduler.NewScheduler(cfg.WorkerCron, loc, func(ctx context.Context) error {
		_, err := svc.RunOnce(ctx, time.Now())
		return err
	})

	// Start metrics HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           newRouter(ctx, svc, sched),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Int("port", cfg.MetricsPort).Msg("Starting metrics server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown: stop taking manual runs first, then drain the scheduler
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Metrics server shutdown failed")
	}

	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// newRouter serves Prometheus metrics, a health check, stored bets and a
// manual trigger. Manual runs receive ctx, so they end with the worker.
func newRouter(ctx context.Context, svc *pipeline.Service, sched *scheduler.Scheduler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]interface{}{"status": "healthy"}
		code := http.StatusOK

		if err := svc.Health(r.Context()); err != nil {
			status["status"] = "unhealthy"
			status["error"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if at, err := sched.LastRun(); !at.IsZero() {
			status["last_run"] = at.Format(time.RFC3339)
			if err != nil {
				status["last_error"] = err.Error()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	})

	r.Get("/bets", func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		bets, err := svc.DB.Bets.ListByDate(r.Context(), date)
		if err != nil {
			log.Error().Err(err).Str("date", date).Msg("Failed to list bets")
			http.Error(w, "failed to list bets", http.StatusInternalServerError)
			return
		}
		if bets == nil {
			bets = []*models.BetRow{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"date":  date,
			"count": len(bets),
			"bets":  bets,
		})
	})

	// Kick off an out-of-schedule run; it outlives the request but not the worker
	r.Post("/run", func(w http.ResponseWriter, r *http.Request) {
		if ctx.Err() != nil {
			http.Error(w, "worker is shutting down", http.StatusServiceUnavailable)
			return
		}
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Error().Err(err).Msg("Manual run failed")
			}
		}()
		w.WriteHeader(http.StatusAccepted)
	})

	return r
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "" || os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}
