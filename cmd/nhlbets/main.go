// Command nhlbets runs the bets pipeline once for today's slate and exits.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/config"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/metrics"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/pipeline"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("driver", cfg.DatabaseDriver).
		Strs("bookmakers", cfg.Bookmakers).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := pipeline.NewService(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}

	report, runErr := svc.RunOnce(ctx, time.Now())

	if err := svc.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close resources")
	}
	log.Info().Str("path", cfg.DatabaseDSN()).Msg("📦 Database closed")

	if cfg.MetricsPushgatewayURL != "" {
		if err := metrics.Push(cfg.MetricsPushgatewayURL); err != nil {
			log.Warn().Err(err).Msg("Failed to push metrics")
		}
	}

	if runErr != nil {
		log.Fatal().Err(runErr).Str("run_id", report.RunID).Msg("Run aborted")
	}
}

// setupLogger writes human-readable status lines to stdout
func setupLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	})

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}
