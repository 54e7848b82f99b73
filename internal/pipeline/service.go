package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/client"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/config"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/publisher"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// streamMaxLen bounds the bets stream; old entries are trimmed approximately
const streamMaxLen = 10000

// Service owns the long-lived collaborators of the pipeline built from configuration
type Service struct {
	cfg *config.Config

	DB         *repository.Database
	Odds       *client.OddsClient
	Sportradar *client.SportradarClient
	Publisher  *publisher.StreamPublisher
}

// NewService opens the database, brings the bets schema up to date and builds
// the API clients. Redis is optional: when it is unreachable the service runs
// without a publisher.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	db, err := repository.NewDatabase(ctx, repository.Config{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseDSN(),
		Dedupe: cfg.BetsDedupe,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	added, err := db.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Info().Int("columns_added", len(added)).Msg("Schema up to date")

	s := &Service{
		cfg: cfg,
		DB:  db,
		Odds: client.NewOddsClient(
			cfg.OddsAPIBaseURL,
			cfg.OddsAPIKey,
			cfg.OddsSportKey,
			cfg.HTTPTimeout,
		),
		Sportradar: client.NewSportradarClient(
			cfg.SportradarBaseURL,
			cfg.SportradarAPIKey,
			cfg.SportradarAccessLevel,
			cfg.HTTPTimeout,
			cfg.RateLimitRetryDelay,
		),
	}

	if cfg.RedisEnabled {
		s.Publisher = connectPublisher(ctx, cfg)
	}

	return s, nil
}

func connectPublisher(ctx context.Context, cfg *config.Config) *publisher.StreamPublisher {
	p := publisher.NewStreamPublisher(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}), cfg.OddsSportKey, streamMaxLen)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without publisher")
		p.Close()
		return nil
	}

	log.Info().
		Str("addr", cfg.RedisAddr()).
		Str("stream", publisher.StreamKey(cfg.OddsSportKey)).
		Msg("Redis publisher connected")
	return p
}

// Deps returns the run dependencies for the slate containing now
func (s *Service) Deps(now time.Time) Deps {
	deps := Deps{
		Odds:     s.Odds,
		Schedule: s.Sportradar,
		Store:    s.DB.Bets,
		Options:  OptionsFromConfig(s.cfg, now),
	}
	if s.Publisher != nil {
		deps.Publisher = s.Publisher
	}
	return deps
}

// RunOnce runs the pipeline for the slate containing now
func (s *Service) RunOnce(ctx context.Context, now time.Time) (*Report, error) {
	return Run(ctx, s.Deps(now))
}

// Health reports whether the database is reachable
func (s *Service) Health(ctx context.Context) error {
	return s.DB.Health(ctx)
}

// Close releases the database and Redis connections
func (s *Service) Close() error {
	var errs []error
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if err := s.DB.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
