package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config holds all application configuration
type Config struct {
	// The Odds API
	OddsAPIKey     string   `envconfig:"ODDS_API_KEY" required:"true"`
	OddsAPIBaseURL string   `envconfig:"ODDS_API_BASE_URL" default:"https://api.the-odds-api.com"`
	OddsSportKey   string   `envconfig:"ODDS_SPORT_KEY" default:"icehockey_nhl"`
	OddsRegions    string   `envconfig:"ODDS_REGIONS" default:"us,eu"`
	Bookmakers     []string `envconfig:"BOOKMAKERS" default:"bet365,fanduel"`

	// Sportradar NHL API
	SportradarAPIKey      string `envconfig:"SPORTRADAR_API_KEY" required:"true"`
	SportradarBaseURL     string `envconfig:"SPORTRADAR_BASE_URL" default:"https://api.sportradar.com"`
	SportradarAccessLevel string `envconfig:"SPORTRADAR_ACCESS_LEVEL" default:"trial"`
	SeasonYear            int    `envconfig:"SEASON_YEAR" default:"2024"`
	SeasonType            string `envconfig:"SEASON_TYPE" default:"REG"`

	// Slate
	ScheduleDate string `envconfig:"SCHEDULE_DATE" default:""`
	Timezone     string `envconfig:"TIMEZONE" default:"America/New_York"`

	// HTTP behaviour
	HTTPTimeout         time.Duration `envconfig:"HTTP_TIMEOUT" default:"20s"`
	RateLimitRetryDelay time.Duration `envconfig:"RATE_LIMIT_RETRY_DELAY" default:"3s"`
	AnalyticsPause      time.Duration `envconfig:"ANALYTICS_PAUSE" default:"1500ms"`

	// Database
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"sqlite3"`
	DatabasePath   string `envconfig:"DATABASE_PATH" default:"nhl_bets.db"`
	DatabaseURL    string `envconfig:"DATABASE_URL" default:""`
	BetsDedupe     bool   `envconfig:"BETS_DEDUPE" default:"false"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Monitoring
	MetricsPushgatewayURL string `envconfig:"METRICS_PUSHGATEWAY_URL" default:""`
	MetricsPort           int    `envconfig:"METRICS_PORT" default:"9090"`

	// Worker
	WorkerCron string `envconfig:"WORKER_CRON" default:"0 10 * * *"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	cfg.Bookmakers = normalizeBooks(cfg.Bookmakers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OddsAPIKey == "" {
		return fmt.Errorf("ODDS_API_KEY is required")
	}

	if c.SportradarAPIKey == "" {
		return fmt.Errorf("SPORTRADAR_API_KEY is required")
	}

	if len(c.Bookmakers) == 0 {
		return fmt.Errorf("BOOKMAKERS must name at least one bookmaker")
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for driver %s", DriverSQLite)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	if c.ScheduleDate != "" {
		if _, err := time.Parse(time.DateOnly, c.ScheduleDate); err != nil {
			return fmt.Errorf("SCHEDULE_DATE must be YYYY-MM-DD: %w", err)
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.HTTPTimeout)
	}

	if c.RateLimitRetryDelay < 0 || c.AnalyticsPause < 0 {
		return fmt.Errorf("RATE_LIMIT_RETRY_DELAY and ANALYTICS_PAUSE must not be negative")
	}

	return nil
}

// SlateDate returns the schedule date to fetch. SCHEDULE_DATE wins; otherwise
// today's date in the configured timezone.
func (c *Config) SlateDate(now time.Time) time.Time {
	if c.ScheduleDate != "" {
		if d, err := time.Parse(time.DateOnly, c.ScheduleDate); err == nil {
			return d
		}
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// DatabaseDSN returns the data source name for the configured driver
func (c *Config) DatabaseDSN() string {
	if c.DatabaseDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func normalizeBooks(books []string) []string {
	out := make([]string, 0, len(books))
	seen := make(map[string]bool, len(books))
	for _, b := range books {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out
}
