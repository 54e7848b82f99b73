package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Database holds the database handle and provides access to repositories
type Database struct {
	DB      *sql.DB
	dialect dialect
	dedupe  bool

	// Repositories
	Bets *BetRepository
}

// Config holds database configuration
type Config struct {
	Driver string // "sqlite3" or "pgx"
	DSN    string // file path for sqlite3, connection URL for pgx

	// Dedupe adds a unique index on (game_date, home_team, away_team, source)
	// and turns repeated inserts into no-ops.
	Dedupe bool
}

// NewDatabase opens the database and initializes repositories.
// The schema is not touched until Migrate is called.
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == "sqlite3" {
		// One writer; avoids SQLITE_BUSY between the migration and the inserts
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("driver", cfg.Driver).
		Bool("dedupe", cfg.Dedupe).
		Msg("Successfully connected to database")

	db := &Database{
		DB:      sqlDB,
		dialect: d,
		dedupe:  cfg.Dedupe,
	}
	db.Bets = &BetRepository{db: db}

	return db, nil
}

// Close closes the database handle
func (db *Database) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Info().Msg("Database closed")
	return nil
}

// Health checks if the database is reachable
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}
