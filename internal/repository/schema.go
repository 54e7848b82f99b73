package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/metrics"

	"github.com/rs/zerolog/log"
)

// BetsTable is the only table the pipeline writes
const BetsTable = "bets"

const betsUniqueIndex = "bets_game_source_unique"

// ColumnType is the logical type of a column; dialects map it to SQL
type ColumnType string

const (
	ColumnText ColumnType = "TEXT"
	ColumnReal ColumnType = "REAL"
)

// Column is one declared column of the bets table
type Column struct {
	Name string
	Type ColumnType
}

// SchemaVersion lists the columns a schema revision introduced.
// Versions are append-only: a new revision adds columns, it never edits an old one.
type SchemaVersion struct {
	Version     int
	Description string
	Columns     []Column
}

// SchemaVersions is the declared history of the bets table
var SchemaVersions = []SchemaVersion{
	{
		Version:     1,
		Description: "bet value per game and bookmaker",
		Columns: []Column{
			{"game_date", ColumnText},
			{"home_team", ColumnText},
			{"away_team", ColumnText},
			{"source", ColumnText},
			{"home_win_pct", ColumnReal},
			{"away_win_pct", ColumnReal},
			{"home_odds", ColumnReal},
			{"away_odds", ColumnReal},
			{"home_implied_pct", ColumnReal},
			{"away_implied_pct", ColumnReal},
			{"home_value", ColumnReal},
			{"away_value", ColumnReal},
			{"home_classification", ColumnText},
			{"away_classification", ColumnText},
			{"outcome", ColumnText},
		},
	},
}

// ExpectedColumns returns the union of all declared versions in declaration order
func ExpectedColumns() []Column {
	var cols []Column
	seen := make(map[string]bool)
	for _, v := range SchemaVersions {
		for _, c := range v.Columns {
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			cols = append(cols, c)
		}
	}
	return cols
}

// DiffColumns returns the expected columns absent from the live table.
// Live columns that are not expected are ignored; nothing is ever dropped.
func DiffColumns(expected []Column, live []string) []Column {
	have := make(map[string]bool, len(live))
	for _, name := range live {
		have[strings.ToLower(name)] = true
	}

	var missing []Column
	for _, c := range expected {
		if !have[strings.ToLower(c.Name)] {
			missing = append(missing, c)
		}
	}
	return missing
}

// LiveColumns introspects the columns currently present on a table
func (db *Database) LiveColumns(ctx context.Context, table string) ([]string, error) {
	return db.dialect.liveColumns(ctx, db.DB, table)
}

// Migrate creates the bets table when absent and adds any declared column the
// live table lacks. It returns the added columns; a converged table yields none.
func (db *Database) Migrate(ctx context.Context) ([]Column, error) {
	expected := ExpectedColumns()

	if _, err := db.DB.ExecContext(ctx, db.createTableSQL(expected)); err != nil {
		return nil, fmt.Errorf("failed to create %s table: %w", BetsTable, err)
	}

	live, err := db.LiveColumns(ctx, BetsTable)
	if err != nil {
		return nil, err
	}

	missing := DiffColumns(expected, live)
	for _, c := range missing {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", BetsTable, c.Name, db.dialect.sqlType(c.Type))
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to add column %s: %w", c.Name, err)
		}
		log.Info().
			Str("column", c.Name).
			Str("type", string(c.Type)).
			Msg("🔧 Added missing column")
	}
	metrics.RecordColumnsAdded(len(missing))

	if db.dedupe {
		if err := db.ensureUniqueIndex(ctx); err != nil {
			// Existing duplicate rows block the index; keep appending instead of failing the run
			log.Warn().Err(err).Msg("Could not create unique bets index, rows will be appended")
			db.dedupe = false
		}
	}

	return missing, nil
}

func (db *Database) createTableSQL(cols []Column) string {
	defs := []string{db.dialect.idColumn}
	for _, c := range cols {
		defs = append(defs, fmt.Sprintf("%s %s", c.Name, db.dialect.sqlType(c.Type)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", BetsTable, strings.Join(defs, ",\n\t"))
}

func (db *Database) ensureUniqueIndex(ctx context.Context) error {
	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (game_date, home_team, away_team, source)",
		betsUniqueIndex, BetsTable,
	)
	if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create unique index: %w", err)
	}
	return nil
}
