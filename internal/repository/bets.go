package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/metrics"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"
)

// ErrDuplicateBet is returned by Insert when dedupe is on and the
// (game_date, home_team, away_team, source) row already exists
var ErrDuplicateBet = errors.New("bet already recorded")

var betColumns = []string{
	"game_date", "home_team", "away_team", "source",
	"home_win_pct", "away_win_pct",
	"home_odds", "away_odds",
	"home_implied_pct", "away_implied_pct",
	"home_value", "away_value",
	"home_classification", "away_classification",
	"outcome",
}

// BetRepository handles bets table operations
type BetRepository struct {
	db *Database
}

// Insert appends one bet row and returns its id. The outcome column is
// always written as NULL; results are resolved elsewhere.
func (r *BetRepository) Insert(ctx context.Context, bet *models.BetRow) (int64, error) {
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		BetsTable, strings.Join(betColumns, ", "), r.db.dialect.placeholders(len(betColumns)),
	)
	if r.db.dedupe {
		query += " ON CONFLICT (game_date, home_team, away_team, source) DO NOTHING"
	}
	query += " RETURNING id"

	start := time.Now()
	var id int64
	err := r.db.DB.QueryRowContext(
		ctx, query,
		bet.GameDate, bet.HomeTeam, bet.AwayTeam, bet.Source,
		bet.HomeWinPct, bet.AwayWinPct,
		bet.HomeOdds, bet.AwayOdds,
		bet.HomeImpliedPct, bet.AwayImpliedPct,
		bet.HomeValue, bet.AwayValue,
		bet.HomeClassification, bet.AwayClassification,
		nil,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) && r.db.dedupe {
		metrics.RecordDBQuery("insert", BetsTable, "duplicate", time.Since(start).Seconds())
		return 0, ErrDuplicateBet
	}
	if err != nil {
		metrics.RecordDBQuery("insert", BetsTable, "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("failed to insert bet: %w", err)
	}
	metrics.RecordDBQuery("insert", BetsTable, "success", time.Since(start).Seconds())

	bet.ID = id
	bet.Outcome = sql.NullString{}
	return id, nil
}

// selectColumns reads NULL as the zero value. Rows written before Migrate
// added a column carry NULL there; outcome stays nullable.
func selectColumns() string {
	types := make(map[string]ColumnType)
	for _, col := range ExpectedColumns() {
		types[col.Name] = col.Type
	}

	exprs := make([]string, 0, len(betColumns))
	for _, name := range betColumns {
		switch {
		case name == "outcome":
			exprs = append(exprs, name)
		case types[name] == ColumnReal:
			exprs = append(exprs, fmt.Sprintf("COALESCE(%s, 0)", name))
		default:
			exprs = append(exprs, fmt.Sprintf("COALESCE(%s, '')", name))
		}
	}
	return strings.Join(exprs, ", ")
}

// ListByDate returns the rows recorded for a game date in insert order
func (r *BetRepository) ListByDate(ctx context.Context, gameDate string) ([]*models.BetRow, error) {
	query := fmt.Sprintf(
		"SELECT id, %s FROM %s WHERE game_date = %s ORDER BY id",
		selectColumns(), BetsTable, r.db.dialect.placeholder(1),
	)

	start := time.Now()
	rows, err := r.db.DB.QueryContext(ctx, query, gameDate)
	if err != nil {
		metrics.RecordDBQuery("select", BetsTable, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.BetRow
	for rows.Next() {
		var b models.BetRow
		err := rows.Scan(
			&b.ID, &b.GameDate, &b.HomeTeam, &b.AwayTeam, &b.Source,
			&b.HomeWinPct, &b.AwayWinPct,
			&b.HomeOdds, &b.AwayOdds,
			&b.HomeImpliedPct, &b.AwayImpliedPct,
			&b.HomeValue, &b.AwayValue,
			&b.HomeClassification, &b.AwayClassification,
			&b.Outcome,
		)
		if err != nil {
			metrics.RecordDBQuery("select", BetsTable, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bets: %w", err)
	}
	metrics.RecordDBQuery("select", BetsTable, "success", time.Since(start).Seconds())

	return bets, nil
}

// Count returns the number of rows in the bets table
func (r *BetRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+BetsTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bets: %w", err)
	}
	return n, nil
}
