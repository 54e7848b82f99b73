package repository

import (
	"testing"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBet(source string) *models.BetRow {
	return &models.BetRow{
		GameDate:           "2025-10-07",
		HomeTeam:           "Boston Bruins",
		AwayTeam:           "Chicago Blackhawks",
		Source:             source,
		HomeWinPct:         65,
		AwayWinPct:         35,
		HomeOdds:           -150,
		AwayOdds:           150,
		HomeImpliedPct:     60,
		AwayImpliedPct:     40,
		HomeValue:          5,
		AwayValue:          -5,
		HomeClassification: "Strong Bet",
		AwayClassification: "No Bet",
	}
}

func TestBetRepository_Insert(t *testing.T) {
	db, ctx := setupTestDB(t, false)
	_, err := db.Migrate(ctx)
	require.NoError(t, err)

	bet := sampleBet("fanduel")
	id, err := db.Bets.Insert(ctx, bet)
	require.NoError(t, err, "Should insert bet")
	assert.Positive(t, id)
	assert.Equal(t, id, bet.ID)

	rows, err := db.Bets.ListByDate(ctx, "2025-10-07")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, "Boston Bruins", got.HomeTeam)
	assert.Equal(t, "fanduel", got.Source)
	assert.Equal(t, -150.0, got.HomeOdds)
	assert.Equal(t, 5.0, got.HomeValue)
	assert.Equal(t, "Strong Bet", got.HomeClassification)
	assert.False(t, got.Outcome.Valid, "outcome is never set at insert time")

	none, err := db.Bets.ListByDate(ctx, "2025-10-08")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBetRepository_AppendOnlyAllowsDuplicates(t *testing.T) {
	db, ctx := setupTestDB(t, false)
	_, err := db.Migrate(ctx)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := db.Bets.Insert(ctx, sampleBet("bet365"))
		require.NoError(t, err)
	}

	n, err := db.Bets.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBetRepository_DedupeSkipsRepeats(t *testing.T) {
	db, ctx := setupTestDB(t, true)
	_, err := db.Migrate(ctx)
	require.NoError(t, err)

	_, err = db.Bets.Insert(ctx, sampleBet("bet365"))
	require.NoError(t, err)

	_, err = db.Bets.Insert(ctx, sampleBet("bet365"))
	assert.ErrorIs(t, err, ErrDuplicateBet)

	_, err = db.Bets.Insert(ctx, sampleBet("fanduel"))
	require.NoError(t, err, "another bookmaker is a different row")

	n, err := db.Bets.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBetRepository_DedupeFallsBackWhenDuplicatesExist(t *testing.T) {
	plain, ctx := setupTestDB(t, false)
	_, err := plain.Migrate(ctx)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := plain.Bets.Insert(ctx, sampleBet("bet365"))
		require.NoError(t, err)
	}

	// Same database, now asking for dedupe: the index cannot be built
	plain.dedupe = true
	_, err = plain.Migrate(ctx)
	require.NoError(t, err)
	assert.False(t, plain.dedupe)

	_, err = plain.Bets.Insert(ctx, sampleBet("bet365"))
	require.NoError(t, err)
}

func TestBetRepository_InsertWithoutTable(t *testing.T) {
	db, ctx := setupTestDB(t, false)

	_, err := db.Bets.Insert(ctx, sampleBet("bet365"))
	assert.Error(t, err)
}

func TestBetRepository_ListByDateReadsRowsFromOlderTable(t *testing.T) {
	db, ctx := setupTestDB(t, false)

	_, err := db.DB.ExecContext(ctx, `
		CREATE TABLE bets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_date TEXT,
			home_team TEXT,
			away_team TEXT
		)`)
	require.NoError(t, err)
	_, err = db.DB.ExecContext(ctx, `INSERT INTO bets (game_date, home_team, away_team) VALUES ('2025-10-07', 'New York Rangers', 'Pittsburgh Penguins')`)
	require.NoError(t, err)

	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	_, err = db.Bets.Insert(ctx, sampleBet("fanduel"))
	require.NoError(t, err)

	rows, err := db.Bets.ListByDate(ctx, "2025-10-07")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	old := rows[0]
	assert.Equal(t, "New York Rangers", old.HomeTeam)
	assert.Empty(t, old.Source)
	assert.Zero(t, old.HomeOdds)
	assert.Empty(t, old.HomeClassification)
	assert.False(t, old.Outcome.Valid)

	assert.Equal(t, "fanduel", rows[1].Source)
	assert.Equal(t, -150.0, rows[1].HomeOdds)
}
