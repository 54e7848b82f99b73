package models

import "database/sql"

// BetRow is one persisted (game, bookmaker) comparison in the bets table
type BetRow struct {
	ID                 int64          `db:"id" json:"id,omitempty"`
	GameDate           string         `db:"game_date" json:"game_date"`
	HomeTeam           string         `db:"home_team" json:"home_team"`
	AwayTeam           string         `db:"away_team" json:"away_team"`
	Source             string         `db:"source" json:"source"`
	HomeWinPct         float64        `db:"home_win_pct" json:"home_win_pct"`
	AwayWinPct         float64        `db:"away_win_pct" json:"away_win_pct"`
	HomeOdds           float64        `db:"home_odds" json:"home_odds"`
	AwayOdds           float64        `db:"away_odds" json:"away_odds"`
	HomeImpliedPct     float64        `db:"home_implied_pct" json:"home_implied_pct"`
	AwayImpliedPct     float64        `db:"away_implied_pct" json:"away_implied_pct"`
	HomeValue          float64        `db:"home_value" json:"home_value"`
	AwayValue          float64        `db:"away_value" json:"away_value"`
	HomeClassification string         `db:"home_classification" json:"home_classification"`
	AwayClassification string         `db:"away_classification" json:"away_classification"`
	Outcome            sql.NullString `db:"outcome" json:"-"`
}
