package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/client"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/config"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/metrics"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/odds"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/repository"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/scoring"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// OddsSource returns the raw odds payload
type OddsSource interface {
	FetchOdds(ctx context.Context, opts client.OddsOptions) ([]interface{}, error)
}

// ScheduleSource returns the slate and per-team analytics
type ScheduleSource interface {
	FetchSchedule(ctx context.Context, date time.Time) ([]models.Game, error)
	FetchTeamAnalytics(ctx context.Context, season int, seasonType, teamID, teamName string) (*models.TeamStat, error)
}

// BetStore persists bet rows
type BetStore interface {
	Insert(ctx context.Context, bet *models.BetRow) (int64, error)
}

// Publisher fans persisted rows out to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, runID string, bet *models.BetRow) error
}

// Options are the per-run parameters
type Options struct {
	Date        time.Time
	Season      int
	SeasonType  string
	Bookmakers  []string
	OddsOptions client.OddsOptions

	// Pause is waited after every analytics fetch, successful or not
	Pause time.Duration
}

// OptionsFromConfig builds run options for the slate that contains now
func OptionsFromConfig(cfg *config.Config, now time.Time) Options {
	oddsOpts := client.DefaultOddsOptions
	if cfg.OddsRegions != "" {
		oddsOpts.Regions = cfg.OddsRegions
	}

	return Options{
		Date:        cfg.SlateDate(now),
		Season:      cfg.SeasonYear,
		SeasonType:  cfg.SeasonType,
		Bookmakers:  cfg.Bookmakers,
		OddsOptions: oddsOpts,
		Pause:       cfg.AnalyticsPause,
	}
}

// Deps are the collaborators of one run. Publisher, Sleep and Logger are optional.
type Deps struct {
	Odds      OddsSource
	Schedule  ScheduleSource
	Store     BetStore
	Publisher Publisher
	Sleep     func(ctx context.Context, d time.Duration) error
	Logger    *zerolog.Logger
	Options   Options
}

// Report summarizes a run
type Report struct {
	RunID           string
	Matchups        int
	GamesFound      int
	GamesScored     int
	GamesSkipped    int
	RowsInserted    int
	RowsDuplicate   int
	InsertFailures  int
	RowsPublished   int
	PublishFailures int
	Duration        time.Duration
}

type runner struct {
	deps   Deps
	opts   Options
	books  []string
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	lookup odds.BookmakerOddsLookup
	report *Report
}

// Run executes one sequential pass: odds, schedule, then per game analytics,
// scoring, comparison against each configured book and persistence.
// Odds, analytics, insert and publish failures are logged and the run goes on;
// a schedule failure or context cancellation ends the run with an error.
func Run(ctx context.Context, deps Deps) (*Report, error) {
	start := time.Now()

	r := newRunner(deps)
	err := r.run(ctx)
	r.report.Duration = time.Since(start)

	status := "success"
	if err != nil {
		status = "failure"
		metrics.RecordError("pipeline", "run")
	}
	metrics.RecordRun(status, r.report.Duration.Seconds())

	r.logger.Info().
		Int("games_found", r.report.GamesFound).
		Int("games_scored", r.report.GamesScored).
		Int("games_skipped", r.report.GamesSkipped).
		Int("rows_inserted", r.report.RowsInserted).
		Int("rows_duplicate", r.report.RowsDuplicate).
		Int("insert_failures", r.report.InsertFailures).
		Int("rows_published", r.report.RowsPublished).
		Dur("duration", r.report.Duration).
		Msg("📦 Run complete")

	return r.report, err
}

func newRunner(deps Deps) *runner {
	runID := uuid.NewString()

	base := log.Logger
	if deps.Logger != nil {
		base = *deps.Logger
	}

	sleep := deps.Sleep
	if sleep == nil {
		sleep = client.SleepContext
	}

	books := normalizeBooks(deps.Options.Bookmakers)
	if len(books) == 0 {
		books = odds.DefaultBookmakers
	}

	return &runner{
		deps:   deps,
		opts:   deps.Options,
		books:  books,
		logger: base.With().Str("run_id", runID).Logger(),
		sleep:  sleep,
		report: &Report{RunID: runID},
	}
}

func (r *runner) run(ctx context.Context) error {
	r.lookup = r.fetchLookup(ctx)
	r.report.Matchups = len(r.lookup)

	games, err := r.deps.Schedule.FetchSchedule(ctx, r.opts.Date)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to fetch schedule")
		return fmt.Errorf("failed to fetch schedule: %w", err)
	}

	r.report.GamesFound = len(games)
	r.logger.Info().
		Str("date", r.opts.Date.Format(time.DateOnly)).
		Int("games", len(games)).
		Msgf("Games found: %d", len(games))

	for _, game := range games {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.processGame(ctx, game); err != nil {
			return err
		}
	}

	return nil
}

// fetchLookup never fails the run; without odds every game is scored but nothing is stored
func (r *runner) fetchLookup(ctx context.Context) odds.BookmakerOddsLookup {
	payload, err := r.deps.Odds.FetchOdds(ctx, r.opts.OddsOptions)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to fetch odds, continuing without prices")
		metrics.RecordError("pipeline", "odds")
		return odds.BookmakerOddsLookup{}
	}

	lookup := odds.BuildLookup(models.OddsRecordsFromPayload(payload), r.books)
	r.logger.Info().
		Int("games", len(payload)).
		Int("matchups", len(lookup)).
		Strs("bookmakers", r.books).
		Msg("Odds loaded")
	return lookup
}

// processGame returns an error only when the context is done
func (r *runner) processGame(ctx context.Context, game models.Game) error {
	logger := r.logger.With().
		Str("home", game.HomeName).
		Str("away", game.AwayName).
		Logger()

	logger.Info().Msgf("🏒 Game: %s vs %s", game.HomeName, game.AwayName)

	stats := make(map[models.Side]*models.TeamStat, 2)
	for _, side := range []models.Side{models.Home, models.Away} {
		stat := r.fetchTeam(ctx, logger, game, side)
		if stat != nil {
			stats[side] = stat
		}

		if err := r.sleep(ctx, r.opts.Pause); err != nil {
			return err
		}
	}

	home, away := stats[models.Home], stats[models.Away]
	if home == nil || away == nil {
		r.report.GamesSkipped++
		metrics.RecordGame("skipped")
		logger.Warn().Msg("Skipping game, analytics missing for at least one team")
		return nil
	}

	prediction := scoring.Predict(*home, *away)
	r.report.GamesScored++
	metrics.RecordGame("scored")

	logger.Info().
		Float64("home_score", prediction.HomeScore).
		Float64("away_score", prediction.AwayScore).
		Msg("🏁 Prediction:")
	logger.Info().Msgf("%s → Win Probability: %.1f%%", game.HomeName, prediction.HomeWinPct)
	logger.Info().Msgf("%s → Win Probability: %.1f%%", game.AwayName, prediction.AwayWinPct)

	if len(r.lookup.Books(game.HomeName, game.AwayName)) == 0 {
		logger.Info().Msgf("No %s odds available for this matchup.", bookList(r.books))
		return nil
	}

	for _, book := range r.books {
		if _, listed := r.lookup.Books(game.HomeName, game.AwayName)[book]; !listed {
			continue
		}

		homeOdds, awayOdds, ok := r.lookup.Prices(game.HomeName, game.AwayName, book)
		if !ok {
			logger.Warn().Str("source", book).Msg("⚠️ Skipping insert because odds are missing for one side.")
			continue
		}

		cmp := scoring.Compare(prediction, homeOdds, awayOdds)
		logComparison(logger, game, book, cmp)

		bet := newBetRow(game, book, prediction, cmp)
		r.store(ctx, logger, bet, cmp)
	}

	return nil
}

func (r *runner) fetchTeam(ctx context.Context, logger zerolog.Logger, game models.Game, side models.Side) *models.TeamStat {
	teamID, teamName := game.Team(side)

	logger.Info().
		Str("team_id", teamID).
		Msgf("Fetching analytics for %s Team: %s (ID: %s)", side, teamName, teamID)

	stat, err := r.deps.Schedule.FetchTeamAnalytics(ctx, r.opts.Season, r.opts.SeasonType, teamID, teamName)
	if err != nil {
		msg := "Failed to fetch analytics."
		if errors.Is(err, client.ErrNoTeamData) {
			msg = "No team data found."
		}
		event := logger.Warn().Err(err).Str("team_id", teamID)
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) {
			event = event.Int("status", statusErr.StatusCode)
		}
		event.Msg(msg)
		metrics.RecordError("pipeline", "analytics")
		return nil
	}

	logger.Info().
		Float64("corsi_pct", stat.CorsiPct).
		Float64("fenwick_pct", stat.FenwickPct).
		Float64("shots_diff", stat.ShotsDiff).
		Float64("pdo", stat.PDO).
		Strs("defaulted", stat.Defaulted).
		Msgf("%s Team: %s", side, teamName)

	return stat
}

func (r *runner) store(ctx context.Context, logger zerolog.Logger, bet *models.BetRow, cmp scoring.Comparison) {
	_, err := r.deps.Store.Insert(ctx, bet)
	switch {
	case errors.Is(err, repository.ErrDuplicateBet):
		r.report.RowsDuplicate++
		metrics.RecordBet(bet.Source, "duplicate")
		logger.Info().Str("source", bet.Source).Msg("Already recorded, skipping.")
		return
	case err != nil:
		r.report.InsertFailures++
		metrics.RecordBet(bet.Source, "error")
		logger.Error().Err(err).Str("source", bet.Source).Msg("❌ Database insert error")
		return
	}

	r.report.RowsInserted++
	metrics.RecordBet(bet.Source, "inserted")
	metrics.RecordClassification(cmp.Home.Classification.String())
	metrics.RecordClassification(cmp.Away.Classification.String())
	logger.Info().Int64("id", bet.ID).Str("source", bet.Source).Msg("✅ Inserted into database.")

	if r.deps.Publisher == nil {
		return
	}
	if err := r.deps.Publisher.Publish(ctx, r.report.RunID, bet); err != nil {
		r.report.PublishFailures++
		metrics.RecordError("publisher", "publish")
		logger.Warn().Err(err).Int64("id", bet.ID).Msg("Failed to publish bet")
		return
	}
	r.report.RowsPublished++
}

func newBetRow(game models.Game, book string, p scoring.Prediction, cmp scoring.Comparison) *models.BetRow {
	return &models.BetRow{
		GameDate:           game.Date,
		HomeTeam:           game.HomeName,
		AwayTeam:           game.AwayName,
		Source:             book,
		HomeWinPct:         p.HomeWinPct,
		AwayWinPct:         p.AwayWinPct,
		HomeOdds:           cmp.Home.Odds,
		AwayOdds:           cmp.Away.Odds,
		HomeImpliedPct:     cmp.Home.ImpliedPct,
		AwayImpliedPct:     cmp.Away.ImpliedPct,
		HomeValue:          cmp.Home.Value,
		AwayValue:          cmp.Away.Value,
		HomeClassification: cmp.Home.Classification.String(),
		AwayClassification: cmp.Away.Classification.String(),
	}
}

func logComparison(logger zerolog.Logger, game models.Game, book string, cmp scoring.Comparison) {
	logger.Info().Str("source", book).Msgf("💰 %s Odds:", bookTitle(book))
	logger.Info().Msgf("%s: %+g → Implied Probability: %.1f%%", game.HomeName, cmp.Home.Odds, cmp.Home.ImpliedPct)
	logger.Info().Msgf("%s: %+g → Implied Probability: %.1f%%", game.AwayName, cmp.Away.Odds, cmp.Away.ImpliedPct)

	logger.Info().Msg("📈 Betting Value:")
	logger.Info().Msgf("%s: %+.1f%% %s", game.HomeName, cmp.Home.Value, valueMark(cmp.Home.Value))
	logger.Info().Msgf("%s: %+.1f%% %s", game.AwayName, cmp.Away.Value, valueMark(cmp.Away.Value))

	logger.Info().Msg("🧠 Bet Classification:")
	logger.Info().Msgf("%s: %s %s", game.HomeName, cmp.Home.Classification, cmp.Home.Classification.Emoji())
	logger.Info().Msgf("%s: %s %s", game.AwayName, cmp.Away.Classification, cmp.Away.Classification.Emoji())
}

// normalizeBooks lowercases book keys to match the lookup, keeping the first occurrence
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

func valueMark(v float64) string {
	if v > 0 {
		return "✅"
	}
	return "❌"
}

// bookTitle renders a book key for display: "fanduel" -> "Fanduel"
func bookTitle(book string) string {
	if book == "" {
		return book
	}
	return strings.ToUpper(book[:1]) + book[1:]
}

func bookList(books []string) string {
	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = bookTitle(b)
	}
	return strings.Join(titles, " or ")
}
