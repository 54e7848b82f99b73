package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/metrics"
	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrNoTeamData means the analytics document had no team totals to read
var ErrNoTeamData = errors.New("no team data")

// SportradarClient is the client of the Sportradar NHL v7 XML feeds
type SportradarClient struct {
	baseURL     string
	accessLevel string
	http        httpGetter

	// RetryDelay is the wait before the single retry after HTTP 429
	RetryDelay time.Duration
}

// NewSportradarClient creates a new Sportradar client
func NewSportradarClient(baseURL, apiKey, accessLevel string, timeout, retryDelay time.Duration) *SportradarClient {
	return &SportradarClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessLevel: accessLevel,
		RetryDelay:  retryDelay,
		http: newHTTPGetter(timeout, map[string]string{
			"accept":    "application/json",
			"x-api-key": apiKey,
		}),
	}
}

// ScheduleURL builds the daily schedule URL for a date
func (c *SportradarClient) ScheduleURL(date time.Time) string {
	return fmt.Sprintf("%s/nhl/%s/v7/en/games/%04d/%02d/%02d/schedule.xml",
		c.baseURL, c.accessLevel, date.Year(), int(date.Month()), date.Day())
}

// AnalyticsURL builds the team analytics URL for a season
func (c *SportradarClient) AnalyticsURL(season int, seasonType, teamID string) string {
	return fmt.Sprintf("%s/nhl/%s/v7/en/seasons/%d/%s/teams/%s/analytics.xml",
		c.baseURL, c.accessLevel, season, seasonType, url.PathEscape(teamID))
}

// GameDateFromURL derives YYYY-MM-DD from the .../{year}/{month}/{day}/schedule.xml path
func GameDateFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse schedule url: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 {
		return "", fmt.Errorf("schedule url %q has no date segments", rawURL)
	}
	year, month, day := parts[len(parts)-4], parts[len(parts)-3], parts[len(parts)-2]
	for _, p := range []string{year, month, day} {
		if _, err := strconv.Atoi(p); err != nil {
			return "", fmt.Errorf("schedule url %q has a non-numeric date segment %q", rawURL, p)
		}
	}

	return fmt.Sprintf("%s-%s-%s", year, month, day), nil
}

// FetchSchedule fetches the games scheduled on date. The game date of every
// returned game comes from the request path, not the payload.
func (c *SportradarClient) FetchSchedule(ctx context.Context, date time.Time) ([]models.Game, error) {
	scheduleURL := c.ScheduleURL(date)
	gameDate, err := GameDateFromURL(scheduleURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.get(ctx, "schedule", scheduleURL)
	if err != nil {
		return nil, err
	}
	if err := resp.statusError("schedule"); err != nil {
		return nil, err
	}

	games, err := ParseSchedule(resp.body, gameDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}

	return games, nil
}

// ParseSchedule reads every game element that has both home and away children
func ParseSchedule(data []byte, gameDate string) ([]models.Game, error) {
	root, err := parseXML(data)
	if err != nil {
		return nil, err
	}

	var games []models.Game
	for _, g := range root.findAll("game") {
		home := g.child("home")
		away := g.child("away")
		if home == nil || away == nil {
			continue
		}

		homeID, _ := home.attr("id")
		homeName, _ := home.attr("name")
		awayID, _ := away.attr("id")
		awayName, _ := away.attr("name")

		games = append(games, models.Game{
			HomeID:   homeID,
			HomeName: homeName,
			AwayID:   awayID,
			AwayName: awayName,
			Date:     gameDate,
		})
	}

	return games, nil
}

// FetchTeamAnalytics fetches a team's season analytics. On HTTP 429 it waits
// RetryDelay and tries exactly once more; any other non-200 fails immediately.
func (c *SportradarClient) FetchTeamAnalytics(ctx context.Context, season int, seasonType, teamID, teamName string) (*models.TeamStat, error) {
	analyticsURL := c.AnalyticsURL(season, seasonType, teamID)

	resp, err := c.http.get(ctx, "analytics", analyticsURL)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusTooManyRequests {
		log.Warn().
			Str("team_id", teamID).
			Dur("delay", c.RetryDelay).
			Msg("Rate limit hit. Retrying after delay...")
		metrics.RecordRateLimitRetry()

		if err := SleepContext(ctx, c.RetryDelay); err != nil {
			return nil, err
		}
		resp, err = c.http.get(ctx, "analytics", analyticsURL)
		if err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("team_id", teamID).
		Int("status", resp.status).
		Msgf("Status code: %d", resp.status)

	if err := resp.statusError("analytics"); err != nil {
		return nil, err
	}

	return ParseTeamAnalytics(resp.body, teamName)
}

// ParseTeamAnalytics reads team > team_records > overall > statistics > total.
// Missing or unparsable numeric attributes are scored as 0.0 and listed in Defaulted.
func ParseTeamAnalytics(data []byte, teamName string) (*models.TeamStat, error) {
	root, err := parseXML(data)
	if err != nil {
		return nil, err
	}

	node := root.find("team")
	for _, name := range []string{"team_records", "overall", "statistics", "total"} {
		if node == nil {
			break
		}
		node = node.find(name)
	}
	if node == nil {
		return nil, ErrNoTeamData
	}

	stat := &models.TeamStat{Name: teamName}
	fields := []struct {
		attr string
		dst  *float64
	}{
		{models.AttrCorsiPct, &stat.CorsiPct},
		{models.AttrFenwickPct, &stat.FenwickPct},
		{models.AttrShotsDiff, &stat.ShotsDiff},
		{models.AttrPDO, &stat.PDO},
	}
	for _, f := range fields {
		raw, ok := node.attr(f.attr)
		if !ok {
			stat.Defaulted = append(stat.Defaulted, f.attr)
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			stat.Defaulted = append(stat.Defaulted, f.attr)
			continue
		}
		*f.dst = v
	}

	return stat, nil
}
