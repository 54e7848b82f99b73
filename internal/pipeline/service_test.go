package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, oddsURL, sportradarURL string) *config.Config {
	t.Helper()
	return &config.Config{
		OddsAPIKey:            "odds-key",
		OddsAPIBaseURL:        oddsURL,
		OddsSportKey:          "icehockey_nhl",
		OddsRegions:           "us,eu",
		Bookmakers:            []string{"bet365", "fanduel"},
		SportradarAPIKey:      "sr-key",
		SportradarBaseURL:     sportradarURL,
		SportradarAccessLevel: "trial",
		SeasonYear:            2024,
		SeasonType:            "REG",
		ScheduleDate:          "2025-10-07",
		Timezone:              "America/New_York",
		HTTPTimeout:           time.Second,
		DatabaseDriver:        config.DriverSQLite,
		DatabasePath:          filepath.Join(t.TempDir(), "nhl_bets.db"),
	}
}

func TestService_RunOnceTwiceAppends(t *testing.T) {
	sr := sportradarServer(t)
	defer sr.Close()
	oddsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(e2eOdds))
	}))
	defer oddsSrv.Close()

	ctx := context.Background()
	svc, err := NewService(ctx, testConfig(t, oddsSrv.URL, sr.URL))
	require.NoError(t, err)
	defer svc.Close()

	assert.Nil(t, svc.Publisher, "redis disabled")
	assert.NoError(t, svc.Health(ctx))

	for i := 0; i < 2; i++ {
		report, err := svc.RunOnce(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, report.RowsInserted)
	}

	n, err := svc.DB.Bets.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "rows are append-only unless dedupe is enabled")
}

func TestService_DedupeSkipsSecondRun(t *testing.T) {
	sr := sportradarServer(t)
	defer sr.Close()
	oddsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(e2eOdds))
	}))
	defer oddsSrv.Close()

	cfg := testConfig(t, oddsSrv.URL, sr.URL)
	cfg.BetsDedupe = true

	ctx := context.Background()
	svc, err := NewService(ctx, cfg)
	require.NoError(t, err)
	defer svc.Close()

	first, err := svc.RunOnce(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, first.RowsInserted)

	second, err := svc.RunOnce(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, second.RowsInserted)
	assert.Equal(t, 1, second.RowsDuplicate)
}

func TestService_ScheduleFailure(t *testing.T) {
	sr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer sr.Close()
	oddsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer oddsSrv.Close()

	ctx := context.Background()
	svc, err := NewService(ctx, testConfig(t, oddsSrv.URL, sr.URL))
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.RunOnce(ctx, time.Now())
	assert.Error(t, err)
}

func TestNewService_BadDriver(t *testing.T) {
	cfg := testConfig(t, "http://odds", "http://sr")
	cfg.DatabaseDriver = "oracle"

	_, err := NewService(context.Background(), cfg)
	assert.Error(t, err)
}
