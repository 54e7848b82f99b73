package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamKey(t *testing.T) {
	assert.Equal(t, "bets.value.icehockey_nhl", StreamKey("icehockey_nhl"))
}

func TestEncodeBet(t *testing.T) {
	at := time.Date(2025, 10, 7, 15, 0, 0, 0, time.UTC)
	bet := &models.BetRow{
		ID:                 7,
		GameDate:           "2025-10-07",
		HomeTeam:           "Boston Bruins",
		AwayTeam:           "Chicago Blackhawks",
		Source:             "fanduel",
		HomeValue:          5,
		HomeClassification: "Strong Bet",
	}

	data, err := EncodeBet("run-1", "icehockey_nhl", bet, at)
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))

	assert.Equal(t, "run-1", msg["run_id"])
	assert.Equal(t, "icehockey_nhl", msg["sport_key"])
	assert.Equal(t, "2025-10-07T15:00:00Z", msg["published_at"])

	row, ok := msg["bet"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), row["id"])
	assert.Equal(t, "fanduel", row["source"])
	assert.Equal(t, 5.0, row["home_value"])
	assert.NotContains(t, row, "outcome")
}

func TestStreamPublisher_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	p := NewStreamPublisher(client, "icehockey_nhl", 1000)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, p.Ping(ctx))

	err := p.Publish(ctx, "run-1", &models.BetRow{GameDate: "2025-10-07"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bets.value.icehockey_nhl")
}
