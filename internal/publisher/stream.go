package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"

	"github.com/redis/go-redis/v9"
)

// BetMessage is the payload published for every persisted bet row
type BetMessage struct {
	RunID       string         `json:"run_id"`
	SportKey    string         `json:"sport_key"`
	PublishedAt time.Time      `json:"published_at"`
	Bet         *models.BetRow `json:"bet"`
}

// StreamKey returns the stream a sport's bet rows are published to.
// Stream key format: bets.value.{sport_key}
func StreamKey(sportKey string) string {
	return fmt.Sprintf("bets.value.%s", sportKey)
}

// StreamPublisher publishes persisted bet rows to Redis Streams
type StreamPublisher struct {
	redis    *redis.Client
	sportKey string
	maxLen   int64
}

// NewStreamPublisher creates a new stream publisher. maxLen caps the stream
// length approximately; zero leaves it unbounded.
func NewStreamPublisher(redisClient *redis.Client, sportKey string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{
		redis:    redisClient,
		sportKey: sportKey,
		maxLen:   maxLen,
	}
}

// Publish adds one bet row to the sport's stream
func (p *StreamPublisher) Publish(ctx context.Context, runID string, bet *models.BetRow) error {
	streamKey := StreamKey(p.sportKey)

	data, err := EncodeBet(runID, p.sportKey, bet, time.Now().UTC())
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{
			"run_id": runID,
			"data":   string(data),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if _, err := p.redis.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("error publishing to stream %s: %w", streamKey, err)
	}

	return nil
}

// Ping checks that Redis is reachable
func (p *StreamPublisher) Ping(ctx context.Context) error {
	if err := p.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (p *StreamPublisher) Close() error {
	return p.redis.Close()
}

// EncodeBet marshals the stream payload for a bet row
func EncodeBet(runID, sportKey string, bet *models.BetRow, at time.Time) ([]byte, error) {
	data, err := json.Marshal(BetMessage{
		RunID:       runID,
		SportKey:    sportKey,
		PublishedAt: at,
		Bet:         bet,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling bet row: %w", err)
	}
	return data, nil
}
