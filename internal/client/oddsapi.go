package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// OddsOptions represents the query of the odds endpoint
type OddsOptions struct {
	Regions    string
	Markets    string
	OddsFormat string
	DateFormat string
}

// DefaultOddsOptions asks for American-format head-to-head prices
var DefaultOddsOptions = OddsOptions{
	Regions:    "us,eu",
	Markets:    "h2h",
	OddsFormat: "american",
	DateFormat: "iso",
}

// OddsClient is the client of The Odds API v4
type OddsClient struct {
	baseURL  string
	apiKey   string
	sportKey string
	http     httpGetter
}

// NewOddsClient creates a new odds API client
func NewOddsClient(baseURL, apiKey, sportKey string, timeout time.Duration) *OddsClient {
	return &OddsClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		sportKey: sportKey,
		http:     newHTTPGetter(timeout, map[string]string{"Accept": "application/json"}),
	}
}

// OddsURL builds the odds endpoint URL including the api key
func (c *OddsClient) OddsURL(opts OddsOptions) string {
	q := url.Values{}
	q.Set("regions", opts.Regions)
	q.Set("markets", opts.Markets)
	q.Set("oddsFormat", opts.OddsFormat)
	q.Set("dateFormat", opts.DateFormat)
	q.Set("apiKey", c.apiKey)
	return fmt.Sprintf("%s/v4/sports/%s/odds?%s", c.baseURL, c.sportKey, q.Encode())
}

// FetchOdds fetches upcoming games with bookmaker prices. The payload is kept
// loosely typed so one malformed game cannot fail the whole response.
func (c *OddsClient) FetchOdds(ctx context.Context, opts OddsOptions) ([]interface{}, error) {
	resp, err := c.http.get(ctx, "odds", c.OddsURL(opts))
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("remaining", resp.header.Get("x-requests-remaining")).
		Str("used", resp.header.Get("x-requests-used")).
		Msg("Odds API quota")

	if err := resp.statusError("odds"); err != nil {
		return nil, err
	}

	var payload interface{}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal odds: %w", err)
	}

	games, ok := payload.([]interface{})
	if !ok {
		return nil, fmt.Errorf("failed to unmarshal odds: expected array, got %T", payload)
	}

	return games, nil
}
