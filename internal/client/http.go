package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/metrics"

	"github.com/rs/zerolog/log"
)

const userAgent = "nhl-bets-automation/1.0"

var (
	// ErrRateLimited is returned when an upstream still answers 429 after the retry
	ErrRateLimited = errors.New("rate limited")

	// ErrUnexpectedStatus is matched by every StatusError
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// StatusError reports a non-200 answer from an upstream API
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, truncate(e.Body, 200))
}

// Is lets errors.Is match ErrUnexpectedStatus and, for 429, ErrRateLimited
func (e *StatusError) Is(target error) bool {
	if target == ErrUnexpectedStatus {
		return true
	}
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// response is the part of an HTTP answer the API clients care about
type response struct {
	status int
	header http.Header
	body   []byte
}

// httpGetter performs single GET requests with the shared headers and metrics.
// Retry policy belongs to the callers.
type httpGetter struct {
	httpClient *http.Client
	headers    map[string]string
}

func newHTTPGetter(timeout time.Duration, headers map[string]string) httpGetter {
	return httpGetter{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		headers: headers,
	}
}

// get performs one GET request; endpoint is a low-cardinality label for metrics and logs
func (g httpGetter) get(ctx context.Context, endpoint, rawURL string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	for k, v := range g.headers {
		req.Header.Set(k, v)
	}

	log.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Making API request")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%s request failed: %w", endpoint, redactURL(err, endpoint))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response body: %w", endpoint, err)
	}

	log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("API request complete")

	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func (r *response) statusError(endpoint string) error {
	if r.status == http.StatusOK {
		return nil
	}
	return &StatusError{Endpoint: endpoint, StatusCode: r.status, Body: string(r.body)}
}

// SleepContext waits for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// redactURL drops the request URL from transport errors; the odds API key travels in the query string
func redactURL(err error, endpoint string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = endpoint
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
