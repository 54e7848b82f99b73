package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Prometheus metrics for the bets pipeline

const jobName = "nhl_bets"

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_bets_api_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nhl_bets_api_call_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	RateLimitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nhl_bets_rate_limit_retries_total",
			Help: "Analytics requests retried after HTTP 429",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_bets_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nhl_bets_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)

	SchemaColumnsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nhl_bets_schema_columns_added_total",
			Help: "Columns added to the bets table by the schema manager",
		},
	)

	// Pipeline metrics
	GamesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_bets_games_total",
			Help: "Games seen on the slate by result",
		},
		[]string{"result"},
	)

	BetsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_bets_rows_total",
			Help: "Bet rows by bookmaker and insert status",
		},
		[]string{"source", "status"},
	)

	BetClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_bets_classifications_total",
			Help: "Per-side bet classifications",
		},
		[]string{"classification"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nhl_bets_run_duration_seconds",
			Help:    "Duration of a full pipeline run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_bets_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nhl_bets_last_successful_run_timestamp",
			Help: "Timestamp of the last successful pipeline run",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nhl_bets_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nhl_bets_system_uptime_seconds",
			Help: "Worker uptime in seconds",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordRateLimitRetry records a 429 retry
func RecordRateLimitRetry() {
	RateLimitRetries.Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordColumnsAdded records additive schema changes
func RecordColumnsAdded(n int) {
	SchemaColumnsAdded.Add(float64(n))
}

// RecordGame records how a scheduled game was handled ("scored", "skipped")
func RecordGame(result string) {
	GamesTotal.WithLabelValues(result).Inc()
}

// RecordBet records a bet row insert attempt
func RecordBet(source, status string) {
	BetsRecorded.WithLabelValues(source, status).Inc()
}

// RecordClassification records one side's classification label
func RecordClassification(label string) {
	BetClassifications.WithLabelValues(label).Inc()
}

// RecordRun records a pipeline run
func RecordRun(status string, duration float64) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// Push sends the default registry to a Prometheus Pushgateway.
// Used by the run-once binary, which exits before any scrape could happen.
func Push(url string) error {
	return push.New(url, jobName).
		Gatherer(prometheus.DefaultGatherer).
		Push()
}
