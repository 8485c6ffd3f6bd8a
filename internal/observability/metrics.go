// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Card generation metrics
	CardsGenerated   prometheus.Counter
	CardFailures     *prometheus.CounterVec
	RateLimited      prometheus.Counter
	RenderDuration   prometheus.Histogram
	PipelineDuration prometheus.Histogram

	// Source fetch metrics
	FetchErrors   *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	// Holder snapshot metrics
	SnapshotHolders   prometheus.Gauge
	SnapshotRefreshes prometheus.Counter
	WatcherUpdates    prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_flex_card"
	}

	return &Metrics{
		// Card generation metrics
		CardsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cards",
			Name:      "generated_total",
			Help:      "Total number of flex cards generated",
		}),
		CardFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cards",
			Name:      "failures_total",
			Help:      "Total number of failed card requests by reason",
		}, []string{"reason"}),
		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cards",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the per-wallet cooldown",
		}),
		RenderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cards",
			Name:      "render_duration_seconds",
			Help:      "Time spent drawing and encoding a card",
			Buckets:   prometheus.DefBuckets,
		}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cards",
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end card request duration including data fetches",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		// Source fetch metrics
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "errors_total",
			Help:      "Total number of data source fetch errors by source",
		}, []string{"source"}),
		FetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Data source fetch latency by source",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		// Holder snapshot metrics
		SnapshotHolders: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "holders",
			Help:      "Current number of entries in the holder snapshot",
		}),
		SnapshotRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "refreshes_total",
			Help:      "Total number of holder snapshot refreshes",
		}),
		WatcherUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "watcher_updates_total",
			Help:      "Total number of live balance updates applied from the websocket watcher",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCardGenerated increments the generated cards counter.
func RecordCardGenerated() {
	DefaultMetrics.CardsGenerated.Inc()
}

// RecordCardFailure records a failed card request by reason.
func RecordCardFailure(reason string) {
	DefaultMetrics.CardFailures.WithLabelValues(reason).Inc()
}

// RecordRateLimited increments the cooldown rejection counter.
func RecordRateLimited() {
	DefaultMetrics.RateLimited.Inc()
}

// RecordRenderDuration records the time spent rendering one card.
func RecordRenderDuration(seconds float64) {
	DefaultMetrics.RenderDuration.Observe(seconds)
}

// RecordPipelineDuration records the end-to-end card request duration.
func RecordPipelineDuration(seconds float64) {
	DefaultMetrics.PipelineDuration.Observe(seconds)
}

// RecordFetch records one data source fetch.
func RecordFetch(source string, seconds float64, err error) {
	DefaultMetrics.FetchDuration.WithLabelValues(source).Observe(seconds)
	if err != nil {
		DefaultMetrics.FetchErrors.WithLabelValues(source).Inc()
	}
}

// UpdateSnapshotSize updates the holder snapshot size gauge.
func UpdateSnapshotSize(holders int) {
	DefaultMetrics.SnapshotHolders.Set(float64(holders))
}

// RecordSnapshotRefresh increments the snapshot refresh counter.
func RecordSnapshotRefresh() {
	DefaultMetrics.SnapshotRefreshes.Inc()
}

// RecordWatcherUpdate increments the live watcher update counter.
func RecordWatcherUpdate() {
	DefaultMetrics.WatcherUpdates.Inc()
}
