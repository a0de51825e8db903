package scraper

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for one watch run.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	ErrorsTotal     *prometheus.CounterVec
	BooksExtracted  prometheus.Gauge
	BooksDiscounted prometheus.Gauge
	PriceChanges    prometheus.Gauge
	DuplicateTitles prometheus.Gauge
	LastRunSuccess  prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_requests_total",
			Help: "HTTP requests issued for the wishlist page.",
		},
		[]string{"phase"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wishlist_request_duration_seconds",
			Help:    "HTTP request latency for the wishlist page.",
			Buckets: prometheus.DefBuckets,
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_errors_total",
			Help: "Run errors by type.",
		},
		[]string{"error_type"},
	)
	extracted := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wishlist_books",
		Help: "Books found on the wishlist in the last run.",
	})
	discounted := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wishlist_books_discounted",
		Help: "Books currently showing a discount.",
	})
	changes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wishlist_price_changes",
		Help: "Books whose price changed since the previous snapshot.",
	})
	duplicates := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wishlist_duplicate_titles",
		Help: "Snapshot titles matching more than one current book.",
	})
	success := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wishlist_last_run_success",
		Help: "1 if the last run completed without error.",
	})

	registry.MustRegister(requests, requestDuration, errorsTotal, extracted, discounted, changes, duplicates, success)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		ErrorsTotal:     errorsTotal,
		BooksExtracted:  extracted,
		BooksDiscounted: discounted,
		PriceChanges:    changes,
		DuplicateTitles: duplicates,
		LastRunSuccess:  success,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// ObserveRun records the outcome of a completed comparison.
func (m *Metrics) ObserveRun(books, discounted, changes, duplicates int) {
	if m == nil {
		return
	}
	m.BooksExtracted.Set(float64(books))
	m.BooksDiscounted.Set(float64(discounted))
	m.PriceChanges.Set(float64(changes))
	m.DuplicateTitles.Set(float64(duplicates))
}

// SetSuccess records whether the run finished cleanly.
func (m *Metrics) SetSuccess(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.LastRunSuccess.Set(1)
		return
	}
	m.LastRunSuccess.Set(0)
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
