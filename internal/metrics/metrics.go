package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourbill",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	invoiceRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourbill",
			Name:      "invoice_renders_total",
			Help:      "Invoice renders by rendition and outcome.",
		},
		[]string{"rendition", "outcome"},
	)

	renderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tourbill",
			Name:      "invoice_render_duration_seconds",
			Help:      "Time spent rendering an invoice.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"rendition"},
	)

	exportLockConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tourbill",
			Name:      "export_lock_conflicts_total",
			Help:      "Export requests rejected because a render was already in flight.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, invoiceRenders, renderDuration, exportLockConflicts)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncRender records a finished render attempt.
func IncRender(rendition, outcome string) {
	invoiceRenders.WithLabelValues(rendition, outcome).Inc()
}

// ObserveRenderDuration records how long a render took.
func ObserveRenderDuration(rendition string, seconds float64) {
	renderDuration.WithLabelValues(rendition).Observe(seconds)
}

// IncLockConflict counts a rejected concurrent export.
func IncLockConflict() {
	exportLockConflicts.Inc()
}
