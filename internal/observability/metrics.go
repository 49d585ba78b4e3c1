package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/conventus"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK         = "ok"
	OutcomeIncomplete = "incomplete"
	OutcomeError      = "error"
)

var (
	registerOnce sync.Once

	composeResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conventus",
			Subsystem: "compose",
			Name:      "results_total",
			Help:      "Compose attempts by composite and outcome.",
		},
		[]string{"composite", "outcome"},
	)
	composeParts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conventus",
			Subsystem: "compose",
			Name:      "parts_total",
			Help:      "Parts consumed by successful compositions.",
		},
		[]string{"composite"},
	)
	decomposeResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conventus",
			Subsystem: "decompose",
			Name:      "results_total",
			Help:      "Decompose calls by part type and outcome.",
		},
		[]string{"part", "outcome"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conventus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "conventus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(composeResults, composeParts, decomposeResults, httpRequests, httpDuration)
	})
}

// Outcome classifies a composer or decomposer result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case conventus.IsIncomplete(err):
		return OutcomeIncomplete
	default:
		return OutcomeError
	}
}

func RecordCompose(composite string, err error, consumed int) {
	RegisterMetrics()
	outcome := Outcome(err)
	composeResults.WithLabelValues(composite, outcome).Inc()
	if outcome == OutcomeOK && consumed > 0 {
		composeParts.WithLabelValues(composite).Add(float64(consumed))
	}
}

func RecordDecompose(part string, err error) {
	RegisterMetrics()
	decomposeResults.WithLabelValues(part, Outcome(err)).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
