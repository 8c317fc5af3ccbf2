package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Action outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	actions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiffy",
			Subsystem: "rewards",
			Name:      "actions_total",
			Help:      "Dispatched actions by outcome.",
		},
		[]string{"action", "outcome"},
	)

	shareReports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiffy",
			Subsystem: "rewards",
			Name:      "share_reports_total",
			Help:      "Share status reports received.",
		},
		[]string{"status"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiffy",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tiffy",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route"},
	)

	persists = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiffy",
			Subsystem: "ledger",
			Name:      "persists_total",
			Help:      "Snapshot flushes by result.",
		},
		[]string{"result"},
	)

	persistDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tiffy",
			Subsystem: "ledger",
			Name:      "persist_duration_seconds",
			Help:      "Duration of snapshot flushes.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	ledgerRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tiffy",
			Subsystem: "ledger",
			Name:      "records",
			Help:      "Records held in the ledger at the last flush.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		actions,
		shareReports,
		httpRequests,
		httpDuration,
		persists,
		persistDuration,
		ledgerRecords,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordAction(action, outcome string) {
	actions.WithLabelValues(action, outcome).Inc()
}

func RecordShareReport(status string) {
	shareReports.WithLabelValues(status).Inc()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordPersist(err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	persists.WithLabelValues(result).Inc()
	persistDuration.Observe(duration.Seconds())
}

// SetLedgerSize publishes the current record counts.
func SetLedgerSize(users, wallets, shares int) {
	ledgerRecords.WithLabelValues("users").Set(float64(users))
	ledgerRecords.WithLabelValues("wallets").Set(float64(wallets))
	ledgerRecords.WithLabelValues("shares").Set(float64(shares))
}
