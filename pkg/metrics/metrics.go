package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "volunteer_hub"

// Outcome labels for ledger operations
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics holds Prometheus metrics for the scheduling service
type Metrics struct {
	OperationCounter  *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	SlotsMoved        *prometheus.CounterVec
	DonationsTotal    *prometheus.CounterVec
	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg.
// A nil reg creates unregistered metrics, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OperationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Total number of ledger operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "operation_duration_seconds",
				Help:      "Ledger operation duration in seconds, including store round trips",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		SlotsMoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "slots_moved_total",
				Help:      "Slot increments moved between event pools and users",
			},
			[]string{"direction"}, // reserved or released
		),
		DonationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "donations_total",
				Help:      "Sum of donated amounts",
			},
			[]string{"target"}, // event or org
		),
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
	}
}

// ObserveOperation records one ledger operation. Use with defer:
//
//	defer m.ObserveOperation("reserve", time.Now(), &err)
func (m *Metrics) ObserveOperation(operation string, start time.Time, errp *error) {
	outcome := OutcomeOK
	if errp != nil && *errp != nil {
		outcome = OutcomeFailed
	}
	m.OperationCounter.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Middleware returns mux middleware recording request metrics per route template
func (m *Metrics) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			snoop := httpsnoop.CaptureMetrics(next, w, r)

			m.RequestCounter.WithLabelValues(route, r.Method, strconv.Itoa(snoop.Code)).Inc()
			m.RequestDuration.WithLabelValues(route).Observe(snoop.Duration.Seconds())
		})
	}
}
