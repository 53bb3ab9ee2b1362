// Package metrics exposes Prometheus instrumentation for the resolution service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric the service records.
type Manager struct {
	namespace string
	buckets   []float64
	registry  prometheus.Registerer

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	historyFetches *prometheus.CounterVec
	sourceLatency  *prometheus.HistogramVec
	resolutions    *prometheus.CounterVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "matchres",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	m.httpDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   m.buckets,
	}, []string{"route"})

	m.historyFetches = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "history",
		Name:      "fetches_total",
		Help:      "Per-participant history fetches by driver and outcome.",
	}, []string{"driver", "outcome"})

	m.sourceLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "source",
		Name:      "call_duration_seconds",
		Help:      "Upstream provider call latency by driver and operation.",
		Buckets:   m.buckets,
	}, []string{"driver", "op"})

	m.resolutions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "resolution",
		Name:      "outcomes_total",
		Help:      "Resolution runs by terminal state.",
	}, []string{"state"})

	return m
}

func (m *Manager) RecordHTTPRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Manager) RecordHistoryFetch(driver string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.historyFetches.WithLabelValues(driver, outcome).Inc()
}

func (m *Manager) RecordSourceCall(driver, op string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sourceLatency.WithLabelValues(driver, op).Observe(elapsed.Seconds())
}

func (m *Manager) RecordResolutionOutcome(state string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(state).Inc()
}
