package internal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "argos"

// Route labels for requests that never reached a handler.
const (
	routeLabelUnmatched = "unmatched"
	routeLabelRejected  = "rejected"
)

// methodLabelOther replaces client-chosen methods outside the supported set
// so the method label stays bounded.
const methodLabelOther = "other"

// Metrics holds the server's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer          prometheus.Gatherer
	requests          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	rejections        *prometheus.CounterVec
	faults            prometheus.Counter
	handshakeFailures prometheus.Counter
	connections       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// If reg is nil a private registry is used.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Total number of dispatched requests",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Time spent in the filter chain, handler and formatter",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "filter",
			Name:      "rejections_total",
			Help:      "Total number of requests rejected by a filter",
		}, []string{"filter"}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "dispatch",
			Name:      "faults_total",
			Help:      "Total number of dispatch faults answered with a generic 500",
		}),
		handshakeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "conn",
			Name:      "tls_handshake_failures_total",
			Help:      "Total number of failed TLS handshakes",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "conn",
			Name:      "active",
			Help:      "Number of connections currently being served",
		}),
	}

	reg.MustRegister(m.requests, m.duration, m.rejections, m.faults, m.handshakeFailures, m.connections)
	return m
}

// Handler returns the /metrics exposition handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if !IsValidMethod(method) {
		method = methodLabelOther
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) observeRejection(filter string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(filter).Inc()
}

func (m *Metrics) observeFault() {
	if m == nil {
		return
	}
	m.faults.Inc()
}

func (m *Metrics) observeHandshakeFailure() {
	if m == nil {
		return
	}
	m.handshakeFailures.Inc()
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) connClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}
