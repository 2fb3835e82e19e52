// Package metrics provides Prometheus metrics for the shot feed service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingest results
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Manager owns the service's collectors. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	shotsRecorded       *prometheus.CounterVec
	shotsBroadcast      prometheus.Counter
	jumpsDetected       prometheus.Counter
	wsClients           prometheus.Gauge
	ingestMessages      *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a Manager on a fresh registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swishfeed",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)

	m.shotsRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "shots_recorded_total",
		Help:      "Shots persisted, by classification and outcome",
	}, []string{"classification", "scored"})

	m.shotsBroadcast = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "shots_broadcast_total",
		Help:      "Shot events pushed to live clients",
	})

	m.jumpsDetected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "jumps_detected_total",
		Help:      "Completed jumps reported by the foot sensor",
	})

	m.wsClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "ws_clients",
		Help:      "Connected live channel clients",
	})

	m.ingestMessages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "ingest_messages_total",
		Help:      "Sensor messages received, by topic and result",
	}, []string{"topic", "result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})

	return m
}

// Registry returns the registry backing this Manager.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordShot counts a persisted shot.
func (m *Manager) RecordShot(classification string, scored bool) {
	if m == nil {
		return
	}
	m.shotsRecorded.WithLabelValues(classification, strconv.FormatBool(scored)).Inc()
}

// RecordBroadcast counts a shot event sent to live clients.
func (m *Manager) RecordBroadcast() {
	if m == nil {
		return
	}
	m.shotsBroadcast.Inc()
}

// RecordJump counts a completed jump.
func (m *Manager) RecordJump() {
	if m == nil {
		return
	}
	m.jumpsDetected.Inc()
}

// SetClients sets the connected client gauge.
func (m *Manager) SetClients(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}

// RecordIngest counts one sensor message.
func (m *Manager) RecordIngest(topic, result string) {
	if m == nil {
		return
	}
	m.ingestMessages.WithLabelValues(topic, result).Inc()
}

// RecordHTTPRequest records the count and latency of one request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
