/*
Package metrics exposes Prometheus counters for the SkillSwap client.

Every component takes a *Metrics and treats nil as "metrics disabled", so tests
can pass nil or a fresh registry-backed instance.
*/
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skillswap"

// Outcome labels for backend calls.
const (
	OutcomeOK          = "ok"
	OutcomeNetwork     = "network_error"
	OutcomeStatus      = "bad_status"
	OutcomeDecode      = "bad_body"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds the registry and every collector the client reports.
type Metrics struct {
	registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	chatFrames      *prometheus.CounterVec
	signIns         *prometheus.CounterVec
}

// New creates a Metrics instance on its own registry, including Go runtime collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	auto := promauto.With(registry)

	return &Metrics{
		registry: registry,
		backendRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Backend calls made by view fetchers, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		backendLatency: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Backend call latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		chatFrames: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "frames_total",
			Help:      "Realtime chat frames by direction and result.",
		}, []string{"direction", "result"}),
		signIns: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "sign_ins_total",
			Help:      "Sign-in attempts by method and result.",
		}, []string{"method", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveBackend records one backend call.
func (m *Metrics) ObserveBackend(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.backendLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ChatFrame records one inbound or outbound chat frame.
func (m *Metrics) ChatFrame(direction, result string) {
	if m == nil {
		return
	}
	m.chatFrames.WithLabelValues(direction, result).Inc()
}

// SignIn records one sign-in attempt.
func (m *Metrics) SignIn(method string, ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.signIns.WithLabelValues(method, result).Inc()
}
