package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

// Call outcomes
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	callsTotal    *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	requestsTotal *prometheus.CounterVec
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_studio_llm_calls_total",
			Help: "Total number of provider calls made through the client.",
		}, []string{"provider", "operation", "status"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "content_studio_llm_call_duration_seconds",
			Help:    "Provider call latency in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"provider", "operation"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_studio_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "code"}),
	}
	r.MustRegister(m.callsTotal, m.callDuration, m.requestsTotal)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCall implements llm.Observer
func (m *Metrics) ObserveCall(provider llm.Provider, operation string, success bool, duration time.Duration) {
	status := StatusFailure
	if success {
		status = StatusSuccess
	}
	m.callsTotal.WithLabelValues(string(provider), operation, status).Inc()
	m.callDuration.WithLabelValues(string(provider), operation).Observe(duration.Seconds())
}

func (m *Metrics) ObserveRequest(method, route string, code int) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}
