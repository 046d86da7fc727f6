package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codex-k8s/telegram-navigator/internal/callmess"
)

// Metrics groups the navigator collectors.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	fallbacks   prometheus.Counter
	transitions *prometheus.CounterVec
}

// New registers collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navigator_resolutions_total",
			Help: "Resolved statuses by outcome.",
		}, []string{"outcome"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "navigator_language_fallbacks_total",
			Help: "Resolutions served in the default language because the requested one was missing.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navigator_transitions_total",
			Help: "Pressed controls by callback identifier.",
		}, []string{"callback"}),
	}
	m.registry.MustRegister(m.resolutions, m.fallbacks, m.transitions)
	return m
}

// ObserveResult records one resolution.
func (m *Metrics) ObserveResult(res callmess.Result) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(res.Outcome.String()).Inc()
	if res.FellBack {
		m.fallbacks.Inc()
	}
}

// ObserveTransition records a pressed control.
func (m *Metrics) ObserveTransition(callback string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(callback).Inc()
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
