package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"eventverteiler/internal/model"
)

// Metrics counts publish and verification outcomes per target and tracks
// adapter call latency.
type Metrics struct {
	PublishAttempts *prometheus.CounterVec
	Verifications   *prometheus.CounterVec
	AdapterDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PublishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verteiler_publish_attempts_total",
			Help: "Publish attempts by platform, method and final status.",
		}, []string{"platform", "method", "status"}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verteiler_verifications_total",
			Help: "Verification runs by platform, method and outcome.",
		}, []string{"platform", "method", "outcome"}),
		AdapterDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verteiler_adapter_call_duration_seconds",
			Help:    "Duration of adapter calls against external platforms.",
			Buckets: prometheus.DefBuckets,
		}, []string{"platform", "method", "operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.PublishAttempts, m.Verifications, m.AdapterDuration)
	}
	return m
}

func (m *Metrics) ObservePublish(p model.Platform, method model.Method, status model.PublicationStatus) {
	if m == nil {
		return
	}
	m.PublishAttempts.WithLabelValues(string(p), string(method), string(status)).Inc()
}

func (m *Metrics) ObserveVerification(p model.Platform, method model.Method, outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(string(p), string(method), outcome).Inc()
}

func (m *Metrics) ObserveAdapterCall(p model.Platform, method model.Method, operation string, seconds float64) {
	if m == nil {
		return
	}
	m.AdapterDuration.WithLabelValues(string(p), string(method), operation).Observe(seconds)
}
