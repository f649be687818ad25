package chat

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	outcomes        *prometheus.CounterVec
	shortcuts       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_backend_attempts_total",
				Help: "Total number of generation attempts per backend and result.",
			},
			[]string{"backend", "result"},
		),
		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_backend_attempt_duration_seconds",
				Help:    "Generation attempt duration in seconds.",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
			},
			[]string{"backend"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_outcomes_total",
				Help: "Total number of chat requests by outcome.",
			},
			[]string{"outcome"},
		),
		shortcuts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_shortcuts_total",
				Help: "Total number of questions answered by a shortcut, by class.",
			},
			[]string{"class"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.attemptDuration, m.outcomes, m.shortcuts)
	}
	return m
}

func (m *Metrics) observeAttempt(rec AttemptRecord) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(rec.Backend, rec.Result).Inc()
	m.attemptDuration.WithLabelValues(rec.Backend).Observe(rec.Duration.Seconds())
}

func (m *Metrics) observeOutcome(o Outcome) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(o.Label()).Inc()
	if o.Shortcut != "" {
		m.shortcuts.WithLabelValues(o.Shortcut).Inc()
	}
}
