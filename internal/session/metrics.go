package session

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records session outcomes.
type Metrics struct {
	sessions *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the session collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_sessions_total",
				Help: "Upload sessions by kind and terminal outcome.",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intake_session_duration_seconds",
				Help:    "Time from validation to terminal state.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.sessions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(kind string, state State, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "succeeded"
	if state == StateFailed {
		outcome = "failed"
	}
	m.sessions.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind, outcome).Observe(elapsed.Seconds())
}
