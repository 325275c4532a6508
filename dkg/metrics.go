package dkg

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts verification and session outcomes. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	shares    *prometheus.CounterVec
	sessions  *prometheus.CounterVec
	qualified prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		shares: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dkg",
			Name:      "shares_total",
			Help:      "Incoming shares by verification result.",
		}, []string{"result"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dkg",
			Name:      "sessions_total",
			Help:      "Sessions by terminal state.",
		}, []string{"outcome"}),
		qualified: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dkg",
			Name:      "qualified_parties",
			Help:      "Qualified parties, self included, per finalized session.",
			Buckets:   prometheus.LinearBuckets(2, 2, 10),
		}),
	}
	reg.MustRegister(m.shares, m.sessions, m.qualified)
	return m
}

func (m *Metrics) share(accepted bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	m.shares.WithLabelValues(result).Inc()
}

func (m *Metrics) session(outcome string, qualified int) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(outcome).Inc()
	if outcome == outcomeFinalized {
		m.qualified.Observe(float64(qualified))
	}
}

const (
	outcomeFinalized    = "finalized"
	outcomeInsufficient = "insufficient_quorum"
	outcomeTimeout      = "timeout"
)
