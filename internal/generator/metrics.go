package generator

import "github.com/prometheus/client_golang/prometheus"

// Rejection reason labels.
const (
	reasonService    = "service"
	reasonStructural = "structural"
	reasonDiversity  = "diversity"
	reasonContextual = "contextual"
	reasonPrompt     = "prompt"
)

// Metrics counts pipeline outcomes. Pass a fresh registry in tests.
type Metrics struct {
	attempts   prometheus.Counter
	accepted   prometheus.Counter
	fallbacks  prometheus.Counter
	rejections *prometheus.CounterVec
}

// NewMetrics creates the pipeline counters and registers them on reg.
// A nil reg leaves the counters unregistered, which is useful in tests
// that do not scrape.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "themeforge_generation_attempts_total",
			Help: "Total engine generation attempts, including retries.",
		}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "themeforge_themes_accepted_total",
			Help: "Total themes that passed all validation and were accepted.",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "themeforge_fallback_themes_total",
			Help: "Total generations that exhausted retries and returned the fallback theme.",
		}),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "themeforge_candidate_rejections_total",
				Help: "Total candidate rejections by reason.",
			},
			[]string{"reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.accepted, m.fallbacks, m.rejections)
	}
	return m
}

func (m *Metrics) reject(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}
