// Package csrfprom exports csrf.Observer events as Prometheus metrics.
package csrfprom

import (
	"github.com/JeanGrijp/csrfguard/csrf"
	"github.com/prometheus/client_golang/prometheus"
)

var _ csrf.Observer = (*Observer)(nil)

// Observer exports validation and issuance metrics to Prometheus.
type Observer struct {
	validations *prometheus.CounterVec
	generated   *prometheus.CounterVec
	tokenAge    prometheus.Histogram
}

// NewObserver registers the CSRF metrics on reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csrfguard_validations_total",
			Help: "CSRF validations by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csrfguard_tokens_generated_total",
			Help: "CSRF tokens issued by strategy.",
		}, []string{"strategy"}),
		tokenAge: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "csrfguard_token_age_seconds",
			Help:    "Age of tokens presented on successful validations.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}),
	}
	reg.MustRegister(o.validations, o.generated, o.tokenAge)
	return o
}

func (o *Observer) Validation(strategy, outcome string, ageSeconds float64) {
	o.validations.WithLabelValues(strategy, outcome).Inc()
	if outcome == csrf.OutcomeValid && ageSeconds > 0 {
		o.tokenAge.Observe(ageSeconds)
	}
}

func (o *Observer) Generated(strategy string) {
	o.generated.WithLabelValues(strategy).Inc()
}

// ValidationsCounter returns the validations counter for one label pair.
func (o *Observer) ValidationsCounter(strategy, outcome string) prometheus.Counter {
	return o.validations.WithLabelValues(strategy, outcome)
}

// GeneratedCounter returns the issuance counter for strategy.
func (o *Observer) GeneratedCounter(strategy string) prometheus.Counter {
	return o.generated.WithLabelValues(strategy)
}
