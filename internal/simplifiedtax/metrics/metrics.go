package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for simplified-tax evaluations.
type Metrics struct {
	// Evaluation outcomes by route and eligibility
	Outcomes *prometheus.CounterVec

	// Ineligibility reasons by reason code
	Reasons *prometheus.CounterVec

	EvaluateLatency prometheus.Histogram

	// Profiles rejected at the validation boundary
	ValidationFailures prometheus.Counter

	// Failed external amount lookups by kind
	LookupFailures *prometheus.CounterVec

	BatchSize prometheus.Histogram
}

// New registers all evaluation metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers all evaluation metrics on reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "simtax_evaluation_outcomes_total",
			Help: "Total evaluations by route and eligibility",
		}, []string{"route", "eligible"}),

		Reasons: f.NewCounterVec(prometheus.CounterOpts{
			Name: "simtax_ineligibility_reasons_total",
			Help: "Total ineligible evaluations by reason code",
		}, []string{"reason_code"}),

		EvaluateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "simtax_evaluate_duration_seconds",
			Help:    "Duration of a single evaluation including amount lookups",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		ValidationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "simtax_validation_failures_total",
			Help: "Total profiles rejected by validation",
		}),

		LookupFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "simtax_amount_lookup_failures_total",
			Help: "Total failed external amount lookups by kind",
		}, []string{"kind"}), // kind: "fixed_amount", "land_tax_base"

		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "simtax_batch_size",
			Help:    "Number of profiles per batch evaluation",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
	}
}

// IncrementOutcome records an evaluation outcome. route is "none" when not eligible.
func (m *Metrics) IncrementOutcome(route string, eligible bool) {
	if m != nil {
		label := "false"
		if eligible {
			label = "true"
		}
		if route == "" {
			route = "none"
		}
		m.Outcomes.WithLabelValues(route, label).Inc()
	}
}

// IncrementReason records why a profile was not eligible.
func (m *Metrics) IncrementReason(code string) {
	if m != nil {
		m.Reasons.WithLabelValues(code).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementValidationFailure() {
	if m != nil {
		m.ValidationFailures.Inc()
	}
}

func (m *Metrics) IncrementLookupFailure(kind string) {
	if m != nil {
		m.LookupFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}
