package observability

import (
	"context"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the wizard collectors.
type Metrics struct {
	StepVisits         *prometheus.CounterVec
	StepRetreats       *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	GenerationSeconds  prometheus.Histogram
	Configurations     prometheus.Counter
}

// NewMetrics creates the collectors. They are not registered yet.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "agentforge"
	}
	return &Metrics{
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_visits_total",
				Help:      "Total number of times a wizard step was entered.",
			},
			[]string{"step_id"},
		),
		StepRetreats: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_retreats_total",
				Help:      "Total number of times a user went back to a step.",
			},
			[]string{"step_id"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Rejected submissions per step.",
			},
			[]string{"step_id"},
		),
		GenerationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time from the first generation phase to the finished configuration.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30},
			},
		),
		Configurations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "configurations_total",
				Help:      "Total number of assembled agent configurations.",
			},
		),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.StepVisits, m.StepRetreats, m.ValidationFailures, m.GenerationSeconds, m.Configurations,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(e.StepID).Inc()
		},
		OnStepRetreat: func(_ context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(e.StepID).Inc()
			m.StepRetreats.WithLabelValues(e.StepID).Inc()
		},
		OnValidationFailed: func(_ context.Context, e *domain.ValidationEvent) {
			m.ValidationFailures.WithLabelValues(e.StepID).Inc()
		},
		OnPhase: func(_ context.Context, e *domain.PhaseEvent) {
			if e.Completed == e.Total {
				m.GenerationSeconds.Observe(e.Elapsed.Seconds())
			}
		},
		OnComplete: func(_ context.Context, _ *domain.CompletionEvent) {
			m.Configurations.Inc()
		},
	}
}
