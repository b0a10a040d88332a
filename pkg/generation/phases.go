package generation

import (
	"time"

	"github.com/aretw0/agentforge/pkg/domain"
)

// DefaultPhaseDuration is the delay of each built-in phase.
const DefaultPhaseDuration = 800 * time.Millisecond

var defaultLabels = []string{
	"Analyzing your requirements",
	"Connecting data source",
	"Configuring output channel",
	"Securing credentials",
	"Building agent logic",
	"Running checks",
	"Finalizing your agent",
}

// DefaultPhases returns the seven built-in phases, each lasting d.
func DefaultPhases(d time.Duration) []domain.Phase {
	return EqualPhases(d, defaultLabels...)
}

// EqualPhases builds one phase per label, all with the same duration.
func EqualPhases(d time.Duration, labels ...string) []domain.Phase {
	phases := make([]domain.Phase, len(labels))
	for i, label := range labels {
		phases[i] = domain.Phase{Label: label, Duration: d}
	}
	return phases
}
