package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter        EventType = "step_enter"
	EventStepLeave        EventType = "step_leave"
	EventStepRetreat      EventType = "step_retreat"
	EventValidationFailed EventType = "validation_failed"
	EventPhase            EventType = "phase"
	EventComplete         EventType = "complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// StepEvent represents entry, exit or re-entry of a step.
type StepEvent struct {
	EventBase
	StepID    string `json:"step_id"`
	StepIndex int    `json:"step_index"`
}

// ValidationEvent reports a rejected submission.
type ValidationEvent struct {
	EventBase
	StepID string   `json:"step_id"`
	Fields []string `json:"fields"`
}

// PhaseEvent reports a finished generation phase.
type PhaseEvent struct {
	EventBase
	Progress
	Elapsed time.Duration `json:"elapsed"`
}

// CompletionEvent reports an assembled configuration.
type CompletionEvent struct {
	EventBase
	ConfigurationID string `json:"configuration_id"`
	DisplayName     string `json:"display_name"`
}

// LifecycleHooks defines callbacks for wizard observability.
type LifecycleHooks struct {
	OnStepEnter        func(context.Context, *StepEvent)
	OnStepLeave        func(context.Context, *StepEvent)
	OnStepRetreat      func(context.Context, *StepEvent)
	OnValidationFailed func(context.Context, *ValidationEvent)
	OnPhase            func(context.Context, *PhaseEvent)
	OnComplete         func(context.Context, *CompletionEvent)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:        chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave:        chain(h.OnStepLeave, other.OnStepLeave),
		OnStepRetreat:      chain(h.OnStepRetreat, other.OnStepRetreat),
		OnValidationFailed: chain(h.OnValidationFailed, other.OnValidationFailed),
		OnPhase:            chain(h.OnPhase, other.OnPhase),
		OnComplete:         chain(h.OnComplete, other.OnComplete),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
