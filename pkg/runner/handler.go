package runner

import (
	"context"

	"github.com/aretw0/agentforge/pkg/domain"
)

// Command is what the user asked for when answering a step.
type Command string

const (
	CommandAdvance Command = "advance"
	CommandBack    Command = "back"
	CommandExit    Command = "exit"
)

// Submission is the answer to one step.
type Submission struct {
	Command Command           `json:"command"`
	Values  map[string]string `json:"values,omitempty"`
}

// Prompt is everything a handler needs to ask for one step.
type Prompt struct {
	View domain.View
	// Previous holds the values of the last rejected submission, if any.
	Previous map[string]string
	// Failure is the reason the last submission was rejected, if any.
	Failure *domain.ValidationFailure
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Ask presents a step and collects the user's answer.
	Ask(ctx context.Context, p Prompt) (Submission, error)

	// Progress reports a finished generation phase.
	Progress(ctx context.Context, p domain.Progress) error

	// Complete presents the finished configuration and returns the action the
	// user picked. An empty action means none.
	Complete(ctx context.Context, cfg domain.AgentConfiguration) (domain.CompletionAction, error)

	// SystemOutput presents a meta-message to the user (e.g. status updates).
	// This is distinct from step content.
	SystemOutput(ctx context.Context, msg string) error
}
