package domain

import "slices"

// ExecutionStatus defines the current mode of the wizard.
type ExecutionStatus string

const (
	StatusActive    ExecutionStatus = "active"    // Collecting answers
	StatusComplete  ExecutionStatus = "complete"  // Last step accepted, ready for generation
	StatusGenerated ExecutionStatus = "generated" // AgentConfiguration assembled
)

// State represents the current snapshot of a wizard session.
type State struct {
	SessionID string `json:"session_id"`

	// CurrentStep is the index of the active step.
	// It equals the step count once the last step has been accepted.
	CurrentStep int `json:"current_step"`

	// Status indicates whether the wizard is collecting, complete or generated.
	Status ExecutionStatus `json:"status"`

	// Draft holds the answers of steps 0..CurrentStep-1.
	Draft Draft `json:"draft"`

	// History tracks the step ids entered, including re-entries after going back.
	History []string `json:"history,omitempty"`

	// Configuration is set once generation has finished.
	Configuration *AgentConfiguration `json:"configuration,omitempty"`
}

// NewState creates a clean state positioned at the first step.
func NewState(sessionID string, firstStepID string) *State {
	s := &State{
		SessionID: sessionID,
		Status:    StatusActive,
	}
	if firstStepID != "" {
		s.History = []string{firstStepID}
	}
	return s
}

// Clone returns a copy safe for mutation. Draft is immutable and shared.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.History = slices.Clone(s.History)
	if s.Configuration != nil {
		cfg := s.Configuration.Copy()
		next.Configuration = &cfg
	}
	return &next
}
