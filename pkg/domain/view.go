package domain

// View is what the render collaborator receives for the current step.
type View struct {
	SessionID string          `json:"session_id"`
	Status    ExecutionStatus `json:"status"`
	StepID    string          `json:"step_id,omitempty"`
	StepIndex int             `json:"step_index"`
	StepCount int             `json:"step_count"`
	Role      StepRole        `json:"role,omitempty"`
	Title     string          `json:"title,omitempty"`
	Prompt    string          `json:"prompt,omitempty"`
	Fields    []Field         `json:"fields"`
	Draft     Draft           `json:"draft"`

	// First is true on step 0, where going back exits the flow.
	First bool `json:"first"`
	// Terminal is true once the last step has been accepted.
	Terminal bool `json:"terminal"`
}
