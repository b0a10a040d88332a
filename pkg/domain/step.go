package domain

import "slices"

// StepRole describes what a step collects, for renderers that style steps differently.
type StepRole string

const (
	// RoleInput selects where the agent reads data from.
	RoleInput StepRole = "input"
	// RoleOutput selects where the agent delivers its results.
	RoleOutput StepRole = "output"
	// RoleCredentials collects the connection details and general settings.
	// Its fields are derived from the earlier selections.
	RoleCredentials StepRole = "credentials"
)

// StepDefinition is a single position in the wizard flow.
type StepDefinition struct {
	ID     string   `json:"id" yaml:"id"`
	Order  int      `json:"order" yaml:"order"`
	Role   StepRole `json:"role" yaml:"role"`
	Title  string   `json:"title,omitempty" yaml:"title,omitempty"`
	Prompt string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`

	// ProducesKeys lists the draft keys this step writes.
	ProducesKeys []string `json:"produces" yaml:"produces"`

	// DependsOnKeys lists the draft keys this step reads.
	// They must all be produced by earlier steps.
	DependsOnKeys []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Fields is the fixed schema of the step. Ignored when Derived is set.
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Derived marks steps whose schema is computed from the draft.
	Derived bool `json:"derived,omitempty" yaml:"derived,omitempty"`
}

// Produces reports whether key is declared in ProducesKeys.
func (s StepDefinition) Produces(key string) bool {
	return slices.Contains(s.ProducesKeys, key)
}

// Clone returns a deep copy so registry internals cannot be mutated through it.
func (s StepDefinition) Clone() StepDefinition {
	out := s
	out.ProducesKeys = slices.Clone(s.ProducesKeys)
	out.DependsOnKeys = slices.Clone(s.DependsOnKeys)
	if s.Fields != nil {
		out.Fields = make([]Field, len(s.Fields))
		for i, f := range s.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	return out
}
