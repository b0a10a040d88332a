// Package registry holds the static, ordered list of wizard steps.
package registry

import (
	"fmt"
	"slices"

	"github.com/aretw0/agentforge/pkg/domain"
)

// InvalidFlowError describes a step list that cannot form a valid flow.
type InvalidFlowError struct {
	StepID string
	Reason string
}

func (e *InvalidFlowError) Error() string {
	return fmt.Sprintf("invalid step '%s': %s", e.StepID, e.Reason)
}

// Registry is the read-only ordered list of step definitions.
// It is safe for concurrent use because nothing mutates it after New.
type Registry struct {
	steps []domain.StepDefinition
	index map[string]int
}

// New validates the steps and builds a registry.
// Steps must be ordered 0..n-1 without gaps, have unique ids, and only
// depend on keys produced by earlier steps.
func New(steps ...domain.StepDefinition) (*Registry, error) {
	if len(steps) == 0 {
		return nil, &InvalidFlowError{Reason: "registry needs at least one step"}
	}

	r := &Registry{
		steps: make([]domain.StepDefinition, len(steps)),
		index: make(map[string]int, len(steps)),
	}

	produced := make(map[string]string) // key -> producing step id
	for i, s := range steps {
		if s.ID == "" {
			return nil, &InvalidFlowError{Reason: fmt.Sprintf("step at position %d has no id", i)}
		}
		if s.Order != i {
			return nil, &InvalidFlowError{StepID: s.ID, Reason: fmt.Sprintf("order %d does not match position %d", s.Order, i)}
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, &InvalidFlowError{StepID: s.ID, Reason: "duplicate id"}
		}
		for _, dep := range s.DependsOnKeys {
			if _, ok := produced[dep]; !ok {
				return nil, &InvalidFlowError{StepID: s.ID, Reason: fmt.Sprintf("depends on '%s' which no earlier step produces", dep)}
			}
		}
		for _, key := range s.ProducesKeys {
			if owner, ok := produced[key]; ok {
				return nil, &InvalidFlowError{StepID: s.ID, Reason: fmt.Sprintf("key '%s' already produced by '%s'", key, owner)}
			}
			produced[key] = s.ID
		}
		if !s.Derived {
			for _, f := range s.Fields {
				if !s.Produces(f.Name) {
					return nil, &InvalidFlowError{StepID: s.ID, Reason: fmt.Sprintf("field '%s' is not a produced key", f.Name)}
				}
			}
		}

		r.steps[i] = s.Clone()
		r.index[s.ID] = i
	}

	return r, nil
}

// MustNew is like New but panics on invalid steps. Intended for static tables.
func MustNew(steps ...domain.StepDefinition) *Registry {
	r, err := New(steps...)
	if err != nil {
		panic(err)
	}
	return r
}

// StepAt returns the step at index.
func (r *Registry) StepAt(index int) (domain.StepDefinition, error) {
	if index < 0 || index >= len(r.steps) {
		return domain.StepDefinition{}, fmt.Errorf("%w: %d (step count %d)", domain.ErrOutOfRange, index, len(r.steps))
	}
	return r.steps[index].Clone(), nil
}

// StepCount returns the number of steps.
func (r *Registry) StepCount() int {
	return len(r.steps)
}

// Index returns the position of the step with the given id.
func (r *Registry) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// Steps returns a copy of all step definitions in order.
func (r *Registry) Steps() []domain.StepDefinition {
	out := make([]domain.StepDefinition, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.Clone()
	}
	return out
}

// ProducedBefore returns the union of keys produced by steps 0..index-1, sorted.
func (r *Registry) ProducedBefore(index int) []string {
	index = min(max(index, 0), len(r.steps))
	var keys []string
	for _, s := range r.steps[:index] {
		keys = append(keys, s.ProducesKeys...)
	}
	slices.Sort(keys)
	return keys
}
