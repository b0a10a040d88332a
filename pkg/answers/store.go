// Package answers accumulates per-step results into a single draft.
//
// A Store is owned by exactly one writer (the wizard engine). Other components
// only ever see the immutable snapshots it hands out.
package answers

import (
	"fmt"
	"maps"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/registry"
)

// Store holds the draft of a single wizard session.
// It is not safe for concurrent use.
type Store struct {
	reg       *registry.Registry
	values    map[string]string
	highWater int
}

// New creates an empty store for the given flow.
func New(reg *registry.Registry) *Store {
	return &Store{
		reg:    reg,
		values: make(map[string]string),
	}
}

// Restore rebuilds a store from a persisted draft.
// highWater is the number of completed steps; the draft must only hold keys
// those steps produce.
func Restore(reg *registry.Registry, draft domain.Draft, highWater int) (*Store, error) {
	if highWater < 0 || highWater > reg.StepCount() {
		return nil, fmt.Errorf("%w: high-water mark %d (step count %d)", domain.ErrOutOfRange, highWater, reg.StepCount())
	}

	allowed := make(map[string]struct{})
	for _, key := range reg.ProducedBefore(highWater) {
		allowed[key] = struct{}{}
	}
	for _, key := range draft.Keys() {
		if _, ok := allowed[key]; !ok {
			return nil, fmt.Errorf("%w: key '%s' is not produced by the first %d step(s)", domain.ErrSchemaViolation, key, highWater)
		}
	}

	return &Store{
		reg:       reg,
		values:    draft.Map(),
		highWater: highWater,
	}, nil
}

// Append writes the values of a completed step.
// Every key the step declares is recorded; keys missing from values are
// recorded blank. Keys the step does not declare are rejected.
func (s *Store) Append(stepIndex int, values map[string]string) error {
	step, err := s.reg.StepAt(stepIndex)
	if err != nil {
		return err
	}
	if stepIndex != s.highWater {
		return fmt.Errorf("%w: cannot append step %d, next expected step is %d", domain.ErrOutOfRange, stepIndex, s.highWater)
	}

	for key := range values {
		if !step.Produces(key) {
			return fmt.Errorf("%w: step '%s' does not produce '%s'", domain.ErrSchemaViolation, step.ID, key)
		}
	}

	for _, key := range step.ProducesKeys {
		s.values[key] = values[key]
	}
	s.highWater = stepIndex + 1
	return nil
}

// TruncateTo removes every key produced by steps >= stepIndex.
// stepIndex may equal the step count, which is a no-op.
func (s *Store) TruncateTo(stepIndex int) error {
	if stepIndex < 0 || stepIndex > s.reg.StepCount() {
		return fmt.Errorf("%w: %d (step count %d)", domain.ErrOutOfRange, stepIndex, s.reg.StepCount())
	}

	for _, step := range s.reg.Steps()[stepIndex:] {
		for _, key := range step.ProducesKeys {
			delete(s.values, key)
		}
	}
	s.highWater = min(s.highWater, stepIndex)
	return nil
}

// Snapshot returns an immutable copy of the draft.
func (s *Store) Snapshot() domain.Draft {
	return domain.NewDraft(s.values)
}

// HighWater returns the number of steps whose answers are held.
func (s *Store) HighWater() int {
	return s.highWater
}

// Len returns the number of populated keys.
func (s *Store) Len() int {
	return len(s.values)
}

// Values returns a copy of the raw values.
func (s *Store) Values() map[string]string {
	return maps.Clone(s.values)
}
