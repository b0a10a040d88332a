package runtime

import (
	"fmt"

	"github.com/aretw0/agentforge/pkg/domain"
)

// validateState checks that a state could have been produced by this engine.
// The draft itself is checked by the answer store when it is restored.
func (e *Engine) validateState(state *domain.State) error {
	if state == nil {
		return fmt.Errorf("cannot navigate nil state")
	}

	count := e.registry.StepCount()
	if state.CurrentStep < 0 || state.CurrentStep > count {
		return fmt.Errorf("%w: current step %d (step count %d)", domain.ErrOutOfRange, state.CurrentStep, count)
	}

	switch state.Status {
	case domain.StatusActive:
		if state.CurrentStep == count {
			return fmt.Errorf("%w: active state past the last step", domain.ErrOutOfRange)
		}
	case domain.StatusComplete, domain.StatusGenerated:
		if state.CurrentStep != count {
			return fmt.Errorf("%w: %s state at step %d", domain.ErrOutOfRange, state.Status, state.CurrentStep)
		}
	default:
		return fmt.Errorf("unknown status '%s'", state.Status)
	}
	return nil
}
