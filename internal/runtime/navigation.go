package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/agentforge/pkg/answers"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/schema"
)

// Advance validates values against the schema of the current step.
// On success the values are appended to the draft and the next step becomes
// current; accepting the last step completes the flow.
// On validation failure the input state is returned unchanged together with
// a *domain.ValidationFailure.
func (e *Engine) Advance(ctx context.Context, state *domain.State, values map[string]string) (*domain.State, error) {
	if err := e.validateState(state); err != nil {
		return nil, err
	}
	if state.Status != domain.StatusActive {
		return state, domain.ErrFlowComplete
	}

	index := state.CurrentStep
	step, err := e.registry.StepAt(index)
	if err != nil {
		return nil, err
	}

	fields := e.fieldsFor(step, state.Draft)
	submitted, filterErrs := e.applyFilter(fields, step, values)

	res := schema.Validate(fields, submitted)
	for name, msg := range filterErrs {
		res.Fields[name] = msg
	}
	if !res.OK() {
		vf := &domain.ValidationFailure{StepID: step.ID, Errors: res.Errors()}
		e.emitValidationFailed(ctx, state, vf)
		return state, vf
	}
	for name, hint := range res.Hints {
		e.logger.Debug("field hint", "session_id", state.SessionID, "step", step.ID, "field", name, "hint", hint)
	}

	store, err := e.restore(state)
	if err != nil {
		return nil, err
	}
	if err := store.Append(index, submitted); err != nil {
		return nil, err
	}

	next := state.Clone()
	next.Draft = store.Snapshot()
	next.CurrentStep = index + 1
	e.emitStepLeave(ctx, next, step, index)

	if next.CurrentStep == e.registry.StepCount() {
		next.Status = domain.StatusComplete
		e.logger.Debug("flow complete", "session_id", next.SessionID, "keys", next.Draft.Len())
		return next, nil
	}

	following, err := e.registry.StepAt(next.CurrentStep)
	if err != nil {
		return nil, err
	}
	next.History = append(next.History, following.ID)
	e.emitStepEnter(ctx, next, following, next.CurrentStep)
	return next, nil
}

// Retreat moves back one step and drops the answers of the step being
// re-entered and every later one.
// At the first step it returns the state unchanged with domain.ErrExitFlow,
// which the host treats as a request to leave the wizard.
// A complete state reopens the last step; once generated the flow is closed.
func (e *Engine) Retreat(ctx context.Context, state *domain.State) (*domain.State, error) {
	if err := e.validateState(state); err != nil {
		return nil, err
	}
	if state.Status == domain.StatusGenerated {
		return state, domain.ErrFlowComplete
	}
	if state.CurrentStep == 0 {
		e.logger.Debug("exit flow", "session_id", state.SessionID)
		return state, domain.ErrExitFlow
	}

	target := state.CurrentStep - 1
	store, err := e.restore(state)
	if err != nil {
		return nil, err
	}
	if err := store.TruncateTo(target); err != nil {
		return nil, err
	}

	step, err := e.registry.StepAt(target)
	if err != nil {
		return nil, err
	}

	next := state.Clone()
	next.Status = domain.StatusActive
	next.CurrentStep = target
	next.Draft = store.Snapshot()
	next.History = append(next.History, step.ID)
	e.emitStepRetreat(ctx, next, step, target)
	return next, nil
}

// applyFilter keeps the values the step may record and runs the input filter
// over them. Keys the step produces but the current schema does not ask for
// are dropped; keys the step never produces are kept so the answer store can
// reject them. A filter error rejects a required field only: an optional one
// is left out of the submission.
func (e *Engine) applyFilter(fields []domain.Field, step domain.StepDefinition, values map[string]string) (map[string]string, map[string]string) {
	inSchema := make(map[string]domain.Field, len(fields))
	for _, f := range fields {
		inSchema[f.Name] = f
	}

	out := make(map[string]string, len(values))
	var errs map[string]string
	for key, val := range values {
		f, ok := inSchema[key]
		if !ok {
			if !step.Produces(key) {
				out[key] = val
			}
			continue
		}
		if e.filter != nil {
			clean, err := e.filter(f, val)
			if err != nil {
				if !f.Required {
					e.logger.Debug("optional value dropped", "step", step.ID, "field", key, "err", err)
					continue
				}
				if errs == nil {
					errs = make(map[string]string)
				}
				errs[key] = fmt.Sprintf("%s: %v", f.DisplayName(), err)
				continue
			}
			val = clean
		}
		out[key] = val
	}
	return out, errs
}

func (e *Engine) restore(state *domain.State) (*answers.Store, error) {
	return answers.Restore(e.registry, state.Draft, state.CurrentStep)
}
