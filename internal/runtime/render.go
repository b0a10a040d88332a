package runtime

import (
	"context"

	"github.com/aretw0/agentforge/pkg/domain"
)

// Render builds the view of the current step for a render collaborator.
// Once the flow is complete the view carries no step and Terminal is set.
func (e *Engine) Render(ctx context.Context, state *domain.State) (domain.View, error) {
	if err := e.validateState(state); err != nil {
		return domain.View{}, err
	}

	view := domain.View{
		SessionID: state.SessionID,
		Status:    state.Status,
		StepIndex: state.CurrentStep,
		StepCount: e.registry.StepCount(),
		Draft:     state.Draft,
		First:     state.CurrentStep == 0,
	}
	if state.Status != domain.StatusActive {
		view.Terminal = true
		view.Fields = []domain.Field{}
		return view, nil
	}

	step, err := e.registry.StepAt(state.CurrentStep)
	if err != nil {
		return domain.View{}, err
	}
	view.StepID = step.ID
	view.Role = step.Role
	view.Title = step.Title
	view.Prompt = step.Prompt
	view.Fields = e.fieldsFor(step, state.Draft)
	if view.Fields == nil {
		view.Fields = []domain.Field{}
	}
	return view, nil
}

// Check validates a state loaded from outside the engine, including its draft.
func (e *Engine) Check(state *domain.State) error {
	if err := e.validateState(state); err != nil {
		return err
	}
	_, err := e.restore(state)
	return err
}
