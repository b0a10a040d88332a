package agentforge

import (
	"context"

	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/generation"
)

// Transition is the result of a session-backed operation.
// Before is the stored state the operation started from.
type Transition struct {
	Before *domain.State
	After  *domain.State
}

// Diff returns the changes between Before and After, or nil when nothing changed.
func (t Transition) Diff() *domain.StateDiff {
	return domain.Diff(t.Before, t.After)
}

// StartSession loads the session or starts it at the first step.
// An empty sessionID gets a generated one.
func (w *Wizard) StartSession(ctx context.Context, sessionID string) (*domain.State, error) {
	state, err := w.sessions.LoadOrStart(ctx, sessionID, w.runtime.Start)
	if err != nil {
		return nil, err
	}
	if err := w.runtime.Check(state); err != nil {
		return nil, err
	}
	return state, nil
}

// LoadSession returns the stored state of a session.
func (w *Wizard) LoadSession(ctx context.Context, sessionID string) (*domain.State, error) {
	return w.sessions.Load(ctx, sessionID)
}

// AdvanceSession submits values for the current step of a stored session.
// On validation failure the stored state is left alone and the returned error
// is a *domain.ValidationFailure.
func (w *Wizard) AdvanceSession(ctx context.Context, sessionID string, values map[string]string) (Transition, error) {
	return w.update(ctx, sessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return w.Advance(ctx, state, values)
	})
}

// RetreatSession goes back one step in a stored session.
func (w *Wizard) RetreatSession(ctx context.Context, sessionID string) (Transition, error) {
	return w.update(ctx, sessionID, w.Retreat)
}

// GenerateSession runs generation for a stored session and persists the
// configuration. The session stays locked for the whole run.
func (w *Wizard) GenerateSession(ctx context.Context, sessionID string, onPhase generation.PhaseFunc) (Transition, error) {
	return w.update(ctx, sessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		return w.Generate(ctx, state, onPhase)
	})
}

// ActSession runs a completion action on the configuration of a stored session.
func (w *Wizard) ActSession(ctx context.Context, sessionID string, action domain.CompletionAction) error {
	state, err := w.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	return w.Act(ctx, state, action)
}

// DeleteSession removes a stored session.
func (w *Wizard) DeleteSession(ctx context.Context, sessionID string) error {
	return w.sessions.Delete(ctx, sessionID)
}

// ListSessions returns the ids of every stored session.
func (w *Wizard) ListSessions(ctx context.Context) ([]string, error) {
	return w.sessions.List(ctx)
}

func (w *Wizard) update(ctx context.Context, sessionID string, fn func(context.Context, *domain.State) (*domain.State, error)) (Transition, error) {
	var t Transition
	next, err := w.sessions.Update(ctx, sessionID, func(ctx context.Context, state *domain.State) (*domain.State, error) {
		if err := w.runtime.Check(state); err != nil {
			return nil, err
		}
		t.Before = state
		return fn(ctx, state)
	})
	t.After = next
	if t.After == nil {
		t.After = t.Before
	}
	return t, err
}
