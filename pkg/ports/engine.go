package ports

import (
	"context"

	"github.com/aretw0/agentforge/pkg/domain"
)

// WizardEngine is the stateless wizard core as seen by render collaborators
// (terminal runner, HTTP and MCP adapters). State is passed in and a new
// state is returned; the caller owns persistence and serialization.
type WizardEngine interface {
	// Start creates a fresh state at the first step.
	Start(ctx context.Context, sessionID string) *domain.State

	// Render describes the current step without changing the state.
	Render(ctx context.Context, state *domain.State) (domain.View, error)

	// Advance submits values for the current step.
	// A *domain.ValidationFailure leaves the state unchanged.
	Advance(ctx context.Context, state *domain.State, values map[string]string) (*domain.State, error)

	// Retreat goes back one step. At the first step it returns domain.ErrExitFlow.
	Retreat(ctx context.Context, state *domain.State) (*domain.State, error)

	// ReachedEnd reports whether the last step has been accepted.
	ReachedEnd(state *domain.State) bool
}
