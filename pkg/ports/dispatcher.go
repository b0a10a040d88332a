package ports

import (
	"context"

	"github.com/aretw0/agentforge/pkg/domain"
)

// CompletionHandler performs what the user chose to do with a finished configuration.
// The engine only hands over a copy; handlers may not change the stored record.
type CompletionHandler interface {
	Complete(ctx context.Context, cfg domain.AgentConfiguration, action domain.CompletionAction) error
}

// CompletionFunc adapts a function to CompletionHandler.
type CompletionFunc func(ctx context.Context, cfg domain.AgentConfiguration, action domain.CompletionAction) error

func (f CompletionFunc) Complete(ctx context.Context, cfg domain.AgentConfiguration, action domain.CompletionAction) error {
	return f(ctx, cfg, action)
}
