package generation

import (
	"context"
	"log/slog"

	"github.com/aretw0/agentforge/pkg/domain"
)

// LogCompletion is a completion handler that only records the chosen action.
// Real deploy or API-access integrations live outside this module.
type LogCompletion struct {
	Logger *slog.Logger
}

// Complete logs the action taken on cfg.
func (h LogCompletion) Complete(ctx context.Context, cfg domain.AgentConfiguration, action domain.CompletionAction) error {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "completion action",
		"action", string(action),
		"configuration_id", cfg.ID,
		"display_name", cfg.DisplayName,
		"input_source", cfg.InputSource,
		"output_channel", cfg.OutputChannel)
	return nil
}
