package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/agentforge/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_enter", "session_id", e.SessionID, "step_id", e.StepID, "index", e.StepIndex)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_leave", "session_id", e.SessionID, "step_id", e.StepID, "index", e.StepIndex)
		},
		OnStepRetreat: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_retreat", "session_id", e.SessionID, "step_id", e.StepID, "index", e.StepIndex)
		},
		OnValidationFailed: func(ctx context.Context, e *domain.ValidationEvent) {
			logger.InfoContext(ctx, "validation_failed", "session_id", e.SessionID, "step_id", e.StepID, "fields", e.Fields)
		},
		OnPhase: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.InfoContext(ctx, "generation_phase", "session_id", e.SessionID, "phase", e.Label, "percent", e.Percent)
		},
		OnComplete: func(ctx context.Context, e *domain.CompletionEvent) {
			logger.InfoContext(ctx, "configuration_ready", "session_id", e.SessionID, "configuration_id", e.ConfigurationID)
		},
	}
}
