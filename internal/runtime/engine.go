package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/agentforge/internal/logging"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/registry"
	"github.com/aretw0/agentforge/pkg/schema"
)

// InputFilter cleans a single submitted value before validation.
// Returning an error rejects the value when the field is required. For an
// optional field the value is dropped, as if it had been left blank.
type InputFilter func(f domain.Field, value string) (string, error)

// Engine is the wizard state machine.
// It holds no session data: every call takes a state and returns a new one.
type Engine struct {
	registry *registry.Registry
	deriver  *schema.Deriver
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	filter   InputFilter
	now      func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithInputFilter sets a filter applied to every submitted value.
func WithInputFilter(f InputFilter) EngineOption {
	return func(e *Engine) {
		e.filter = f
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine over a fixed flow and derivation table.
func NewEngine(reg *registry.Registry, deriver *schema.Deriver, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: reg,
		deriver:  deriver,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the flow the engine walks.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Deriver returns the derivation table used for derived steps.
func (e *Engine) Deriver() *schema.Deriver {
	return e.deriver
}

// Start creates a fresh state positioned at the first step.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.State {
	first, _ := e.registry.StepAt(0)
	state := domain.NewState(sessionID, first.ID)
	e.emitStepEnter(ctx, state, first, 0)
	return state
}

// ReachedEnd reports whether the last step has been accepted.
func (e *Engine) ReachedEnd(state *domain.State) bool {
	if state == nil {
		return false
	}
	return state.CurrentStep == e.registry.StepCount() && state.Status != domain.StatusActive
}

// Fields returns the schema of the current step.
// Derived steps are recomputed from the draft on every call.
func (e *Engine) Fields(state *domain.State) ([]domain.Field, error) {
	step, err := e.registry.StepAt(state.CurrentStep)
	if err != nil {
		return nil, err
	}
	return e.fieldsFor(step, state.Draft), nil
}

func (e *Engine) fieldsFor(step domain.StepDefinition, draft domain.Draft) []domain.Field {
	if step.Derived {
		return e.deriver.Derive(draft)
	}
	out := make([]domain.Field, len(step.Fields))
	for i, f := range step.Fields {
		out[i] = f.Clone()
	}
	return out
}

func (e *Engine) event(state *domain.State, t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now(),
		Type:      t,
		SessionID: state.SessionID,
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, state *domain.State, step domain.StepDefinition, index int) {
	e.logger.Debug("step enter", "session_id", state.SessionID, "step", step.ID, "index", index)
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, &domain.StepEvent{
			EventBase: e.event(state, domain.EventStepEnter),
			StepID:    step.ID,
			StepIndex: index,
		})
	}
}

func (e *Engine) emitStepLeave(ctx context.Context, state *domain.State, step domain.StepDefinition, index int) {
	e.logger.Debug("step leave", "session_id", state.SessionID, "step", step.ID, "index", index)
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, &domain.StepEvent{
			EventBase: e.event(state, domain.EventStepLeave),
			StepID:    step.ID,
			StepIndex: index,
		})
	}
}

func (e *Engine) emitStepRetreat(ctx context.Context, state *domain.State, step domain.StepDefinition, index int) {
	e.logger.Debug("step retreat", "session_id", state.SessionID, "step", step.ID, "index", index)
	if e.hooks.OnStepRetreat != nil {
		e.hooks.OnStepRetreat(ctx, &domain.StepEvent{
			EventBase: e.event(state, domain.EventStepRetreat),
			StepID:    step.ID,
			StepIndex: index,
		})
	}
}

func (e *Engine) emitValidationFailed(ctx context.Context, state *domain.State, vf *domain.ValidationFailure) {
	e.logger.Debug("validation failed", "session_id", state.SessionID, "step", vf.StepID, "fields", vf.Fields())
	if e.hooks.OnValidationFailed != nil {
		e.hooks.OnValidationFailed(ctx, &domain.ValidationEvent{
			EventBase: e.event(state, domain.EventValidationFailed),
			StepID:    vf.StepID,
			Fields:    vf.Fields(),
		})
	}
}
