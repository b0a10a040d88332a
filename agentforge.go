package agentforge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/agentforge/internal/logging"
	"github.com/aretw0/agentforge/internal/runtime"
	"github.com/aretw0/agentforge/pkg/adapters/memory"
	"github.com/aretw0/agentforge/pkg/catalog"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/generation"
	"github.com/aretw0/agentforge/pkg/ports"
	"github.com/aretw0/agentforge/pkg/registry"
	"github.com/aretw0/agentforge/pkg/schema"
	"github.com/aretw0/agentforge/pkg/session"
)

// Wizard is the high-level entry point of the library.
// It wraps the internal runtime and the generation sequencer behind a
// stateless API (state in, state out) and offers session-backed variants
// that persist every transition.
type Wizard struct {
	catalog    *catalog.Catalog
	rules      schema.Rules
	registry   *registry.Registry
	deriver    *schema.Deriver
	runtime    *runtime.Engine
	sequencer  *generation.Sequencer
	sessions   *session.Manager
	completion ports.CompletionHandler
	hooks      domain.LifecycleHooks
	logger     *slog.Logger

	filter  runtime.InputFilter
	seqOpts []generation.Option
	store   ports.StateStore
}

var _ ports.WizardEngine = (*Wizard)(nil)

// Option defines a functional option for configuring the Wizard.
type Option func(*Wizard)

// WithCatalog replaces the embedded option catalog.
// Field requirements declared by the catalog extend the built-in rules.
func WithCatalog(c *catalog.Catalog) Option {
	return func(w *Wizard) {
		w.catalog = c
	}
}

// WithRules merges extra derivation rules over the built-in and catalog ones.
func WithRules(rules schema.Rules) Option {
	return func(w *Wizard) {
		w.rules = w.rules.Merge(rules)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks for navigation and generation.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = w.hooks.Merge(hooks)
	}
}

// WithInputFilter sets a filter run over every submitted value before validation.
// A filter error rejects a required field; an optional field loses the value.
func WithInputFilter(f func(domain.Field, string) (string, error)) Option {
	return func(w *Wizard) {
		w.filter = f
	}
}

// WithSequencerOptions configures the generation sequencer (phases, sleeper, assembler).
func WithSequencerOptions(opts ...generation.Option) Option {
	return func(w *Wizard) {
		w.seqOpts = append(w.seqOpts, opts...)
	}
}

// WithStore sets the session store. Sessions are kept in memory by default.
func WithStore(store ports.StateStore) Option {
	return func(w *Wizard) {
		w.store = store
	}
}

// WithSessionManager sets a preconfigured session manager (e.g. with a distributed locker).
// It takes precedence over WithStore.
func WithSessionManager(m *session.Manager) Option {
	return func(w *Wizard) {
		w.sessions = m
	}
}

// WithCompletionHandler sets the collaborator that performs completion actions.
// By default actions are only logged.
func WithCompletionHandler(h ports.CompletionHandler) Option {
	return func(w *Wizard) {
		w.completion = h
	}
}

// New builds a Wizard over the built-in three step flow.
func New(opts ...Option) (*Wizard, error) {
	w := &Wizard{}
	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logging.NewNop()
	}
	if w.catalog == nil {
		w.catalog = catalog.Default()
	}

	// Catalog requirements extend the built-in table; explicit rules win.
	w.rules = schema.DefaultRules().Merge(w.catalog.Rules()).Merge(w.rules)
	w.deriver = schema.NewDeriver(w.rules)

	reg, err := registry.New(registry.DefaultSteps(
		w.catalog.InputIDs(),
		w.catalog.OutputIDs(),
		w.rules.FieldNames()...,
	)...)
	if err != nil {
		return nil, fmt.Errorf("invalid step registry: %w", err)
	}
	w.registry = reg

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(w.hooks),
		runtime.WithLogger(w.logger),
	}
	if w.filter != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithInputFilter(w.filter))
	}
	w.runtime = runtime.NewEngine(w.registry, w.deriver, runtimeOpts...)

	seqOpts := append([]generation.Option{
		generation.WithLifecycleHooks(w.hooks),
		generation.WithLogger(w.logger),
	}, w.seqOpts...)
	w.sequencer = generation.New(seqOpts...)

	if w.sessions == nil {
		store := w.store
		if store == nil {
			store = memory.NewStore()
		}
		w.sessions = session.NewManager(store, session.WithLogger(w.logger))
	}
	if w.completion == nil {
		w.completion = generation.LogCompletion{Logger: w.logger}
	}
	return w, nil
}

// Catalog returns the option catalog shown on the selection steps.
func (w *Wizard) Catalog() *catalog.Catalog {
	return w.catalog
}

// Registry returns the step flow.
func (w *Wizard) Registry() *registry.Registry {
	return w.registry
}

// Rules returns a copy of the effective derivation rules.
func (w *Wizard) Rules() schema.Rules {
	return w.deriver.Rules()
}

// Sequencer returns the generation sequencer.
func (w *Wizard) Sequencer() *generation.Sequencer {
	return w.sequencer
}

// Sessions returns the session manager.
func (w *Wizard) Sessions() *session.Manager {
	return w.sessions
}

// Derive returns the configure-step schema for a pair of selections.
func (w *Wizard) Derive(input, output string) []domain.Field {
	return w.deriver.Derive(domain.NewDraft(map[string]string{
		domain.KeyInputSource:   input,
		domain.KeyOutputChannel: output,
	}))
}

// Start creates the initial state and triggers lifecycle hooks.
func (w *Wizard) Start(ctx context.Context, sessionID string) *domain.State {
	return w.runtime.Start(ctx, sessionID)
}

// Render describes the current step without transitioning.
func (w *Wizard) Render(ctx context.Context, state *domain.State) (domain.View, error) {
	return w.runtime.Render(ctx, state)
}

// Advance submits values for the current step.
func (w *Wizard) Advance(ctx context.Context, state *domain.State, values map[string]string) (*domain.State, error) {
	return w.runtime.Advance(ctx, state, values)
}

// Retreat goes back one step; at the first step it returns domain.ErrExitFlow.
func (w *Wizard) Retreat(ctx context.Context, state *domain.State) (*domain.State, error) {
	return w.runtime.Retreat(ctx, state)
}

// ReachedEnd reports whether the last step has been accepted.
func (w *Wizard) ReachedEnd(state *domain.State) bool {
	return w.runtime.ReachedEnd(state)
}

// Check validates a state that was loaded from outside the wizard.
func (w *Wizard) Check(state *domain.State) error {
	return w.runtime.Check(state)
}

// Generate runs the generation phases over the frozen draft of a complete
// state and returns a new state holding the configuration.
// A draft holding redacted secrets is refused with domain.ErrSecretsMasked;
// Retreat reopens the last step so they can be entered again.
func (w *Wizard) Generate(ctx context.Context, state *domain.State, onPhase generation.PhaseFunc) (*domain.State, error) {
	return w.ResumeGeneration(ctx, state, 0, onPhase)
}

// ResumeGeneration continues a generation that was interrupted after `from`
// completed phases (see generation.Interrupted).
func (w *Wizard) ResumeGeneration(ctx context.Context, state *domain.State, from int, onPhase generation.PhaseFunc) (*domain.State, error) {
	if err := w.runtime.Check(state); err != nil {
		return nil, err
	}
	switch state.Status {
	case domain.StatusGenerated:
		return state, domain.ErrFlowComplete
	case domain.StatusActive:
		return state, fmt.Errorf("%w: step %d of %d", domain.ErrNotReady, state.CurrentStep, w.registry.StepCount())
	}
	if masked := state.Draft.Masked(); len(masked) > 0 {
		return state, fmt.Errorf("%w: go back and enter %s again", domain.ErrSecretsMasked, strings.Join(masked, ", "))
	}

	ctx = generation.WithSession(ctx, state.SessionID)
	cfg, err := w.sequencer.Resume(ctx, state.Draft, from, onPhase, nil)
	if err != nil {
		return state, err
	}

	next := state.Clone()
	next.Status = domain.StatusGenerated
	next.Configuration = &cfg
	return next, nil
}

// Act hands a copy of the finished configuration to the completion handler.
func (w *Wizard) Act(ctx context.Context, state *domain.State, action domain.CompletionAction) error {
	if state == nil || state.Status != domain.StatusGenerated || state.Configuration == nil {
		return fmt.Errorf("%w: no configuration has been generated", domain.ErrNotReady)
	}
	if _, ok := domain.ParseCompletionAction(string(action)); !ok {
		return fmt.Errorf("unknown completion action '%s'", action)
	}
	if masked := state.Configuration.Draft.Masked(); len(masked) > 0 {
		return fmt.Errorf("%w: %s of configuration %s", domain.ErrSecretsMasked, strings.Join(masked, ", "), state.Configuration.ID)
	}
	w.logger.Debug("completion action", "session_id", state.SessionID, "action", string(action))
	return w.completion.Complete(ctx, state.Configuration.Copy(), action)
}
