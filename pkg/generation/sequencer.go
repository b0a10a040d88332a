package generation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/agentforge/internal/logging"
	"github.com/aretw0/agentforge/pkg/domain"
)

// PhaseFunc is called after each phase with its label and the overall percentage.
type PhaseFunc func(label string, percent float64)

// CompleteFunc is called once with the assembled configuration.
type CompleteFunc func(cfg domain.AgentConfiguration)

// Interrupted is returned when the context ends between or during phases.
// Completed can be passed to Resume to continue where the run stopped.
type Interrupted struct {
	Completed int
	Total     int
	Err       error
}

func (e *Interrupted) Error() string {
	return fmt.Sprintf("generation interrupted after %d/%d phases: %v", e.Completed, e.Total, e.Err)
}

func (e *Interrupted) Unwrap() error {
	return e.Err
}

// Sequencer runs the timed generation phases in the caller's goroutine.
type Sequencer struct {
	phases    []domain.Phase
	sleeper   Sleeper
	assembler *Assembler
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithPhases replaces the phase list.
func WithPhases(phases ...domain.Phase) Option {
	return func(s *Sequencer) {
		s.phases = slices.Clone(phases)
	}
}

// WithPhaseDuration sets the same duration on every phase.
func WithPhaseDuration(d time.Duration) Option {
	return func(s *Sequencer) {
		for i := range s.phases {
			s.phases[i].Duration = d
		}
	}
}

// WithSleeper sets the time source used between phases.
func WithSleeper(sl Sleeper) Option {
	return func(s *Sequencer) {
		s.sleeper = sl
	}
}

// WithAssembler sets the configuration assembler.
func WithAssembler(a *Assembler) Option {
	return func(s *Sequencer) {
		s.assembler = a
	}
}

// WithLifecycleHooks registers phase and completion hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Sequencer) {
		s.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a sequencer with the default phases on a real timer.
// Options apply in order, so WithPhaseDuration must follow WithPhases.
func New(opts ...Option) *Sequencer {
	s := &Sequencer{
		phases:    DefaultPhases(DefaultPhaseDuration),
		sleeper:   TimerSleeper,
		assembler: NewAssembler(),
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phases returns a copy of the phase list.
func (s *Sequencer) Phases() []domain.Phase {
	return slices.Clone(s.phases)
}

// Start runs every phase, then assembles the configuration from draft.
// onPhase and onComplete may be nil.
func (s *Sequencer) Start(ctx context.Context, draft domain.Draft, onPhase PhaseFunc, onComplete CompleteFunc) (domain.AgentConfiguration, error) {
	return s.Resume(ctx, draft, 0, onPhase, onComplete)
}

// Resume continues a run after `from` completed phases. Progress reported by
// the resumed run keeps increasing from where the interrupted one stopped.
func (s *Sequencer) Resume(ctx context.Context, draft domain.Draft, from int, onPhase PhaseFunc, onComplete CompleteFunc) (domain.AgentConfiguration, error) {
	total := len(s.phases)
	if from < 0 || from > total {
		return domain.AgentConfiguration{}, fmt.Errorf("%w: resume from phase %d of %d", domain.ErrOutOfRange, from, total)
	}
	// Fail before waiting through the phases.
	if err := s.assembler.Ready(draft); err != nil {
		return domain.AgentConfiguration{}, err
	}

	sessionID := SessionFrom(ctx)
	started := s.now()

	for i := from; i < total; i++ {
		phase := s.phases[i]
		if err := s.sleeper.Sleep(ctx, phase.Duration); err != nil {
			s.logger.Debug("generation interrupted", "session_id", sessionID, "completed", i, "total", total)
			return domain.AgentConfiguration{}, &Interrupted{Completed: i, Total: total, Err: err}
		}

		progress := domain.Progress{
			Label:     phase.Label,
			Completed: i + 1,
			Total:     total,
			Percent:   domain.ProgressPercent(i+1, total),
		}
		s.logger.Debug("generation phase", "session_id", sessionID, "phase", phase.Label, "percent", progress.Percent)
		if s.hooks.OnPhase != nil {
			s.hooks.OnPhase(ctx, &domain.PhaseEvent{
				EventBase: domain.EventBase{Timestamp: s.now(), Type: domain.EventPhase, SessionID: sessionID},
				Progress:  progress,
				Elapsed:   s.now().Sub(started),
			})
		}
		if onPhase != nil {
			onPhase(phase.Label, progress.Percent)
		}
	}

	cfg, err := s.assembler.Assemble(draft)
	if err != nil {
		return domain.AgentConfiguration{}, err
	}

	s.logger.Info("agent configuration ready", "session_id", sessionID, "configuration_id", cfg.ID, "display_name", cfg.DisplayName)
	if s.hooks.OnComplete != nil {
		s.hooks.OnComplete(ctx, &domain.CompletionEvent{
			EventBase:       domain.EventBase{Timestamp: s.now(), Type: domain.EventComplete, SessionID: sessionID},
			ConfigurationID: cfg.ID,
			DisplayName:     cfg.DisplayName,
		})
	}
	if onComplete != nil {
		onComplete(cfg.Copy())
	}
	return cfg, nil
}

type sessionKey struct{}

// WithSession tags ctx with the session id reported in phase and completion events.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFrom returns the session id set by WithSession, or "".
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
