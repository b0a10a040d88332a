package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/agentforge"
	"github.com/aretw0/agentforge/internal/logging"
	"github.com/aretw0/agentforge/pkg/domain"
)

// Runner drives a wizard session through an IOHandler: it asks each step,
// runs generation once the last step is accepted and hands the configuration
// to the completion handler. Every transition is persisted, so an
// interrupted run can be resumed with the same session id.
type Runner struct {
	wizard    *agentforge.Wizard
	handler   IOHandler
	logger    *slog.Logger
	sessionID string
	signals   bool
}

// NewRunner creates a Runner over wiz. The default handler is a TextHandler on Stdin/Stdout.
func NewRunner(wiz *agentforge.Wizard, opts ...Option) *Runner {
	r := &Runner{wizard: wiz}
	for _, opt := range opts {
		opt(r)
	}
	if r.handler == nil {
		r.handler = NewTextHandler(nil, nil)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	return r
}

// SessionID returns the id of the session being run. It is set once Run has started it.
func (r *Runner) SessionID() string {
	return r.sessionID
}

// Run executes the wizard until the configuration is generated and the
// completion action (if any) has been performed.
//
// It returns a nil configuration and nil error when the user saved and quit
// or the input ended, and domain.ErrExitFlow when the user went back from the
// first step.
func (r *Runner) Run(ctx context.Context) (*domain.AgentConfiguration, error) {
	var signals *SignalManager
	if r.signals {
		signals = NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	state, err := r.wizard.StartSession(ctx, r.sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	r.sessionID = state.SessionID
	r.logger.Debug("runner started", "session_id", r.sessionID, "step", state.CurrentStep, "status", state.Status)

	var (
		previous map[string]string
		failure  *domain.ValidationFailure
	)
	for state.Status != domain.StatusGenerated {
		for state.Status == domain.StatusActive {
			view, err := r.wizard.Render(ctx, state)
			if err != nil {
				return nil, fmt.Errorf("render error: %w", err)
			}

			sub, err := r.handler.Ask(ctx, Prompt{View: view, Previous: previous, Failure: failure})
			if err != nil {
				if signals != nil {
					signals.CheckRace()
				}
				return nil, r.stopped(ctx, err)
			}

			switch sub.Command {
			case CommandExit:
				return nil, r.stopped(ctx, io.EOF)

			case CommandBack:
				t, err := r.wizard.RetreatSession(ctx, r.sessionID)
				if errors.Is(err, domain.ErrExitFlow) {
					r.logger.Debug("runner exit flow", "session_id", r.sessionID)
					return nil, domain.ErrExitFlow
				}
				if err != nil {
					return nil, fmt.Errorf("navigation error: %w", err)
				}
				state, previous, failure = t.After, nil, nil

			default:
				t, err := r.wizard.AdvanceSession(ctx, r.sessionID, sub.Values)
				if vf, ok := domain.AsValidationFailure(err); ok {
					previous, failure = sub.Values, vf
					continue
				}
				if err != nil {
					return nil, fmt.Errorf("navigation error: %w", err)
				}
				state, previous, failure = t.After, nil, nil
			}
		}

		next, err := r.generate(ctx)
		if errors.Is(err, domain.ErrSecretsMasked) {
			// Secrets were masked by the store: reopen the last step.
			if err := r.handler.SystemOutput(ctx, "Saved credentials are not kept between runs; please enter them again."); err != nil {
				return nil, err
			}
			t, err := r.wizard.RetreatSession(ctx, r.sessionID)
			if err != nil {
				return nil, fmt.Errorf("navigation error: %w", err)
			}
			state = t.After
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, r.stopped(ctx, err)
			}
			return nil, fmt.Errorf("generation failed: %w", err)
		}
		state = next
	}

	if state.Configuration == nil {
		return nil, fmt.Errorf("session %s is %s without a configuration", r.sessionID, state.Status)
	}
	cfg := state.Configuration.Copy()

	action, err := r.handler.Complete(ctx, cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return &cfg, err
	}
	if action != "" {
		if err := r.wizard.ActSession(ctx, r.sessionID, action); err != nil {
			return &cfg, fmt.Errorf("completion action %s failed: %w", action, err)
		}
	}
	return &cfg, nil
}

func (r *Runner) generate(ctx context.Context) (*domain.State, error) {
	if err := r.handler.SystemOutput(ctx, "Generating your agent..."); err != nil {
		return nil, err
	}
	total := len(r.wizard.Sequencer().Phases())
	completed := 0
	t, err := r.wizard.GenerateSession(ctx, r.sessionID, func(label string, percent float64) {
		completed++
		if err := r.handler.Progress(ctx, domain.Progress{
			Label:     label,
			Completed: completed,
			Total:     total,
			Percent:   percent,
		}); err != nil {
			r.logger.Warn("progress output failed", "err", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return t.After, nil
}

// stopped maps the end of input or a cancelled context to a resumable stop.
func (r *Runner) stopped(ctx context.Context, cause error) error {
	if ctx.Err() != nil {
		r.logger.Debug("runner interrupted", "session_id", r.sessionID, "err", ctx.Err())
		_ = r.handler.SystemOutput(context.WithoutCancel(ctx), r.resumeHint())
		return ctx.Err()
	}
	if errors.Is(cause, io.EOF) {
		r.logger.Debug("runner input closed", "session_id", r.sessionID)
		_ = r.handler.SystemOutput(ctx, r.resumeHint())
		return nil
	}
	return fmt.Errorf("input error: %w", cause)
}

func (r *Runner) resumeHint() string {
	return fmt.Sprintf("Progress saved. Resume with: agentforge run --session %s", r.sessionID)
}
