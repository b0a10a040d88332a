package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/agentforge/internal/presentation/tui"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/runner"
)

// RunOptions configures an interactive wizard run.
type RunOptions struct {
	SessionID string
	JSON      bool
	Fresh     bool
	Banner    bool
	// Style is the glamour style for prompts ("" follows the terminal).
	Style string
}

// RunSession runs the wizard on in/out until the configuration is generated,
// the user leaves, or ctx is cancelled. Leaving is not an error.
func RunSession(ctx context.Context, app *App, opts RunOptions, in io.Reader, out io.Writer) error {
	if opts.Fresh && opts.SessionID != "" {
		err := app.Wizard.DeleteSession(ctx, opts.SessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(in, out)
	} else {
		if opts.Banner {
			tui.PrintBanner(out)
		}
		textOpts := []runner.TextHandlerOption{runner.WithOptionLabels(optionLabels(app))}
		render, err := tui.NewRenderer(opts.Style, 0)
		if err != nil {
			app.Logger.Warn("markdown rendering disabled", "err", err)
		} else {
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
		}
		handler = runner.NewTextHandler(in, out, textOpts...)
	}

	r := runner.NewRunner(app.Wizard,
		runner.WithLogger(app.Logger),
		runner.WithInputHandler(handler),
		runner.WithSessionID(opts.SessionID),
		runner.WithSignals(true),
	)

	cfg, err := r.Run(ctx)
	switch {
	case errors.Is(err, domain.ErrExitFlow):
		app.Logger.Info("wizard closed", "session_id", r.SessionID())
		return nil
	case errors.Is(err, context.Canceled):
		if !opts.JSON {
			fmt.Fprintf(out, "\n[System] Interrupted. Resume with: agentforge run --session %s\n", r.SessionID())
		}
		return nil
	case err != nil:
		return err
	}

	if cfg != nil {
		app.Logger.Info("agent generated", "session_id", r.SessionID(), "agent_id", cfg.ID)
	}
	return nil
}

func optionLabels(app *App) map[string]string {
	cat := app.Wizard.Catalog()
	labels := make(map[string]string)
	for _, o := range cat.Inputs {
		labels[o.ID] = o.Name
	}
	for _, o := range cat.Outputs {
		labels[o.ID] = o.Name
	}
	return labels
}
