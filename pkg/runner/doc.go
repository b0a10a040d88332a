/*
Package runner implements the interactive loop that drives a wizard session.

It is the render collaborator for terminals and pipes: it asks each step
through a pluggable IOHandler, retries rejected submissions, shows generation
progress and finally asks what to do with the finished configuration.

# Key Components

  - Runner: the loop over agentforge.Wizard's session-backed operations.
  - TextHandler: interactive CLI usage with numbered option lists and hidden secret input.
  - JSONHandler: JSON Lines for scripts and other programs.
  - Sanitize: the input filter used by every surface.

# Usage

	wiz, _ := agentforge.New(agentforge.WithInputFilter(runner.Sanitize))
	r := runner.NewRunner(wiz,
		runner.WithSessionID("user-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	cfg, err := r.Run(ctx)
*/
package runner
