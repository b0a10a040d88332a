/*
Package agentforge is a guided wizard that turns a few answers into an AI agent configuration.

The flow has three steps: pick an input source, pick an output channel, then
fill in the connection details and general settings. The fields of the last
step are derived from the two selections. Once the last step is accepted, a
timed generation sequence reports progress and assembles an AgentConfiguration.

# Concept

The wizard is a stateless state machine. Every operation takes a *domain.State
and returns a new one; the caller owns persistence. The session-backed
variants (StartSession, AdvanceSession, ...) load, transition and save a state
under a per-session lock, so a host can stop and resume a wizard.

Render collaborators (the terminal runner, the HTTP API and the MCP server)
only call Render, Advance and Retreat. A rejected submission returns a
*domain.ValidationFailure and leaves the state unchanged. Going back from the
first step returns domain.ErrExitFlow.

# Usage

	wiz, err := agentforge.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state := wiz.Start(ctx, "session-123")

	state, err = wiz.Advance(ctx, state, map[string]string{"input-source": "shopify-reviews"})
	if err != nil {
		log.Fatal(err)
	}

	view, _ := wiz.Render(ctx, state)
	fmt.Println(view.Title)
*/
package agentforge
