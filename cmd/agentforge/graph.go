package main

import (
	"fmt"

	"github.com/aretw0/agentforge/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the wizard flow as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the wizard steps and the fields each
catalog option requires. With --session, the steps the session visited are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		open := openApp
		if sessionID != "" {
			open = openSessionApp
		}
		app, err := open(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		var overlay *graph.Overlay
		if sessionID != "" {
			state, err := app.Wizard.LoadSession(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", sessionID, err)
			}
			overlay = graph.OverlayFor(state)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(app.Wizard.Registry().Steps(), app.Wizard.Rules(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the progress of a session")
}
