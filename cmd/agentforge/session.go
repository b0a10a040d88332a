package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/agentforge/internal/cli"
	"github.com/aretw0/agentforge/internal/config"
	"github.com/aretw0/agentforge/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage saved wizard sessions",
	Long:  `List, inspect, and remove sessions kept by the configured store (default: files under .agentforge/sessions).`,
}

// openSessionApp is openApp with the file store in place of the memory one:
// sessions in memory die with the process.
func openSessionApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Kind == config.StoreMemory {
		cfg.Store.Kind = config.StoreFile
	}
	return newApp(cfg)
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openSessionApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sessions, err := app.Wizard.ListSessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No saved sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Saved Sessions:")
		for _, s := range sessions {
			fmt.Fprintln(out, "- "+s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		app, err := openSessionApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Wizard.LoadSession(cmd.Context(), sessionID)
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", sessionID, err)
		}

		if summary, _ := cmd.Flags().GetBool("summary"); summary {
			if state.Configuration == nil {
				return errors.New("session has no generated configuration yet")
			}
			secrets := app.Wizard.Rules().SecretNames()
			md := tui.SummaryMarkdown(*state.Configuration, func(key string) bool {
				return slices.Contains(secrets, key)
			})
			render, err := tui.NewRenderer("", 0)
			if err != nil {
				return err
			}
			text, err := render(md)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling state: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id]...",
	Short: "Remove one or more sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return errors.New("give at least one session id, or --all")
		}

		app, err := openSessionApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if all {
			args, err = app.Wizard.ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
		}

		var errs []error
		for _, sessionID := range args {
			if err := app.Wizard.DeleteSession(cmd.Context(), sessionID); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", sessionID, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", sessionID)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().Bool("summary", false, "Render the generated configuration instead of the raw state")
	sessionRmCmd.Flags().Bool("all", false, "Remove every saved session")
}
