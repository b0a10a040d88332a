package main

import (
	"os"

	"github.com/aretw0/agentforge/internal/cli"
	"github.com/aretw0/agentforge/internal/config"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive configuration wizard",
	Long: `Starts the wizard in the terminal. Answers are saved after every step, so an
interrupted run continues where it stopped when started again with the same --session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		style, _ := cmd.Flags().GetString("style")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// Resuming needs a store that outlives the process.
		if sessionID != "" && cfg.Store.Kind == config.StoreMemory {
			cfg.Store.Kind = config.StoreFile
		}

		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunSession(cmd.Context(), app, cli.RunOptions{
			SessionID: sessionID,
			JSON:      jsonMode,
			Fresh:     fresh,
			Banner:    !noBanner && !jsonMode,
			Style:     style,
		}, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().StringP("session", "s", "", "Session id to start or resume")
	runCmd.Flags().Bool("fresh", false, "Discard the saved answers of --session first")
	runCmd.Flags().String("style", "", "Markdown style: dark, light or notty (default: detect)")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")

	// 'run' is the default when no command is provided.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
