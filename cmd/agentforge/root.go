package main

import (
	"fmt"
	"os"

	"github.com/aretw0/agentforge/internal/cli"
	"github.com/aretw0/agentforge/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentforge",
	Short: "AgentForge configures AI agents through a guided wizard",
	Long: `AgentForge walks you through picking a data source, an output channel and
the connection details they need, then generates a ready to deploy agent configuration.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./"+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file or redis")
}

// loadConfig reads the config file and the environment, then applies the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if kind, _ := cmd.Flags().GetString("store"); kind != "" {
		cfg.Store.Kind = kind
	}
	return cfg, cfg.Validate()
}

// openApp builds the application from the command flags.
// Callers must Close the returned App.
func openApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func newApp(cfg config.Config) (*cli.App, error) {
	logger, err := cli.NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg, logger)
}
