package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/agentforge"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of agentforge",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "agentforge version %s\n", strings.TrimSpace(agentforge.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
