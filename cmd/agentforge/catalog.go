package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the wizard steps and the catalog options",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tSTEP\tROLE\tTITLE")
		for _, s := range app.Wizard.Registry().Steps() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Order, s.ID, s.Role, s.Title)
		}
		fmt.Fprintln(w)

		cat := app.Wizard.Catalog()
		fmt.Fprintln(w, "KIND\tID\tNAME")
		for _, o := range cat.Inputs {
			fmt.Fprintf(w, "input\t%s\t%s\n", o.ID, o.Name)
		}
		for _, o := range cat.Outputs {
			fmt.Fprintf(w, "output\t%s\t%s\n", o.ID, o.Name)
		}
		return w.Flush()
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema <input> <output>",
	Short: "Print the configuration fields required by an input and output pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		fields := app.Wizard.Derive(args[0], args[1])
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fields)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FIELD\tKIND\tREQUIRED\tLABEL")
		for _, f := range fields {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", f.Name, f.Kind, f.Required, f.DisplayName())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().Bool("json", false, "Print the fields as JSON")
}

