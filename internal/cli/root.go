// Package cli wires the command-line interface using Cobra.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "retailsync",
		Short: "retailsync - CSV to MongoDB sales ETL",
		Long: `retailsync loads retail transaction CSV extracts into MongoDB as a unified
document collection. Loads are chunked, deduplicated and idempotent, so a
daily re-run replaces documents instead of duplicating them.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(
		NewLoadCmd(),
		NewIndexesCmd(),
		NewScheduleCmd(),
		NewVerifyCmd(),
		NewCleanupCmd(),
	)

	return rootCmd
}
