package cli

import (
	"github.com/spf13/cobra"
)

type LoadOptions struct {
	SourcesFile string
	ChunkSize   int
}

func NewLoadCmd() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Run one pipeline run over the configured source files",
		RunE: func(c *cobra.Command, args []string) error {
			return runLoad(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SourcesFile, "sources", "s", "", "Path to sources file (default from SOURCES_FILE)")
	cmd.Flags().IntVarP(&opts.ChunkSize, "chunk-size", "c", 0, "Rows per chunk (default from CHUNK_SIZE)")
	return cmd
}

func NewIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Ensure the query-serving indexes exist",
		RunE: func(c *cobra.Command, args []string) error {
			return runIndexes()
		},
	}
}

func NewScheduleCmd() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline daily at the configured time",
		RunE: func(c *cobra.Command, args []string) error {
			return runSchedule(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SourcesFile, "sources", "s", "", "Path to sources file (default from SOURCES_FILE)")
	cmd.Flags().IntVarP(&opts.ChunkSize, "chunk-size", "c", 0, "Rows per chunk (default from CHUNK_SIZE)")
	return cmd
}

func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Print per-source counts, revenue and uniqueness stats",
		RunE: func(c *cobra.Command, args []string) error {
			return runVerify()
		},
	}
}

func NewCleanupCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Drop the records collection (maintenance only)",
		RunE: func(c *cobra.Command, args []string) error {
			return runCleanup(yes)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm dropping the collection")
	return cmd
}
