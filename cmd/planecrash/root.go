package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for planecrash.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planecrash",
		Short: "Scrape a mirrored plane crash database into a data file",
		Long: `planecrash walks a locally mirrored copy of the plane crash database
(database page -> year pages -> incident pages), extracts the two-column
accident table of every incident page and appends it as one row to a
comma-delimited data file.

The plot command counts the rows of a data file by year and renders the
series as a terminal chart, Markdown (with Mermaid charts) or JSON.

Each scrape is recorded in a SQLite ledger under the XDG data directory;
use the history command to inspect past runs.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewPlotCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
