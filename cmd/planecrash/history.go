package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nao1215/planecrash/internal/config"
	"github.com/nao1215/planecrash/internal/database"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed when --limit is not set.
const defaultHistoryLimit = 20

// historyTimeFormat is the timestamp layout used in history tables.
const historyTimeFormat = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
// This command reads past scrape runs from the ledger.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past scrape runs recorded in the ledger",
		Long: `History displays the scrape runs stored in the SQLite ledger.

Without flags the most recent runs are listed with their status and page
counts. --run lists the incident pages of one run, including the content
hash of each page and the error of failed pages. --page lists every run
that ingested the given incident page, which shows when its content changed.

Examples:
  # List the latest runs
  planecrash history

  # Pages of run 3
  planecrash history --run 3

  # Every ingestion of one incident page
  planecrash history --page ../wget_planecrashinfo/1922/1922-2.htm

  # Output in JSON format
  planecrash history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("run", "r", 0,
		"List the pages of the run with this ID")
	cmd.Flags().StringP("page", "p", "",
		"List every ingestion of this incident page")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list")
	cmd.Flags().String("ledger-dir", "",
		"Directory of the SQLite ledger (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output history in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	runID, err := flags.GetInt64("run")
	if err != nil {
		return err
	}
	pagePath, err := flags.GetString("page")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("ledger-dir")
	if err != nil {
		return err
	}

	// Validate before opening the ledger so a bad invocation never
	// creates an empty database file.
	if runID != 0 && pagePath != "" {
		return errors.New("--run and --page are mutually exclusive")
	}
	if limit <= 0 {
		return fmt.Errorf("invalid --limit %d: must be positive", limit)
	}

	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	ledger, err := database.Open(dbDir, database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return err
	}
	defer ledger.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case runID != 0:
		return showRun(ctx, out, ledger, runID, jsonOutput)
	case pagePath != "":
		return showPageHistory(ctx, out, ledger, pagePath, jsonOutput)
	default:
		return listRuns(ctx, out, ledger, limit, jsonOutput)
	}
}

// listRuns lists the most recent runs.
func listRuns(ctx context.Context, out io.Writer, ledger *database.Ledger, limit int, jsonOutput bool) error {
	runs, err := ledger.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the ledger.")
		fmt.Fprintln(out, "\nUse 'planecrash scrape' to scrape the mirror.")
		return nil
	}

	t := newHistoryTable(out, fmt.Sprintf("Scrape runs (%d)", len(runs)))
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.AppendHeader(table.Row{"ID", "Started", "Duration", "Status", "Pages", "Failed", "Output"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			formatTime(r.StartedAt),
			formatDuration(r.StartedAt, r.FinishedAt),
			r.Status,
			r.Pages,
			r.Failed,
			r.Output,
		})
	}
	t.Render()

	fmt.Fprintln(out, "\nUse 'planecrash history --run <id>' to see the pages of a run.")
	return nil
}

// showRun lists the pages of one run.
func showRun(ctx context.Context, out io.Writer, ledger *database.Ledger, runID int64, jsonOutput bool) error {
	run, err := ledger.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", runID, err)
	}

	pages, err := ledger.PagesForRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get pages of run %d: %w", runID, err)
	}

	if jsonOutput {
		return writeJSON(out, struct {
			Run   *database.Run        `json:"run"`
			Pages []database.PageEntry `json:"pages"`
		}{run, pages})
	}

	fmt.Fprintf(out, "Run %d: %s (%s)\n", run.ID, run.Status, formatTime(run.StartedAt))
	fmt.Fprintf(out, "  database: %s\n", run.DatabasePage)
	fmt.Fprintf(out, "  output:   %s\n", run.Output)
	if run.Error != "" {
		fmt.Fprintf(out, "  error:    %s\n", run.Error)
	}
	fmt.Fprintln(out)

	renderPages(out, fmt.Sprintf("Pages (%d)", len(pages)), pages)
	return nil
}

// showPageHistory lists every ingestion of one page, newest first.
func showPageHistory(ctx context.Context, out io.Writer, ledger *database.Ledger, pagePath string, jsonOutput bool) error {
	pages, err := ledger.PageHistory(ctx, pagePath)
	if err != nil {
		return fmt.Errorf("failed to get history of %s: %w", pagePath, err)
	}

	if jsonOutput {
		return writeJSON(out, pages)
	}

	if len(pages) == 0 {
		fmt.Fprintf(out, "No history found for %s\n", pagePath)
		return nil
	}

	renderPages(out, pagePath, pages)
	return nil
}

// renderPages prints page entries as a table.
func renderPages(out io.Writer, title string, pages []database.PageEntry) {
	t := newHistoryTable(out, title)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.AppendHeader(table.Row{"Run", "Path", "Year", "Fields", "Hash", "Status"})
	for _, p := range pages {
		status := "ok"
		if !p.OK {
			status = "failed: " + p.Error
		}
		t.AppendRow(table.Row{p.RunID, p.Path, p.Year, p.Fields, shortHash(p.Hash), status})
	}
	t.Render()
}

func newHistoryTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(historyTimeFormat)
}

func formatDuration(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return "-"
	}
	return end.Sub(start).Round(time.Second).String()
}

// shortHash truncates a content hash for display.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
