package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/planecrash/internal/aggregate"
	"github.com/nao1215/planecrash/internal/config"
	"github.com/nao1215/planecrash/internal/model"
	"github.com/nao1215/planecrash/internal/report"
	"github.com/spf13/cobra"
)

// NewPlotCmd creates the plot command.
func NewPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [data-file]",
		Short: "Count the incidents of a data file by year and plot them",
		Long: `Plot reads the date column of a data file, turns every value into a
calendar year and counts the rows per year.

Dates are free text ("September 17, 1912", "07/12/1913", ...). Values that
cannot be parsed are skipped with a warning and listed in the report; with
--strict-dates the first such value is an error.

The default output is a terminal table with a bar per year. --markdown
writes a Markdown report with Mermaid line and pie charts, --json writes the
series as JSON. When a Markdown or JSON report goes to a file with -o, the
terminal table is still printed unless --no-table is given.

Examples:
  # Plot all_data.csv in the terminal
  planecrash plot

  # Write a Markdown report
  planecrash plot all_data.csv --markdown -o report/crashes.md

  # JSON for another tool
  planecrash plot --json | jq '.points'`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPlotCmd,
	}

	cmd.Flags().String("column", config.DefaultDateColumn,
		"Data file column holding the incident date")
	cmd.Flags().Bool("strict-dates", false,
		"Fail on the first date that cannot be parsed")
	cmd.Flags().String("title", "",
		"Title of the Markdown report")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .planecrash in current or home directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-table", false,
		"Do not print the terminal table when a report is written with -o")

	return cmd
}

// runPlotCmd executes the plot command.
func runPlotCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildPlotConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	title, err := cmd.Flags().GetString("title")
	if err != nil {
		return err
	}

	noTable, err := cmd.Flags().GetBool("no-table")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg, filepath.Dir(cfg.OutputPath))

	series, err := aggregate.FromDataFile(cfg.OutputPath, cfg.DateColumn,
		aggregate.WithStrict(cfg.StrictDates),
		aggregate.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to aggregate %s: %w", cfg.OutputPath, err)
	}

	logger.Info("aggregated data file",
		"file", cfg.OutputPath,
		"years", len(series.Points),
		"incidents", series.Total(),
		"skipped", len(series.Skipped),
	)

	return outputReport(cfg, series, title, !noTable, cmd.OutOrStdout())
}

// buildPlotConfig creates a Config for the plot command. The data file is
// the positional argument, falling back to the configured output path.
func buildPlotConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if len(args) > 0 {
		cfg.OutputPath = args[0]
	}

	if flags.Changed("column") {
		if cfg.DateColumn, err = flags.GetString("column"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("strict-dates") {
		if cfg.StrictDates, err = flags.GetBool("strict-dates"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}

	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}

	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	// The ledger is not used by plot.
	cfg.UseLedger = false

	return cfg, nil
}

// outputReport renders the series in the configured format, to the report
// file when one is set and to stdout otherwise. With table set, a Markdown or
// JSON report file is accompanied by the terminal table on stdout.
func outputReport(cfg *config.Config, series *model.Series, title string, table bool, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		var opts []report.MarkdownWriterOption
		if title != "" {
			opts = append(opts, report.WithTitle(title))
		}
		writer = report.NewMarkdownWriter(output, opts...)
	default:
		writer = report.NewTableWriter(output)
	}

	if table && cfg.ReportFile != "" && (cfg.JSONReport || cfg.MarkdownReport) {
		writer = report.NewMultiWriter(writer, report.NewTableWriter(stdout))
	}

	if _, err := writer.Write(series); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
