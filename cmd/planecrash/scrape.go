package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/planecrash/internal/config"
	"github.com/nao1215/planecrash/internal/crawler"
	"github.com/nao1215/planecrash/internal/database"
	"github.com/nao1215/planecrash/internal/datafile"
	applog "github.com/nao1215/planecrash/internal/log"
	"github.com/nao1215/planecrash/internal/model"
	"github.com/nao1215/planecrash/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [database-page]",
		Short: "Extract every incident page of the mirror into the data file",
		Long: `Scrape walks the mirrored crash database and appends one row per
incident page to the data file.

The walk starts at the database page, follows every link to a year page
and from each year page every link to an incident page. Links to the index
pages, fragments, absolute paths and URLs with a scheme are never followed.
The first table of each incident page is read as label/value rows; the
header row is discarded and the remaining labels become the data file
columns. The column header is written once, when the data file is empty.

By default the first failing page stops the scrape. With --keep-going the
failure is logged, the page is skipped and the command exits non-zero at
the end.

Examples:
  # Scrape the default mirror location into all_data.csv
  planecrash scrape

  # Scrape an explicit database page into a custom file
  planecrash scrape ../wget_planecrashinfo/database.htm -o crashes.csv

  # Only a few years, skipping broken pages
  planecrash scrape --year 1922 --year 1923 --keep-going

  # Refuse incident pages that repeat a label
  planecrash scrape --duplicates reject

Configuration file (.planecrash) example:
  database: ../wget_planecrashinfo/database.htm
  output: all_data.csv
  keep_going: true
  years: ["1920", "1921"]`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScrapeCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultOutputPath,
		"Data file the rows are appended to")
	cmd.Flags().BoolP("keep-going", "k", false,
		"Log failed incident pages and continue instead of stopping")
	cmd.Flags().StringSliceP("year", "y", nil,
		"Only scrape these year directories (repeatable)")
	cmd.Flags().Bool("strict-links", false,
		"Only follow links that look like year or incident pages")
	cmd.Flags().String("duplicates", config.DefaultDuplicatePolicy,
		"Handling of repeated labels on a page: last-wins or reject")
	cmd.Flags().Bool("no-ledger", false,
		"Do not record the run in the SQLite ledger")
	cmd.Flags().String("ledger-dir", "",
		"Directory of the SQLite ledger (default: XDG data directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .planecrash in current or home directory)")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildScrapeConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg, filepath.Dir(cfg.DatabasePage))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runScrape(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogJSONFlag retrieves the log-json flag from the command or its parent.
func getLogJSONFlag(cmd *cobra.Command) bool {
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		logJSON, err = cmd.Root().PersistentFlags().GetBool("log-json")
		if err != nil {
			return false
		}
	}
	return logJSON
}

// loadConfig builds a Config from the defaults, the configuration file and
// the global flags. Command specific flags are applied by the caller.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = getLogJSONFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly requested file must exist. Otherwise a missing file
	// just means the defaults apply.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// buildScrapeConfig creates a Config for the scrape command. Flags given on
// the command line override the configuration file.
func buildScrapeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if len(args) > 0 {
		cfg.DatabasePage = args[0]
	}

	if flags.Changed("output") {
		if cfg.OutputPath, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("keep-going") {
		if cfg.KeepGoing, err = flags.GetBool("keep-going"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("year") {
		if cfg.Years, err = flags.GetStringSlice("year"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("strict-links") {
		if cfg.StrictLinks, err = flags.GetBool("strict-links"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("duplicates") {
		if cfg.DuplicatePolicy, err = flags.GetString("duplicates"); err != nil {
			return nil, err
		}
	}

	noLedger, err := flags.GetBool("no-ledger")
	if err != nil {
		return nil, err
	}
	if noLedger {
		cfg.UseLedger = false
	}

	if flags.Changed("ledger-dir") {
		if cfg.DBDir, err = flags.GetString("ledger-dir"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on the logging settings.
// Paths under root are logged relative to it.
func setupLogger(cfg *config.Config, root string) *slog.Logger {
	if cfg.LogJSON {
		return applog.NewJSONLogger(os.Stderr, cfg.Verbose, root)
	}
	return applog.NewLogger(os.Stderr, cfg.Verbose, root)
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// runScrape walks the mirror and appends every incident page to the data
// file. A summary is written to out.
func runScrape(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	policy, err := model.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	writer, err := datafile.Open(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}

	logger.Info("starting scrape",
		"database", cfg.DatabasePage,
		"output", cfg.OutputPath,
		"keepGoing", cfg.KeepGoing,
		"years", cfg.Years,
		"ledger", cfg.UseLedger,
	)

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineDuplicatePolicy(policy),
		pipeline.WithPipelineLogger(logger),
	}

	var (
		ledger *database.Ledger
		runID  int64
	)
	if cfg.UseLedger {
		ledger, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer ledger.Close()

		runID, err = ledger.StartRun(ctx, cfg.DatabasePage, cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to start ledger run: %w", err)
		}
		logger.Info("ledger run started", "run", runID, "file", ledger.Path())
		configOpts = append(configOpts, pipeline.WithPipelineLedger(ledger, runID))
	}

	p := pipeline.DefaultPipeline(writer,
		[]pipeline.Option{
			pipeline.WithLogger(logger),
			pipeline.WithContinueOnError(false),
		},
		configOpts...,
	)

	walker := crawler.NewWalker(
		crawler.WithLinkFilter(crawler.NewLinkFilter(
			crawler.WithIndexPages(cfg.IndexPages...),
			crawler.WithStrictLinks(cfg.StrictLinks),
		)),
		crawler.WithYears(cfg.Years...),
		crawler.WithKeepGoing(cfg.KeepGoing),
		crawler.WithLogger(logger),
	)

	written := 0
	startTime := time.Now()
	walkErr := walker.Walk(ctx, cfg.DatabasePage, func(ctx context.Context, path, year string) error {
		if err := p.Execute(ctx, model.NewIncident(path, year)); err != nil {
			return err
		}
		written++
		return nil
	})
	elapsed := time.Since(startTime)

	if ledger != nil {
		// The run must be closed even when ctx was cancelled.
		finishCtx := context.WithoutCancel(ctx)
		if err := ledger.FinishRun(finishCtx, runID, runStatus(walkErr), walkErr); err != nil {
			logger.Error("failed to finish ledger run", "run", runID, "error", err)
		}
	}

	printScrapeSummary(out, cfg, walker.Stats(), written, runID, elapsed)

	return walkErr
}

// runStatus maps the walk result to a ledger run status.
func runStatus(err error) database.RunStatus {
	switch {
	case err == nil:
		return database.RunCompleted
	case errors.Is(err, context.Canceled):
		return database.RunInterrupted
	default:
		return database.RunFailed
	}
}

// printScrapeSummary writes a short human-readable account of the walk.
func printScrapeSummary(out io.Writer, cfg *config.Config, stats crawler.Stats, written int, runID int64, elapsed time.Duration) {
	fmt.Fprintf(out, "Scraped %d incident pages from %d year pages into %s in %s\n",
		written, stats.YearPages, cfg.OutputPath, elapsed.Round(time.Millisecond))

	if stats.SkippedLinks > 0 {
		fmt.Fprintf(out, "Skipped %d links\n", stats.SkippedLinks)
	}

	if len(stats.Failures) > 0 {
		fmt.Fprintf(out, "Failed pages (%d):\n", len(stats.Failures))
		for _, f := range stats.Failures {
			fmt.Fprintf(out, "  %s: %v\n", f.Path, f.Err)
		}
	}

	if runID != 0 {
		fmt.Fprintf(out, "Ledger run: %d (see 'planecrash history --run %d')\n", runID, runID)
	}
}
