package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nao1215/planecrash/internal/config"
	"github.com/nao1215/planecrash/internal/crawler"
	"github.com/nao1215/planecrash/internal/database"
	"github.com/nao1215/planecrash/internal/datafile"
)

// TestNewScrapeCmd tests the scrape command creation.
func TestNewScrapeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScrapeCmd()

	if cmd.Use != "scrape [database-page]" {
		t.Errorf("expected use 'scrape [database-page]', got %q", cmd.Use)
	}

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "output", shorthand: "o", defValue: config.DefaultOutputPath},
		{name: "keep-going", shorthand: "k", defValue: "false"},
		{name: "year", shorthand: "y", defValue: "[]"},
		{name: "strict-links", defValue: "false"},
		{name: "duplicates", defValue: config.DefaultDuplicatePolicy},
		{name: "no-ledger", defValue: "false"},
		{name: "ledger-dir", defValue: ""},
		{name: "config", shorthand: "c", defValue: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestBuildScrapeConfig tests the merge of defaults, config file and flags.
func TestBuildScrapeConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cmd := NewScrapeCmd()
		if err := cmd.ParseFlags([]string{"-c", emptyConfig(t)}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildScrapeConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DatabasePage != config.DefaultDatabasePage {
			t.Errorf("DatabasePage = %q, want %q", cfg.DatabasePage, config.DefaultDatabasePage)
		}
		if cfg.OutputPath != config.DefaultOutputPath {
			t.Errorf("OutputPath = %q, want %q", cfg.OutputPath, config.DefaultOutputPath)
		}
		if cfg.UseLedger {
			t.Error("expected ledger disabled by the config file")
		}
	})

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()
		cfgPath := writeFile(t, t.TempDir(), "planecrash.yaml", strings.Join([]string{
			"database: mirror/database.htm",
			"output: from-file.csv",
			"keep_going: true",
			"duplicates: reject",
			`years: ["1920"]`,
		}, "\n"))

		cmd := NewScrapeCmd()
		err := cmd.ParseFlags([]string{
			"-c", cfgPath,
			"-o", "from-flag.csv",
			"--year", "1922", "--year", "1923",
			"--no-ledger",
		})
		if err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildScrapeConfig(cmd, []string{"other/database.htm"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DatabasePage != "other/database.htm" {
			t.Errorf("DatabasePage = %q, want positional argument", cfg.DatabasePage)
		}
		if cfg.OutputPath != "from-flag.csv" {
			t.Errorf("OutputPath = %q, want from-flag.csv", cfg.OutputPath)
		}
		if !reflect.DeepEqual(cfg.Years, []string{"1922", "1923"}) {
			t.Errorf("Years = %v, want [1922 1923]", cfg.Years)
		}
		if !cfg.KeepGoing {
			t.Error("expected keep_going from config file")
		}
		if cfg.DuplicatePolicy != "reject" {
			t.Errorf("DuplicatePolicy = %q, want reject", cfg.DuplicatePolicy)
		}
		if cfg.UseLedger {
			t.Error("expected --no-ledger to disable the ledger")
		}
	})

	t.Run("explicit missing config file", func(t *testing.T) {
		t.Parallel()
		cmd := NewScrapeCmd()
		missing := filepath.Join(t.TempDir(), "missing.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		_, err := buildScrapeConfig(cmd, nil)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// scrapeConfig returns a config scraping db into a temp data file.
func scrapeConfig(t *testing.T, db string) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.DatabasePage = db
	cfg.OutputPath = filepath.Join(t.TempDir(), "all_data.csv")
	cfg.DBDir = t.TempDir()
	return cfg
}

// TestRunScrape tests complete scrapes of a fixture mirror.
func TestRunScrape(t *testing.T) {
	t.Parallel()

	t.Run("writes header once across runs", func(t *testing.T) {
		t.Parallel()
		cfg := scrapeConfig(t, buildMirror(t))
		cfg.UseLedger = false

		for i := 0; i < 2; i++ {
			var out bytes.Buffer
			if err := runScrape(context.Background(), cfg, quietLogger(), &out); err != nil {
				t.Fatalf("run %d: unexpected error: %v", i+1, err)
			}
			if !strings.Contains(out.String(), "Scraped 3 incident pages from 2 year pages") {
				t.Errorf("run %d: unexpected summary %q", i+1, out.String())
			}
		}

		want := "Date:,Location:\n" +
			"June 07 1922,Paris France\n" +
			"August 22 1922,Kent England\n" +
			"May 14 1923,Berlin Germany\n" +
			"June 07 1922,Paris France\n" +
			"August 22 1922,Kent England\n" +
			"May 14 1923,Berlin Germany\n"
		if got := readFile(t, cfg.OutputPath); got != want {
			t.Errorf("data file =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("records the run in the ledger", func(t *testing.T) {
		t.Parallel()
		cfg := scrapeConfig(t, buildMirror(t))

		var out bytes.Buffer
		if err := runScrape(context.Background(), cfg, quietLogger(), &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "Ledger run: 1") {
			t.Errorf("expected ledger run in summary, got %q", out.String())
		}

		ledger, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open ledger: %v", err)
		}
		defer ledger.Close()

		run, err := ledger.GetRun(context.Background(), 1)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if run.Status != database.RunCompleted {
			t.Errorf("Status = %q, want completed", run.Status)
		}
		if run.Pages != 3 || run.Failed != 0 {
			t.Errorf("Pages/Failed = %d/%d, want 3/0", run.Pages, run.Failed)
		}

		pages, err := ledger.PagesForRun(context.Background(), 1)
		if err != nil {
			t.Fatalf("PagesForRun failed: %v", err)
		}
		if len(pages) != 3 {
			t.Fatalf("expected 3 pages, got %d", len(pages))
		}
		for _, p := range pages {
			if !p.OK || p.Fields != 2 || p.Hash == "" {
				t.Errorf("unexpected page entry %+v", p)
			}
		}
	})

	t.Run("stops on the first broken page", func(t *testing.T) {
		t.Parallel()
		db := buildMirror(t)
		writeFile(t, filepath.Dir(db), "1922/1922-2.htm", "<html><body><p>gone</p></body></html>")
		cfg := scrapeConfig(t, db)
		cfg.UseLedger = false

		err := runScrape(context.Background(), cfg, quietLogger(), &bytes.Buffer{})
		if !errors.Is(err, crawler.ErrNoTable) {
			t.Fatalf("expected ErrNoTable, got %v", err)
		}
		if path, ok := crawler.PathOf(err); !ok || filepath.Base(path) != "1922-2.htm" {
			t.Errorf("expected error to name 1922-2.htm, got %q", path)
		}

		col, err := datafile.ReadColumn(cfg.OutputPath, "Date:")
		if err != nil {
			t.Fatalf("ReadColumn failed: %v", err)
		}
		if !reflect.DeepEqual(col, []string{"June 07 1922"}) {
			t.Errorf("data file dates = %v, want only the first page", col)
		}
	})

	t.Run("keep going records failures", func(t *testing.T) {
		t.Parallel()
		db := buildMirror(t)
		writeFile(t, filepath.Dir(db), "1922/1922-2.htm", "<html><body><p>gone</p></body></html>")
		cfg := scrapeConfig(t, db)
		cfg.KeepGoing = true

		var out bytes.Buffer
		err := runScrape(context.Background(), cfg, quietLogger(), &out)
		if !errors.Is(err, crawler.ErrPagesFailed) {
			t.Fatalf("expected ErrPagesFailed, got %v", err)
		}
		if !strings.Contains(out.String(), "Failed pages (1)") {
			t.Errorf("expected failure list in summary, got %q", out.String())
		}

		col, err := datafile.ReadColumn(cfg.OutputPath, "Date:")
		if err != nil {
			t.Fatalf("ReadColumn failed: %v", err)
		}
		if !reflect.DeepEqual(col, []string{"June 07 1922", "May 14 1923"}) {
			t.Errorf("data file dates = %v", col)
		}

		ledger, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open ledger: %v", err)
		}
		defer ledger.Close()

		run, err := ledger.GetRun(context.Background(), 1)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if run.Status != database.RunFailed || run.Pages != 3 || run.Failed != 1 {
			t.Errorf("run = %+v, want failed with 3 pages and 1 failure", run)
		}
	})

	t.Run("schema drift is an error", func(t *testing.T) {
		t.Parallel()
		db := buildMirror(t)
		writeFile(t, filepath.Dir(db), "1923/1923-1.htm", `<html><body><table>
<tr><td>Field</td><td>Value</td></tr>
<tr><td>Date:</td><td>May 14 1923</td></tr>
<tr><td>Operator:</td><td>Aero Lloyd</td></tr>
</table></body></html>`)
		cfg := scrapeConfig(t, db)
		cfg.UseLedger = false

		err := runScrape(context.Background(), cfg, quietLogger(), &bytes.Buffer{})
		if !errors.Is(err, datafile.ErrSchemaMismatch) {
			t.Fatalf("expected ErrSchemaMismatch, got %v", err)
		}
	})

	t.Run("schema drift stops a keep going scrape", func(t *testing.T) {
		t.Parallel()
		db := buildMirror(t)
		writeFile(t, filepath.Dir(db), "1922/1922-2.htm", `<html><body><table>
<tr><td>Field</td><td>Value</td></tr>
<tr><td>Date:</td><td>August 22 1922</td></tr>
<tr><td>Operator:</td><td>Daimler Airway</td></tr>
</table></body></html>`)
		cfg := scrapeConfig(t, db)
		cfg.UseLedger = false
		cfg.KeepGoing = true

		err := runScrape(context.Background(), cfg, quietLogger(), &bytes.Buffer{})
		if !errors.Is(err, datafile.ErrSchemaMismatch) {
			t.Fatalf("expected ErrSchemaMismatch, got %v", err)
		}
		if errors.Is(err, crawler.ErrPagesFailed) {
			t.Errorf("schema drift must not be reported as a page failure: %v", err)
		}
		if _, ok := crawler.PathOf(err); ok {
			t.Errorf("schema drift must not carry a page path: %v", err)
		}
		want := "Date:,Location:\nJune 07 1922,Paris France\n"
		if got := readFile(t, cfg.OutputPath); got != want {
			t.Errorf("data file = %q, want %q", got, want)
		}
	})

	t.Run("year filter", func(t *testing.T) {
		t.Parallel()
		cfg := scrapeConfig(t, buildMirror(t))
		cfg.UseLedger = false
		cfg.Years = []string{"1923"}

		if err := runScrape(context.Background(), cfg, quietLogger(), &bytes.Buffer{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "Date:,Location:\nMay 14 1923,Berlin Germany\n"
		if got := readFile(t, cfg.OutputPath); got != want {
			t.Errorf("data file = %q, want %q", got, want)
		}
	})

	t.Run("cancelled context stops before the first year page", func(t *testing.T) {
		t.Parallel()
		cfg := scrapeConfig(t, buildMirror(t))
		cfg.UseLedger = false

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out bytes.Buffer
		err := runScrape(ctx, cfg, quietLogger(), &out)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if _, statErr := os.Stat(cfg.OutputPath); !os.IsNotExist(statErr) {
			t.Errorf("expected no data file, stat returned %v", statErr)
		}
		if !strings.Contains(out.String(), "Scraped 0 incident pages from 0 year pages") {
			t.Errorf("unexpected summary %q", out.String())
		}
	})
}

// TestScrapeCmd_Execute runs the scrape command through cobra.
func TestScrapeCmd_Execute(t *testing.T) {
	t.Parallel()

	db := buildMirror(t)
	output := filepath.Join(t.TempDir(), "out", "crashes.csv")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"scrape", db, "-o", output, "-c", emptyConfig(t), "--strict-links"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	col, err := datafile.ReadColumn(output, "Location:")
	if err != nil {
		t.Fatalf("ReadColumn failed: %v", err)
	}
	want := []string{"Paris France", "Kent England", "Berlin Germany"}
	if !reflect.DeepEqual(col, want) {
		t.Errorf("locations = %v, want %v", col, want)
	}
}

// TestRunStatus tests the mapping of walk results to ledger statuses.
func TestRunStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want database.RunStatus
	}{
		{name: "success", err: nil, want: database.RunCompleted},
		{name: "cancelled", err: fmt.Errorf("walk: %w", context.Canceled), want: database.RunInterrupted},
		{name: "page failure", err: crawler.ErrNoTable, want: database.RunFailed},
		{name: "keep going failures", err: crawler.ErrPagesFailed, want: database.RunFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := runStatus(tt.err); got != tt.want {
				t.Errorf("runStatus(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
