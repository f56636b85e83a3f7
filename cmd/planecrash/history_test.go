package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/planecrash/internal/database"
)

// scrapeIntoLedger scrapes a fixture mirror twice into a fresh ledger and
// returns the ledger directory and the database page path.
func scrapeIntoLedger(t *testing.T) (string, string) {
	t.Helper()

	db := buildMirror(t)
	cfg := scrapeConfig(t, db)
	for i := 0; i < 2; i++ {
		if err := runScrape(context.Background(), cfg, quietLogger(), &bytes.Buffer{}); err != nil {
			t.Fatalf("scrape %d failed: %v", i+1, err)
		}
	}
	return cfg.DBDir, db
}

// runHistory executes the history command with args and returns its stdout.
func runHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"history"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// TestHistoryCmd tests listing runs and pages from the ledger.
func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists runs newest first", func(t *testing.T) {
		t.Parallel()
		dir, _ := scrapeIntoLedger(t)

		out, err := runHistory(t, "--ledger-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Scrape runs (2)") {
			t.Errorf("expected two runs:\n%s", out)
		}
		if strings.Count(out, string(database.RunCompleted)) != 2 {
			t.Errorf("expected two completed runs:\n%s", out)
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()
		dir, _ := scrapeIntoLedger(t)

		out, err := runHistory(t, "--ledger-dir", dir, "--limit", "1", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var runs []database.Run
		if err := json.Unmarshal([]byte(out), &runs); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(runs) != 1 || runs[0].ID != 2 {
			t.Errorf("expected only run 2, got %+v", runs)
		}
	})

	t.Run("pages of a run", func(t *testing.T) {
		t.Parallel()
		dir, _ := scrapeIntoLedger(t)

		out, err := runHistory(t, "--ledger-dir", dir, "--run", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Run 1: completed", "Pages (3)", "1922-1.htm", "1923-1.htm"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("history of a page", func(t *testing.T) {
		t.Parallel()
		dir, db := scrapeIntoLedger(t)
		page := filepath.ToSlash(filepath.Join(filepath.Dir(db), "1922", "1922-2.htm"))

		out, err := runHistory(t, "--ledger-dir", dir, "--page", page, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var pages []database.PageEntry
		if err := json.Unmarshal([]byte(out), &pages); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(pages) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(pages))
		}
		if pages[0].RunID != 2 || pages[1].RunID != 1 {
			t.Errorf("expected newest first, got runs %d, %d", pages[0].RunID, pages[1].RunID)
		}
		if pages[0].Hash != pages[1].Hash {
			t.Error("expected unchanged page to keep its hash")
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()
		dir, _ := scrapeIntoLedger(t)

		_, err := runHistory(t, "--ledger-dir", dir, "--run", "42")
		if !errors.Is(err, database.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("missing ledger", func(t *testing.T) {
		t.Parallel()

		_, err := runHistory(t, "--ledger-dir", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "ledger not found") {
			t.Errorf("expected ledger not found error, got %v", err)
		}
	})

	t.Run("run and page are exclusive", func(t *testing.T) {
		t.Parallel()

		_, err := runHistory(t, "--ledger-dir", t.TempDir(), "--run", "1", "--page", "x.htm")
		if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
			t.Errorf("expected mutually exclusive error, got %v", err)
		}
	})
}
