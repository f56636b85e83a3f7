package crawler

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/planecrash/internal/model"
)

// parseFixture parses inline HTML as a page.
func parseFixture(t *testing.T, content string) *model.Page {
	t.Helper()

	page, err := ParsePage("fixture.htm", []byte(content))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return page
}

// writeFile writes content below dir, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// quietLogger returns a logger that discards everything.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
