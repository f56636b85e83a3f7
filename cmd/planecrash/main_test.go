package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// incidentHTML is a minimal incident page with a discarded header row.
const incidentHTML = `<html><body><table>
<tr><td>Field</td><td>Value</td></tr>
<tr><td>Date:</td><td>%s</td></tr>
<tr><td>Location:</td><td>%s</td></tr>
</table></body></html>`

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

// buildMirror writes a two-year mirror with three incident pages and
// returns the database page path.
func buildMirror(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	db := writeFile(t, dir, "database.htm", `<html><body>
		<a href="1922/1922.htm">1922</a>
		<a href="1923/1923.htm">1923</a>
		<a href="index.html">Home</a>
	</body></html>`)
	writeFile(t, dir, "1922/1922.htm", `<html><body>
		<a href="1922-1.htm">one</a>
		<a href="1922-2.htm">two</a>
		<a href="../index.html">Home</a>
	</body></html>`)
	writeFile(t, dir, "1923/1923.htm", `<html><body>
		<a href="1923-1.htm">one</a>
	</body></html>`)
	writeFile(t, dir, "1922/1922-1.htm", incidentPage("June 07 1922", "Paris France"))
	writeFile(t, dir, "1922/1922-2.htm", incidentPage("August 22 1922", "Kent England"))
	writeFile(t, dir, "1923/1923-1.htm", incidentPage("May 14 1923", "Berlin Germany"))
	return filepath.ToSlash(db)
}

func incidentPage(date, location string) string {
	return fmt.Sprintf(incidentHTML, date, location)
}

// emptyConfig writes a config file that only disables the ledger, so tests
// never pick up a .planecrash from the working or home directory.
func emptyConfig(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), ".planecrash", "ledger: false\n")
}

// quietLogger returns a logger that discards everything.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// readFile returns the content of path.
func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
