package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestPathHandler_RewritesPathKeys tests that path attributes become root-relative.
func TestPathHandler_RewritesPathKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{
			name:  "path below root",
			key:   "path",
			value: "../mirror/1922/1922-1.htm",
			want:  "path=1922/1922-1.htm",
		},
		{
			name:  "key with _path suffix",
			key:   "year_page_path",
			value: "../mirror/1922/1922.htm",
			want:  "year_page_path=1922/1922.htm",
		},
		{
			name:  "path outside root is unchanged",
			key:   "path",
			value: "/elsewhere/all_data.csv",
			want:  "path=/elsewhere/all_data.csv",
		},
		{
			name:  "non-path key is unchanged",
			key:   "href",
			value: "../mirror/1922/1922.htm",
			want:  "href=../mirror/1922/1922.htm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, true, "../mirror")
			logger.Info("visit", tt.key, tt.value)

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected output to contain %q, got %q", tt.want, buf.String())
			}
		})
	}
}

// TestPathHandler_EmptyRoot tests that an empty root leaves values alone.
func TestPathHandler_EmptyRoot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true, "")
	logger.Info("visit", "path", "../mirror/1922/1922.htm")

	if !strings.Contains(buf.String(), "path=../mirror/1922/1922.htm") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

// TestPathHandler_WithAttrsAndGroups tests rewriting through WithAttrs and groups.
func TestPathHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()

	t.Run("WithAttrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true, "/data/mirror").With("page", "/data/mirror/database.htm")
		logger.Info("start")

		if !strings.Contains(buf.String(), "page=database.htm") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("group attribute", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true, "/data/mirror")
		logger.Info("start", slog.Group("walk", slog.String("path", "/data/mirror/1990/1990.htm")))

		if !strings.Contains(buf.String(), "walk.path=1990/1990.htm") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// TestNewLogger_Levels tests verbose and quiet levels.
func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	t.Run("quiet logger drops info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false, "")
		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("info message should be filtered in quiet mode")
		}
		if !strings.Contains(out, "shown") {
			t.Error("warn message should be logged in quiet mode")
		}
	})

	t.Run("verbose logger keeps debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true, "")
		logger.Debug("detail")

		if !strings.Contains(buf.String(), "detail") {
			t.Error("debug message should be logged in verbose mode")
		}
	})
}

// TestNewJSONLogger tests JSON output with rewritten paths.
func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true, "/m")
	logger.Info("visit", "path", "/m/2001/2001-3.htm")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["path"] != "2001/2001-3.htm" {
		t.Errorf("path = %v", entry["path"])
	}
}
