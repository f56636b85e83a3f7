package log

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// pathKeys are attribute keys whose string values are filesystem paths.
var pathKeys = map[string]bool{
	"path":      true,
	"page":      true,
	"database":  true,
	"year_page": true,
	"output":    true,
	"file":      true,
}

// PathHandler wraps an slog.Handler and shortens path attributes.
// Values under a path key (see pathKeys, or any key ending in "_path") that
// lie below root are replaced by their root-relative form. Other values are
// passed through untouched.
type PathHandler struct {
	handler slog.Handler
	root    string
}

// NewPathHandler creates a PathHandler wrapping handler.
// An empty root disables rewriting. If handler is nil, slog.Default().Handler()
// is used.
func NewPathHandler(handler slog.Handler, root string) *PathHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if root != "" {
		root = filepath.Clean(root)
	}
	return &PathHandler{handler: handler, root: root}
}

// Enabled reports whether the underlying handler handles records at level.
func (h *PathHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's path attributes and passes it on.
func (h *PathHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})
	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *PathHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewriteAttr(a)
	}
	return &PathHandler{handler: h.handler.WithAttrs(rewritten), root: h.root}
}

// WithGroup returns a new handler with the given group name.
func (h *PathHandler) WithGroup(name string) slog.Handler {
	return &PathHandler{handler: h.handler.WithGroup(name), root: h.root}
}

func (h *PathHandler) rewriteAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			rewritten[i] = h.rewriteAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	}

	if h.root == "" || a.Value.Kind() != slog.KindString || !isPathKey(a.Key) {
		return a
	}

	return slog.String(a.Key, h.relative(a.Value.String()))
}

// relative returns p relative to the root, or p unchanged when p is not
// below the root.
func (h *PathHandler) relative(p string) string {
	rel, err := filepath.Rel(h.root, filepath.Clean(p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return filepath.ToSlash(rel)
}

func isPathKey(key string) bool {
	key = strings.ToLower(key)
	return pathKeys[key] || strings.HasSuffix(key, "_path")
}

// NewLogger creates a text slog.Logger writing to w.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//   - root: The mirror root that path attributes are shown relative to
func NewLogger(w io.Writer, verbose bool, root string) *slog.Logger {
	return slog.New(NewPathHandler(slog.NewTextHandler(w, handlerOptions(verbose)), root))
}

// NewJSONLogger creates a JSON slog.Logger writing to w.
// Parameters are the same as for NewLogger.
func NewJSONLogger(w io.Writer, verbose bool, root string) *slog.Logger {
	return slog.New(NewPathHandler(slog.NewJSONHandler(w, handlerOptions(verbose)), root))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
