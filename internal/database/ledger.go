package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/planecrash/internal/model"
)

// FileName is the ledger file name inside the ledger directory.
const FileName = "planecrash.db"

// Ledger provides SQLite-based storage of scrape runs and ingested pages.
type Ledger struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Ledger behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the ledger in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Ledger, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("ledger not found at %s (run a scrape first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check ledger path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	l := &Ledger{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := l.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (l *Ledger) createTables() error {
	schema := `
	-- One row per scrape invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		database_page TEXT NOT NULL,
		output TEXT NOT NULL,
		status TEXT NOT NULL,
		pages INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		error TEXT
	);

	-- One row per incident page handled by a run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		year TEXT,
		hash TEXT,
		fields INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_path ON pages(path);
	CREATE INDEX IF NOT EXISTS idx_pages_hash ON pages(hash);
	`

	_, err := l.db.ExecContext(context.Background(), schema)
	return err
}

// RunStatus is the state of a scrape run.
type RunStatus string

const (
	// RunRunning marks a run that has not finished (or crashed).
	RunRunning RunStatus = "running"

	// RunCompleted marks a run in which every page succeeded.
	RunCompleted RunStatus = "completed"

	// RunFailed marks a run that stopped on an error or had failed pages.
	RunFailed RunStatus = "failed"

	// RunInterrupted marks a run cancelled by a signal.
	RunInterrupted RunStatus = "interrupted"
)

// Page statuses.
const (
	pageOK     = "ok"
	pageFailed = "failed"
)

// Run is a stored scrape run.
type Run struct {
	ID           int64     `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	DatabasePage string    `json:"database_page"`
	Output       string    `json:"output"`
	Status       RunStatus `json:"status"`
	Pages        int       `json:"pages"`
	Failed       int       `json:"failed"`
	Error        string    `json:"error,omitempty"`
}

// PageEntry is a stored incident page of a run.
type PageEntry struct {
	ID        int64     `json:"id"`
	RunID     int64     `json:"run_id"`
	Path      string    `json:"path"`
	Year      string    `json:"year"`
	Hash      string    `json:"hash"`
	Fields    int       `json:"fields"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StartRun inserts a running run and returns its ID.
func (l *Ledger) StartRun(ctx context.Context, databasePage, output string) (int64, error) {
	query := `
	INSERT INTO runs (database_page, output, status)
	VALUES (?, ?, ?)
	`

	result, err := l.db.ExecContext(ctx, query, databasePage, output, string(RunRunning))
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}

	return result.LastInsertId()
}

// RecordPage stores the outcome of one incident page.
func (l *Ledger) RecordPage(ctx context.Context, runID int64, incident *model.Incident) error {
	fields := 0
	if incident.Record != nil {
		fields = incident.Record.Len()
	}

	status := pageOK
	errMsg := sql.NullString{}
	if incident.Failed() {
		status = pageFailed
		errMsg = sql.NullString{String: incident.Error.Error(), Valid: true}
	}

	query := `
	INSERT INTO pages (run_id, path, year, hash, fields, status, error)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := l.db.ExecContext(ctx, query,
		runID, incident.Path, incident.Year, incident.Hash, fields, status, errMsg)
	if err != nil {
		return fmt.Errorf("failed to record page: %w", err)
	}
	return nil
}

// FinishRun closes a run with the given status. The page and failure counts
// are computed from the recorded pages.
func (l *Ledger) FinishRun(ctx context.Context, runID int64, status RunStatus, runErr error) error {
	errMsg := sql.NullString{}
	if runErr != nil {
		errMsg = sql.NullString{String: runErr.Error(), Valid: true}
	}

	query := `
	UPDATE runs SET
		finished_at = CURRENT_TIMESTAMP,
		status = ?,
		error = ?,
		pages = (SELECT COUNT(*) FROM pages WHERE run_id = ?),
		failed = (SELECT COUNT(*) FROM pages WHERE run_id = ? AND status = ?)
	WHERE id = ?
	`

	result, err := l.db.ExecContext(ctx, query, string(status), errMsg, runID, runID, pageFailed, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	return nil
}

// runColumns is the column list scanned by scanRun.
const runColumns = `id, started_at, finished_at, database_page, output, status, pages, failed, error`

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (Run, error) {
	var (
		run        Run
		started    string
		finished   sql.NullString
		status     string
		runErrText sql.NullString
	)
	if err := s.Scan(&run.ID, &started, &finished, &run.DatabasePage, &run.Output,
		&status, &run.Pages, &run.Failed, &runErrText); err != nil {
		return Run{}, err
	}

	run.StartedAt = parseTimestamp(started)
	if finished.Valid {
		run.FinishedAt = parseTimestamp(finished.String)
	}
	run.Status = RunStatus(status)
	run.Error = runErrText.String
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
// A limit of zero or less returns every run.
func (l *Ledger) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun returns one run by ID.
func (l *Ledger) GetRun(ctx context.Context, id int64) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(l.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// PagesForRun returns the pages of a run in processing order.
func (l *Ledger) PagesForRun(ctx context.Context, runID int64) ([]PageEntry, error) {
	query := `
	SELECT id, run_id, path, year, hash, fields, status, error, timestamp
	FROM pages
	WHERE run_id = ?
	ORDER BY id
	`
	return l.queryPages(ctx, query, runID)
}

// PageHistory returns every recorded visit of the page at path, newest first.
func (l *Ledger) PageHistory(ctx context.Context, path string) ([]PageEntry, error) {
	query := `
	SELECT id, run_id, path, year, hash, fields, status, error, timestamp
	FROM pages
	WHERE path = ?
	ORDER BY id DESC
	`
	return l.queryPages(ctx, query, path)
}

func (l *Ledger) queryPages(ctx context.Context, query string, arg any) ([]PageEntry, error) {
	rows, err := l.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	entries := make([]PageEntry, 0)
	for rows.Next() {
		var (
			e         PageEntry
			year      sql.NullString
			hash      sql.NullString
			status    string
			errText   sql.NullString
			timestamp string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Path, &year, &hash, &e.Fields,
			&status, &errText, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		e.Year = year.String
		e.Hash = hash.String
		e.OK = status == pageOK
		e.Error = errText.String
		e.Timestamp = parseTimestamp(timestamp)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
