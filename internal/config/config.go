package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nao1215/planecrash/internal/model"
)

// Default configuration values.
// The paths mirror the layout produced by a recursive fetch of the crash
// database site next to the working directory.
const (
	// DefaultDatabasePage is the top-level page listing every year.
	DefaultDatabasePage = "../wget_planecrashinfo/database.htm"

	// DefaultOutputPath is the cumulative data file.
	DefaultOutputPath = "all_data.csv"

	// DefaultDateColumn is the data file column holding the incident date.
	// Labels keep the trailing colon used by the site's tables.
	DefaultDateColumn = "Date:"

	// DefaultDuplicatePolicy keeps the later value of a repeated label.
	DefaultDuplicatePolicy = "last-wins"

	// AppName is the application name used for XDG directory paths.
	AppName = "planecrash"
)

// DefaultIndexPages are the navigation pages linked from every database and
// year page. Links to them are never followed.
func DefaultIndexPages() []string {
	return []string{"index.html", "index.htm"}
}

// Config holds all configuration options for planecrash.
// It is populated from the config file and CLI flags and passed down
// explicitly; there is no global configuration state.
type Config struct {
	// DatabasePage is the path of the root database page.
	DatabasePage string

	// OutputPath is the data file that rows are appended to.
	OutputPath string

	// IndexPages lists file names of navigation pages to skip.
	IndexPages []string

	// StrictLinks follows only links whose target looks like the expected
	// page type for the level (year page or incident page).
	StrictLinks bool

	// DuplicatePolicy is "last-wins" or "reject".
	DuplicatePolicy string

	// KeepGoing logs failed incident pages and continues the walk instead of
	// aborting on the first failure.
	KeepGoing bool

	// Years restricts the walk to these year directories. Empty means all.
	Years []string

	// DateColumn is the column aggregated by the plot command.
	DateColumn string

	// StrictDates makes an unparseable date fatal during aggregation.
	// When false the value is skipped with a warning.
	StrictDates bool

	// UseLedger records every run and ingested page in the SQLite ledger.
	UseLedger bool

	// DBDir is the directory holding the ledger database.
	// Defaults to the XDG data directory (~/.local/share/planecrash on Linux).
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is the explicitly requested config file, if any.
	ConfigFilePath string

	// JSONReport renders the yearly series as JSON.
	JSONReport bool

	// MarkdownReport renders the yearly series as Markdown with a chart.
	MarkdownReport bool

	// ReportFile is the output file for the report. Empty means stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DatabasePage:    DefaultDatabasePage,
		OutputPath:      DefaultOutputPath,
		IndexPages:      DefaultIndexPages(),
		DuplicatePolicy: DefaultDuplicatePolicy,
		DateColumn:      DefaultDateColumn,
		UseLedger:       true,
		DBDir:           XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for planecrash.
// On Linux: ~/.local/share/planecrash
// On macOS: ~/Library/Application Support/planecrash
// On Windows: %LOCALAPPDATA%\planecrash
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for planecrash.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.DatabasePage == "" {
		return ErrNoDatabasePage
	}

	if c.OutputPath == "" {
		return ErrNoOutput
	}

	if _, err := model.ParseDuplicatePolicy(c.DuplicatePolicy); err != nil {
		return ErrInvalidDuplicatePolicy
	}

	if c.DateColumn == "" {
		return ErrNoDateColumn
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.UseLedger && c.DBDir == "" {
		return ErrNoLedgerDir
	}

	return nil
}

// Apply copies every value set in the file onto the config.
// Zero values in the file leave the config untouched.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.Database != "" {
		c.DatabasePage = f.Database
	}
	if f.Output != "" {
		c.OutputPath = f.Output
	}
	if len(f.IndexPages) > 0 {
		c.IndexPages = f.IndexPages
	}
	if f.StrictLinks != nil {
		c.StrictLinks = *f.StrictLinks
	}
	if f.Duplicates != "" {
		c.DuplicatePolicy = f.Duplicates
	}
	if f.KeepGoing != nil {
		c.KeepGoing = *f.KeepGoing
	}
	if len(f.Years) > 0 {
		c.Years = f.Years
	}
	if f.DateColumn != "" {
		c.DateColumn = f.DateColumn
	}
	if f.StrictDates != nil {
		c.StrictDates = *f.StrictDates
	}
	if f.Ledger != nil {
		c.UseLedger = *f.Ledger
	}
	if f.LedgerDir != "" {
		c.DBDir = f.LedgerDir
	}
}
