package config

// File represents the structure of the .planecrash configuration file.
// Every field is optional. Boolean fields are pointers so that an explicit
// false in the file can be told apart from an absent key.
type File struct {
	// Database is the path of the root database page.
	Database string `yaml:"database,omitempty"`

	// Output is the data file path.
	Output string `yaml:"output,omitempty"`

	// IndexPages lists navigation page file names that are never followed.
	IndexPages []string `yaml:"index_pages,omitempty"`

	// StrictLinks follows only links of the expected page type.
	StrictLinks *bool `yaml:"strict_links,omitempty"`

	// Duplicates is the duplicate label policy: last-wins or reject.
	Duplicates string `yaml:"duplicates,omitempty"`

	// KeepGoing continues past failed incident pages.
	KeepGoing *bool `yaml:"keep_going,omitempty"`

	// Years restricts the walk to these year directories.
	Years []string `yaml:"years,omitempty"`

	// DateColumn is the column used by the plot command.
	DateColumn string `yaml:"date_column,omitempty"`

	// StrictDates makes unparseable dates fatal.
	StrictDates *bool `yaml:"strict_dates,omitempty"`

	// Ledger enables the SQLite ingest ledger.
	Ledger *bool `yaml:"ledger,omitempty"`

	// LedgerDir overrides the ledger directory.
	LedgerDir string `yaml:"ledger_dir,omitempty"`
}
