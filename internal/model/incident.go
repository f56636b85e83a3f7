package model

// Incident is the unit of work for one leaf (incident) page.
// Pipeline steps receive the same Incident in turn and fill it in.
type Incident struct {
	// Path is the filesystem path of the incident page.
	Path string `json:"path"`

	// Year is the name of the year page's directory (e.g. "1922").
	Year string `json:"year"`

	// Record is the extracted table row. Nil until the extract step ran.
	Record *Record `json:"-"`

	// Hash is the content hash of the incident page.
	Hash string `json:"hash,omitempty"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the first error a step returned.
	Error error `json:"-"`

	// ErrorMessage is Error as a string, kept for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewIncident creates an Incident for the page at path.
func NewIncident(path, year string) *Incident {
	return &Incident{
		Path:           path,
		Year:           year,
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether a step recorded an error.
func (i *Incident) Failed() bool {
	return i.Error != nil
}
