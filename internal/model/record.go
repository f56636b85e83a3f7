package model

// field is one label/value pair of a Record.
type field struct {
	label string
	value string
}

// Record holds the fields extracted from one incident page.
// Column order is the order in which labels were first set.
//
// All Records appended to the same data file must share the same labels in
// the same order. The datafile.Writer enforces that.
type Record struct {
	fields []field
	index  map[string]int
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{
		fields: make([]field, 0),
		index:  make(map[string]int),
	}
}

// Set stores value under label. If the label already exists its value is
// replaced in place (the label keeps its original column position) and
// Set reports true.
func (r *Record) Set(label, value string) bool {
	if i, ok := r.index[label]; ok {
		r.fields[i].value = value
		return true
	}
	r.index[label] = len(r.fields)
	r.fields = append(r.fields, field{label: label, value: value})
	return false
}

// Has reports whether label is present.
func (r *Record) Has(label string) bool {
	_, ok := r.index[label]
	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Labels returns the field labels in column order.
func (r *Record) Labels() []string {
	labels := make([]string, len(r.fields))
	for i, f := range r.fields {
		labels[i] = f.label
	}
	return labels
}

// Values returns the field values in column order.
func (r *Record) Values() []string {
	values := make([]string, len(r.fields))
	for i, f := range r.fields {
		values[i] = f.value
	}
	return values
}

// Map returns the record as a label to single-value-column mapping.
// This is the one-row table view of the record.
func (r *Record) Map() map[string][]string {
	m := make(map[string][]string, len(r.fields))
	for _, f := range r.fields {
		m[f.label] = []string{f.value}
	}
	return m
}
