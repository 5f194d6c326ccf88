// =============================================================================
// Candidate Surveys - Shared Types
// =============================================================================
//
// This package contains types shared by the readers, the document assembler,
// the summary builder and the generator. Keeping them here avoids import
// cycles between those packages.
//
// =============================================================================

package types

import "fmt"

// =============================================================================
// RESPONSE RECORDS
// =============================================================================

// Record is one candidate's questionnaire response: an ordered mapping of
// field name to raw value. Field order is the column order of the header the
// record was read with.
type Record struct {
	// names holds each distinct field name in first-appearance order.
	names []string

	// values maps field name to raw, untrimmed value.
	values map[string]string
}

// NewRecord builds a Record from a header and one row of cells.
//
// Rows shorter than the header are padded with empty values and cells beyond
// the header are dropped. If the header repeats a name, the name keeps its
// first position and the value of its last column.
func NewRecord(header []string, row []string) Record {
	rec := Record{
		names:  make([]string, 0, len(header)),
		values: make(map[string]string, len(header)),
	}

	for i, name := range header {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		if _, seen := rec.values[name]; !seen {
			rec.names = append(rec.names, name)
		}
		rec.values[name] = value
	}

	return rec
}

// RecordFromPairs builds a Record from alternating name/value strings.
// It is mostly useful in tests.
func RecordFromPairs(pairs ...string) Record {
	if len(pairs)%2 != 0 {
		panic("types: RecordFromPairs needs an even number of arguments")
	}
	header := make([]string, 0, len(pairs)/2)
	row := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		header = append(header, pairs[i])
		row = append(row, pairs[i+1])
	}
	return NewRecord(header, row)
}

// Get returns the raw value of a field and whether the field exists.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns the field names in column order.
func (r Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// ResponseSet is the parsed content of one response file.
type ResponseSet struct {
	// Header is the column header exactly as read (after cleaning).
	// Positional config references index into this slice.
	Header []string

	// Records holds the data rows in file order.
	Records []Record

	// Source is the path the responses were read from.
	Source string
}

// =============================================================================
// CANDIDATE
// =============================================================================

// Candidate is the identity subset of a Record: the configured candidate
// detail fields with surrounding whitespace trimmed.
type Candidate struct {
	// Fields maps detail field name to trimmed value.
	Fields map[string]string

	// Order lists the detail field names in configured order.
	Order []string
}

// Get returns a detail value and whether it exists.
func (c Candidate) Get(name string) (string, bool) {
	v, ok := c.Fields[name]
	return v, ok
}

// String renders the candidate as "field=value" pairs for log messages.
func (c Candidate) String() string {
	s := ""
	for i, name := range c.Order {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%s", name, c.Fields[name])
	}
	return s
}
