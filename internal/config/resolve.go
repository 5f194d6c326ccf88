package config

import (
	"fmt"
	"strconv"

	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

// =============================================================================
// RESOLVED CONFIGURATION STRUCTURE
// =============================================================================

// Resolved is a configuration in which every field reference is a column
// name. It is built once per batch by Resolve and is read-only afterwards.
type Resolved struct {
	FileStructure       []string
	CandidateDetails    []string
	QuestionOverrides   OrderedMap[string]
	IgnoredFields       []string
	ConditionalSections OrderedMap[[]Condition]
	HTMLTable           *ResolvedHTML
	LogoColumns         int
	PrintNotAnswered    bool

	Name          string
	Subname       string
	Footer        string
	PDFAuthor     string
	PDFCreator    string
	PDFKeyphrases []string

	// Substitutions records every positional reference that was replaced,
	// in the order it was encountered.
	Substitutions []Substitution

	ignored map[string]bool
	details map[string]bool
	gates   map[string]Gate
}

// ResolvedHTML is the summary table configuration with names only.
type ResolvedHTML struct {
	Cols           []string
	ColorMatches   OrderedMap[OrderedMap[string]]
	TitleOverrides OrderedMap[string]
}

// Substitution describes one positional reference replaced by a name.
type Substitution struct {
	// Key is the configuration key the reference appeared under.
	Key   string
	Index int
	Name  string
}

func (s Substitution) String() string {
	return fmt.Sprintf("%s: replaced %d with %q", s.Key, s.Index, s.Name)
}

// Gate makes a question visible only when Field equals Value.
type Gate struct {
	Field string
	Value string
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolve replaces every positional reference in raw with the header name at
// that position and validates the result.
//
// PARAMETERS:
//   - raw: The configuration as loaded. It is not modified.
//   - header: The response file header.
//
// RETURNS:
//   - The resolved configuration.
//   - A *types.ConfigError if a required key is missing, an index is out of
//     range, candidate details repeat a column, file_structure is empty or
//     logo_columns is not positive. Nothing is returned on error.
func Resolve(raw *RawConfig, header []string) (*Resolved, error) {
	if raw == nil {
		return nil, &types.ConfigError{Message: "no configuration"}
	}
	if err := checkRequired(raw); err != nil {
		return nil, err
	}

	r := &resolver{header: header}
	out := &Resolved{
		IgnoredFields:       append([]string(nil), raw.IgnoredFields...),
		ConditionalSections: raw.ConditionalSections,
		PrintNotAnswered:    raw.PrintNotAnswered,
		Name:                raw.Name,
		Subname:             raw.Subname,
		Footer:              raw.Footer,
		PDFAuthor:           raw.PDFAuthor,
		PDFCreator:          raw.PDFCreator,
		PDFKeyphrases:       append([]string(nil), raw.PDFKeyphrases...),
	}

	var err error
	if out.FileStructure, err = r.refs("file_structure", raw.FileStructure); err != nil {
		return nil, err
	}
	if len(out.FileStructure) == 0 {
		return nil, &types.ConfigError{Key: "file_structure", Message: "must name at least one field"}
	}

	if out.CandidateDetails, err = r.refs("candidate_details", raw.CandidateDetails); err != nil {
		return nil, err
	}
	if dup := firstDuplicate(out.CandidateDetails); dup != "" {
		return nil, &types.ConfigError{
			Key:     "candidate_details",
			Message: fmt.Sprintf("field %q is listed more than once", dup),
		}
	}

	if out.QuestionOverrides, err = resolveKeys(r, "question_overrides", raw.QuestionOverrides); err != nil {
		return nil, err
	}

	if raw.HTMLTable != nil {
		if out.HTMLTable, err = r.html(raw.HTMLTable); err != nil {
			return nil, err
		}
	}

	out.LogoColumns = DefaultLogoColumns
	if raw.LogoColumns != nil {
		out.LogoColumns = *raw.LogoColumns
	}
	if out.LogoColumns <= 0 {
		return nil, &types.ConfigError{
			Key:     "logo_columns",
			Message: fmt.Sprintf("must be positive, got %d", out.LogoColumns),
		}
	}

	out.Substitutions = r.subs
	out.index()
	return out, nil
}

// checkRequired reports the first required key missing from raw.
func checkRequired(raw *RawConfig) error {
	switch {
	case raw.FileStructure == nil:
		return &types.ConfigError{Key: "file_structure", Message: "required key is missing"}
	case raw.CandidateDetails == nil:
		return &types.ConfigError{Key: "candidate_details", Message: "required key is missing"}
	case !raw.QuestionOverrides.Defined():
		return &types.ConfigError{Key: "question_overrides", Message: "required key is missing"}
	case raw.IgnoredFields == nil:
		return &types.ConfigError{Key: "ignored_fields", Message: "required key is missing"}
	}
	return nil
}

// resolver carries the header and the substitutions made so far.
type resolver struct {
	header []string
	subs   []Substitution
}

func (r *resolver) lookup(key string, i int) (string, error) {
	if i < 0 || i >= len(r.header) {
		return "", &types.ConfigError{
			Key:     key,
			Message: fmt.Sprintf("index %d is out of range for a header of %d fields", i, len(r.header)),
		}
	}
	name := r.header[i]
	r.subs = append(r.subs, Substitution{Key: key, Index: i, Name: name})
	return name, nil
}

func (r *resolver) refs(key string, refs []FieldRef) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if i, ok := ref.Index(); ok {
			name, err := r.lookup(key, i)
			if err != nil {
				return nil, err
			}
			out = append(out, name)
			continue
		}
		out = append(out, ref.Name())
	}
	return out, nil
}

// key resolves a map key: all-digit keys are positions, anything else is a
// name.
func (r *resolver) key(key, k string) (string, error) {
	if !isDigits(k) {
		return k, nil
	}
	i, err := strconv.Atoi(k)
	if err != nil {
		return "", &types.ConfigError{Key: key, Message: fmt.Sprintf("index %s is out of range", k)}
	}
	return r.lookup(key, i)
}

func resolveKeys[V any](r *resolver, key string, m OrderedMap[V]) (OrderedMap[V], error) {
	out := NewOrderedMap[V]()
	for _, k := range m.Keys() {
		name, err := r.key(key, k)
		if err != nil {
			return OrderedMap[V]{}, err
		}
		v, _ := m.Get(k)
		out.Set(name, v)
	}
	return out, nil
}

func (r *resolver) html(spec *HTMLSpec) (*ResolvedHTML, error) {
	cols, err := r.refs("html_table.cols", spec.Cols)
	if err != nil {
		return nil, err
	}
	colors, err := resolveKeys(r, "html_table.color_matches", spec.ColorMatches)
	if err != nil {
		return nil, err
	}
	titles, err := resolveKeys(r, "html_table.title_overrides", spec.TitleOverrides)
	if err != nil {
		return nil, err
	}
	return &ResolvedHTML{Cols: cols, ColorMatches: colors, TitleOverrides: titles}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func firstDuplicate(names []string) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n
		}
		seen[n] = true
	}
	return ""
}

// =============================================================================
// LOOKUPS
// =============================================================================

// index builds the lookup sets used per record.
func (c *Resolved) index() {
	c.ignored = make(map[string]bool, len(c.IgnoredFields))
	for _, f := range c.IgnoredFields {
		c.ignored[f] = true
	}

	c.details = make(map[string]bool, len(c.CandidateDetails))
	for _, f := range c.CandidateDetails {
		c.details[f] = true
	}

	// A field gated more than once keeps only its last declared rule.
	c.gates = make(map[string]Gate)
	for _, controlling := range c.ConditionalSections.Keys() {
		conditions, _ := c.ConditionalSections.Get(controlling)
		for _, cond := range conditions {
			for _, field := range cond.Fields {
				c.gates[field] = Gate{Field: controlling, Value: cond.Value}
			}
		}
	}
}

// IsIgnored reports whether field is listed in ignored_fields.
func (c *Resolved) IsIgnored(field string) bool {
	return c.ignored[field]
}

// IsCandidateDetail reports whether field is a candidate detail.
func (c *Resolved) IsCandidateDetail(field string) bool {
	return c.details[field]
}

// Gate returns the visibility rule gating field, if any.
func (c *Resolved) Gate(field string) (Gate, bool) {
	g, ok := c.gates[field]
	return g, ok
}

// ControllingFields returns the columns that drive conditional sections.
func (c *Resolved) ControllingFields() []string {
	return c.ConditionalSections.Keys()
}

// Prompt returns the display label for a field: its override if one exists,
// otherwise the field name itself.
func (c *Resolved) Prompt(field string) string {
	if p, ok := c.QuestionOverrides.Get(field); ok {
		return p
	}
	return field
}
