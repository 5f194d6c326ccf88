package document

import (
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/candidate-surveys/internal/config"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
	"github.com/ginjaninja78/candidate-surveys/pkg/utils"
)

// OutputExtension is appended to every document path.
const OutputExtension = ".pdf"

// =============================================================================
// CANDIDATE
// =============================================================================

// CandidateFor extracts the candidate details of a record, trimmed, in
// configured order.
//
// RETURNS:
//   - The candidate.
//   - A *types.MissingFieldError if the record lacks a detail field.
func CandidateFor(rec types.Record, cfg *config.Resolved) (types.Candidate, error) {
	c := types.Candidate{
		Fields: make(map[string]string, len(cfg.CandidateDetails)),
		Order:  make([]string, 0, len(cfg.CandidateDetails)),
	}

	for _, field := range cfg.CandidateDetails {
		value, ok := rec.Get(field)
		if !ok {
			return types.Candidate{}, &types.MissingFieldError{Field: field, Role: "candidate_details"}
		}
		c.Fields[field] = strings.TrimSpace(value)
		c.Order = append(c.Order, field)
	}

	return c, nil
}

// CandidateName returns the "Name" detail if there is one, otherwise the
// first detail, otherwise "".
func CandidateName(c types.Candidate) string {
	if name, ok := c.Get("Name"); ok {
		return name
	}
	if len(c.Order) > 0 {
		return c.Fields[c.Order[0]]
	}
	return ""
}

// =============================================================================
// OUTPUT PATH
// =============================================================================

// BuildPath derives the output path of a candidate's document: one path
// component per file_structure field, separators in values replaced by "-",
// with the document extension appended to the last component. Values such as
// "..", "." or "" are renamed so every component stays a directory of its own
// below outputDir.
//
// EXAMPLE:
//
//	file_structure ["County", "Office"], County "Polk", Office "City/Council"
//	BuildPath(c, cfg, "output") == "output/Polk/City-Council.pdf"
//
// RETURNS:
//   - The path. Two candidates may map to the same path.
//   - A *types.MissingFieldError if the candidate lacks a file_structure field.
func BuildPath(c types.Candidate, cfg *config.Resolved, outputDir string) (string, error) {
	parts := make([]string, 0, len(cfg.FileStructure)+1)
	parts = append(parts, outputDir)

	for _, field := range cfg.FileStructure {
		value, ok := c.Get(field)
		if !ok {
			return "", &types.MissingFieldError{Field: field, Role: "file_structure"}
		}
		parts = append(parts, utils.CleanPathComponent(value))
	}

	return filepath.Join(parts...) + OutputExtension, nil
}

// =============================================================================
// QUESTION VISIBILITY
// =============================================================================

// Question is one question printed in a document.
type Question struct {
	// Key is the response column.
	Key string

	// Prompt is the text printed for the question.
	Prompt string

	// Answer is the raw response value.
	Answer string

	// Number is the 1-based position among printed questions.
	Number int
}

// VisibleQuestions returns the questions of a record that are printed, in
// column order:
//   - ignored fields and candidate details are skipped;
//   - a gated field is kept only if its rule matches exactly;
//   - numbering is contiguous from 1 over kept fields.
//
// RETURNS:
//   - The visible questions.
//   - A *types.MissingFieldError if a controlling field is absent.
func VisibleQuestions(rec types.Record, cfg *config.Resolved) ([]Question, error) {
	var questions []Question

	for _, field := range rec.Names() {
		if cfg.IsIgnored(field) || cfg.IsCandidateDetail(field) {
			continue
		}

		visible, err := gateOpen(rec, cfg, field)
		if err != nil {
			return nil, err
		}
		if !visible {
			continue
		}

		answer, _ := rec.Get(field)
		questions = append(questions, Question{
			Key:    field,
			Prompt: cfg.Prompt(field),
			Answer: answer,
			Number: len(questions) + 1,
		})
	}

	return questions, nil
}

// gateOpen reports whether the rule gating field matches. An ungated field
// is always open.
func gateOpen(rec types.Record, cfg *config.Resolved, field string) (bool, error) {
	gate, ok := cfg.Gate(field)
	if !ok {
		return true, nil
	}

	value, ok := rec.Get(gate.Field)
	if !ok {
		return false, &types.MissingFieldError{Field: gate.Field, Role: "conditional_sections"}
	}
	return value == gate.Value, nil
}
