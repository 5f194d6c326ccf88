// =============================================================================
// Candidate Surveys - Validation Engine
// =============================================================================
//
// This module checks a resolved configuration against the header of a
// response file before any document is written.
//
// VALIDATION STRATEGY:
//   Every configured field name is looked up in the header.
//   - Errors: references every record would fail on (candidate details,
//     path components, controlling fields of present questions, summary
//     columns).
//   - Warnings: references that simply have no effect (overrides, ignored
//     fields, gated questions or color rules naming absent columns).
//
// ERROR HANDLING:
//   - Issues are collected, not returned one at a time
//   - Each issue names the configuration key and field at fault
//   - The first error converts to a *types.MissingFieldError
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/candidate-surveys/internal/config"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

// =============================================================================
// VALIDATION ISSUE TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one problem found in the configuration.
type Issue struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Key is the configuration key the field is listed under.
	Key string

	// Field is the field name at fault.
	Field string

	// Message is a human-readable description.
	Message string
}

// String renders the issue on one line.
func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(i.Severity), i.Key, i.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the results of validation.
type Result struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Issues contains all errors and warnings, in check order.
	Issues []Issue

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

// Err returns the first error as a *types.MissingFieldError, or nil.
func (r *Result) Err() error {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return &types.MissingFieldError{Field: issue.Field, Role: issue.Key}
		}
	}
	return nil
}

// Warnings returns the warnings only.
func (r *Result) Warnings() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			out = append(out, issue)
		}
	}
	return out
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for validation.
type Options struct {
	// TreatWarningsAsErrors makes every warning an error.
	// Default: false
	TreatWarningsAsErrors bool
}

// Validator checks configurations against a header.
type Validator struct {
	options Options
}

// NewValidator creates a validator with default options.
func NewValidator() *Validator {
	return NewValidatorWithOptions(Options{})
}

// NewValidatorWithOptions creates a validator with custom options.
func NewValidatorWithOptions(options Options) *Validator {
	return &Validator{options: options}
}

// Validate checks cfg against header using default options.
func Validate(cfg *config.Resolved, header []string) *Result {
	return NewValidator().CheckHeader(cfg, header)
}

// CheckHeader checks every field reference of cfg against header.
func (v *Validator) CheckHeader(cfg *config.Resolved, header []string) *Result {
	c := &checker{
		options: v.options,
		header:  make(map[string]bool, len(header)),
		result:  &Result{IsValid: true},
	}
	for _, name := range header {
		c.header[name] = true
	}

	details := make(map[string]bool, len(cfg.CandidateDetails))
	for _, field := range cfg.CandidateDetails {
		details[field] = true
		c.require("candidate_details", field)
	}

	for _, field := range cfg.FileStructure {
		switch {
		case !c.header[field]:
			c.add(SeverityError, "file_structure", field, fmt.Sprintf("field %q is not in the header", field))
		case !details[field]:
			c.add(SeverityError, "file_structure", field,
				fmt.Sprintf("field %q is not a candidate detail; paths are built from candidate details", field))
		}
	}

	for _, field := range cfg.QuestionOverrides.Keys() {
		c.optional("question_overrides", field)
	}
	for _, field := range cfg.IgnoredFields {
		c.optional("ignored_fields", field)
	}

	c.conditions(cfg)

	if cfg.HTMLTable != nil {
		c.html(cfg.HTMLTable)
	}

	return c.result
}

// =============================================================================
// CHECKS
// =============================================================================

type checker struct {
	options Options
	header  map[string]bool
	result  *Result
}

func (c *checker) add(severity, key, field, message string) {
	if severity == SeverityWarning && c.options.TreatWarningsAsErrors {
		severity = SeverityError
	}

	c.result.Issues = append(c.result.Issues, Issue{Severity: severity, Key: key, Field: field, Message: message})
	if severity == SeverityError {
		c.result.ErrorCount++
		c.result.IsValid = false
	} else {
		c.result.WarningCount++
	}
}

func (c *checker) require(key, field string) {
	if !c.header[field] {
		c.add(SeverityError, key, field, fmt.Sprintf("field %q is not in the header", field))
	}
}

func (c *checker) optional(key, field string) {
	if !c.header[field] {
		c.add(SeverityWarning, key, field, fmt.Sprintf("field %q is not in the header and has no effect", field))
	}
}

// conditions checks controlling fields and the questions they gate. A
// missing controlling field is only an error when one of its questions is
// present and still gated by it. Rules replaced by a later rule for the same
// field are reported as warnings.
func (c *checker) conditions(cfg *config.Resolved) {
	for _, controlling := range cfg.ControllingFields() {
		conditions, _ := cfg.ConditionalSections.Get(controlling)

		gatesPresent := false
		for _, cond := range conditions {
			for _, field := range cond.Fields {
				if gate, _ := cfg.Gate(field); gate != (config.Gate{Field: controlling, Value: cond.Value}) {
					c.add(SeverityWarning, "conditional_sections."+controlling, field,
						fmt.Sprintf("rule %q for field %q is replaced by a later rule", cond.Value, field))
					continue
				}
				if c.header[field] {
					gatesPresent = true
				} else {
					c.optional("conditional_sections."+controlling, field)
				}
			}
		}

		if c.header[controlling] {
			continue
		}
		if gatesPresent {
			c.add(SeverityError, "conditional_sections", controlling,
				fmt.Sprintf("controlling field %q is not in the header", controlling))
		} else {
			c.optional("conditional_sections", controlling)
		}
	}
}

func (c *checker) html(spec *config.ResolvedHTML) {
	cols := make(map[string]bool, len(spec.Cols))
	for _, field := range spec.Cols {
		cols[field] = true
		c.require("html_table.cols", field)
	}

	for _, field := range spec.ColorMatches.Keys() {
		if !cols[field] {
			c.add(SeverityWarning, "html_table.color_matches", field,
				fmt.Sprintf("field %q is not a summary column and its colors are never used", field))
		}
	}
	for _, field := range spec.TitleOverrides.Keys() {
		if !cols[field] {
			c.add(SeverityWarning, "html_table.title_overrides", field,
				fmt.Sprintf("field %q is not a summary column and its title is never used", field))
		}
	}
}

// =============================================================================
// ERROR OUTPUT
// =============================================================================

// FormatIssues formats issues for display, one per line.
func FormatIssues(issues []Issue) string {
	if len(issues) == 0 {
		return "No validation issues.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d validation issue(s):\n", len(issues))
	for i, issue := range issues {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, issue)
	}
	return b.String()
}
