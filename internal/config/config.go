// =============================================================================
// Candidate Surveys - Configuration Module
// =============================================================================
//
// This module loads the survey configuration file and resolves it against the
// header of a response file.
//
// CONFIGURATION FILE:
//   A JSON (or YAML) document that maps response columns to roles:
//     - file_structure      : columns that make up the output path
//     - candidate_details   : columns identifying the candidate
//     - question_overrides  : display prompts for question columns
//     - ignored_fields      : columns never printed as questions
//     - conditional_sections: questions shown only for some answers
//     - html_table          : optional color-coded summary table
//   plus display strings for the document header, footer and PDF metadata.
//
// FIELD REFERENCES:
//   Columns may be referenced by name ("County") or by zero-based position in
//   the header (3). Positional references are replaced by names in Resolve,
//   once per batch, and never reach the rest of the program.
//
// =============================================================================

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

// DefaultLogoColumns is the logo grid width used when logo_columns is unset.
const DefaultLogoColumns = 4

// =============================================================================
// RAW CONFIGURATION STRUCTURE
// =============================================================================

// RawConfig is the configuration exactly as loaded, before field references
// are resolved against a header.
type RawConfig struct {
	// FileStructure lists the columns whose values form the output path,
	// outermost directory first. The last one names the file.
	FileStructure []FieldRef `json:"file_structure" yaml:"file_structure"`

	// CandidateDetails lists the columns printed in the candidate block.
	// These columns are never printed as questions.
	CandidateDetails []FieldRef `json:"candidate_details" yaml:"candidate_details"`

	// QuestionOverrides maps a column (name, or index written as a digit
	// string) to the prompt printed instead of the column name.
	QuestionOverrides OrderedMap[string] `json:"question_overrides" yaml:"question_overrides"`

	// IgnoredFields lists columns that are never printed.
	IgnoredFields []string `json:"ignored_fields" yaml:"ignored_fields"`

	// ConditionalSections maps a controlling column to the rules it drives.
	ConditionalSections OrderedMap[[]Condition] `json:"conditional_sections" yaml:"conditional_sections"`

	// HTMLTable configures the optional summary table.
	HTMLTable *HTMLSpec `json:"html_table,omitempty" yaml:"html_table,omitempty"`

	// LogoColumns is the number of logos per footer row.
	// Default: 4
	LogoColumns *int `json:"logo_columns,omitempty" yaml:"logo_columns,omitempty"`

	// PrintNotAnswered prints "Not answered." for empty answers instead of
	// printing nothing.
	// Default: false
	PrintNotAnswered bool `json:"print_not_answered" yaml:"print_not_answered"`

	// Display strings.
	Name          string   `json:"name" yaml:"name"`
	Subname       string   `json:"subname" yaml:"subname"`
	Footer        string   `json:"footer" yaml:"footer"`
	PDFAuthor     string   `json:"pdf_author" yaml:"pdf_author"`
	PDFCreator    string   `json:"pdf_creator" yaml:"pdf_creator"`
	PDFKeyphrases []string `json:"pdf_keyphrases" yaml:"pdf_keyphrases"`
}

// Condition is one visibility rule: Fields are shown only when the
// controlling column equals Value.
type Condition struct {
	Value  string   `json:"value" yaml:"value"`
	Fields []string `json:"fields" yaml:"fields"`
}

// HTMLSpec configures the summary table.
type HTMLSpec struct {
	// Cols lists the columns shown, in order.
	Cols []FieldRef `json:"cols" yaml:"cols"`

	// ColorMatches maps a column to its ordered label -> color rules. A cell
	// whose value starts with a label (case-insensitive) gets that color.
	ColorMatches OrderedMap[OrderedMap[string]] `json:"color_matches" yaml:"color_matches"`

	// TitleOverrides maps a column to the header text shown for it.
	TitleOverrides OrderedMap[string] `json:"title_overrides" yaml:"title_overrides"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads a configuration file. Files ending in .yaml or .yml are decoded
// as YAML; anything else is decoded as JSON.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - The raw, unresolved configuration.
//   - An error if the file cannot be read, or a *types.ConfigError if it
//     cannot be parsed.
func Load(configPath string) (*RawConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw, err := Parse(data, formatFor(configPath))
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Format identifies a configuration encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes configuration bytes in the given format and applies
// defaults.
func Parse(data []byte, format Format) (*RawConfig, error) {
	var raw RawConfig

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, &types.ConfigError{Message: "cannot parse configuration", Err: err}
	}

	applyDefaults(&raw)
	return &raw, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(raw *RawConfig) {
	if raw.LogoColumns == nil {
		columns := DefaultLogoColumns
		raw.LogoColumns = &columns
	}
}
