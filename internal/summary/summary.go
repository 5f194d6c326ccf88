// =============================================================================
// Candidate Surveys - Summary Table Builder
// =============================================================================
//
// This module builds the optional color-coded table that shows selected
// columns of every response side by side.
//
// CELL RULES (per configured column):
//   - Column with color rules: the rules are tried in declared order; the
//     first whose pattern matches the start of the value (case-insensitive)
//     wins. The cell shows the rule label and gets the rule's CSS class.
//   - Column with rules but no match: the cell shows "other" and the raw
//     value as a hover tooltip.
//   - Column without rules: the cell shows the raw value.
//
// Rows are collected in an Accumulator owned by the caller; nothing is kept
// in package state.
//
// =============================================================================

package summary

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/candidate-surveys/internal/config"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

const (
	// OtherText is shown for a value no color rule matches.
	OtherText = "other"

	// TooltipClass marks a cell that carries a tooltip.
	TooltipClass = "tooltip"
)

// =============================================================================
// TABLE STRUCTURES
// =============================================================================

// Cell is one table cell.
type Cell struct {
	Text    string
	Class   string
	Tooltip string
}

// Row is one record's cells, in column order.
type Row struct {
	Cells []Cell
}

// ColorStyle gives cells of a class a background color.
type ColorStyle struct {
	Class string
	Color string
}

// Table is the finished summary.
type Table struct {
	Headers []string
	Styles  []ColorStyle
	Rows    []Row
}

// =============================================================================
// BUILDER
// =============================================================================

type colorRule struct {
	label   string
	class   string
	pattern *regexp.Regexp
}

// Builder turns records into summary rows. It is read-only after creation.
type Builder struct {
	cols    []string
	headers []string
	rules   map[string][]colorRule
	styles  []ColorStyle
}

// NewBuilder compiles the color rules of a summary table configuration.
//
// RETURNS:
//   - The builder.
//   - A *types.ConfigError if a color pattern is not a valid regular
//     expression.
func NewBuilder(spec *config.ResolvedHTML) (*Builder, error) {
	b := &Builder{
		cols:  append([]string(nil), spec.Cols...),
		rules: make(map[string][]colorRule),
	}

	for _, col := range spec.Cols {
		title, ok := spec.TitleOverrides.Get(col)
		if !ok {
			title = col
		}
		b.headers = append(b.headers, title)
	}

	for _, field := range spec.ColorMatches.Keys() {
		labels, _ := spec.ColorMatches.Get(field)
		for _, label := range labels.Keys() {
			pattern, err := regexp.Compile("(?i)^(?:" + label + ")")
			if err != nil {
				return nil, &types.ConfigError{
					Key:     "html_table.color_matches",
					Message: fmt.Sprintf("pattern %q for %q is not a valid regular expression", label, field),
					Err:     err,
				}
			}

			color, _ := labels.Get(label)
			class := ClassName(field, label)
			b.rules[field] = append(b.rules[field], colorRule{label: label, class: class, pattern: pattern})
			b.styles = append(b.styles, ColorStyle{Class: class, Color: color})
		}
	}

	return b, nil
}

// BuildRow builds the summary row of one record.
//
// RETURNS:
//   - The row.
//   - A *types.MissingFieldError if the record lacks a configured column.
func (b *Builder) BuildRow(rec types.Record) (Row, error) {
	row := Row{Cells: make([]Cell, 0, len(b.cols))}

	for _, col := range b.cols {
		value, ok := rec.Get(col)
		if !ok {
			return Row{}, &types.MissingFieldError{Field: col, Role: "html_table"}
		}
		row.Cells = append(row.Cells, b.cell(col, value))
	}

	return row, nil
}

func (b *Builder) cell(col, value string) Cell {
	rules, colored := b.rules[col]
	if !colored {
		return Cell{Text: value}
	}

	for _, rule := range rules {
		if rule.pattern.MatchString(value) {
			return Cell{Text: rule.label, Class: rule.class}
		}
	}
	return Cell{Text: OtherText, Class: TooltipClass, Tooltip: value}
}

// Finalize wraps rows with the headers and styles of the table.
func (b *Builder) Finalize(rows []Row) Table {
	return Table{
		Headers: append([]string(nil), b.headers...),
		Styles:  append([]ColorStyle(nil), b.styles...),
		Rows:    rows,
	}
}

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulator collects rows for one batch, in record order.
type Accumulator struct {
	builder *Builder
	rows    []Row
}

// NewAccumulator starts an empty batch.
func (b *Builder) NewAccumulator() *Accumulator {
	return &Accumulator{builder: b}
}

// Add builds and keeps the row of one record.
func (a *Accumulator) Add(rec types.Record) error {
	row, err := a.builder.BuildRow(rec)
	if err != nil {
		return err
	}
	a.rows = append(a.rows, row)
	return nil
}

// Len returns the number of rows collected.
func (a *Accumulator) Len() int {
	return len(a.rows)
}

// Finalize returns the table of every row added so far.
func (a *Accumulator) Finalize() Table {
	return a.builder.Finalize(append([]Row(nil), a.rows...))
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ClassName returns the CSS class of a color rule: "C", the first four hex
// digits of the MD5 of the field name, "_", then the label with characters
// not allowed in a class name replaced by "_". When a label had to be
// cleaned, "_" and the first four hex digits of the MD5 of the raw label are
// appended so that labels such as "a b" and "a_b" get distinct classes.
func ClassName(field, label string) string {
	class := "C" + shortHash(field) + "_" + cleanClass(label)
	if cleanClass(label) != label {
		class += "_" + shortHash(label)
	}
	return class
}

func shortHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:4]
}

func cleanClass(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, label)
}
