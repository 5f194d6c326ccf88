// =============================================================================
// Candidate Surveys - XLSX Response Parser
// =============================================================================
//
// This module reads questionnaire responses saved as an Excel workbook. The
// first sheet is used; its first row is the header and every following
// non-empty row is one candidate's response.
//
// SHEET STRUCTURE (Expected Layout):
//
//   | Column A  | Column B | Column C | Column D      | ...
//   |-----------|----------|----------|---------------|
//   | Timestamp | Name     | County   | Why run?      | ...
//   | 3/1/2026  | Ada      | Polk     | To serve.     | ...
//
// Cell values are read as displayed text. Like the CSV reader, values are not
// trimmed here.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

// =============================================================================
// SHEET CONFIGURATION
// =============================================================================

// SheetLayout defines where the header and data live in the workbook.
type SheetLayout struct {
	// SheetIndex is the 0-based index of the sheet to read.
	// Default: 0 (first sheet)
	SheetIndex int

	// HeaderRow is the row number containing column headers (0-based).
	// Default: 0 (Row 1)
	HeaderRow int
}

// DefaultSheetLayout returns the layout of a plain survey export.
func DefaultSheetLayout() SheetLayout {
	return SheetLayout{
		SheetIndex: 0, // First sheet
		HeaderRow:  0, // Row 1
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads responses from the first sheet of an XLSX file.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//
// RETURNS:
//   - The header and records of the sheet.
//   - An error if the file cannot be opened, has no sheets, or the header
//     row is missing.
func Parse(filePath string) (*types.ResponseSet, error) {
	return ParseWithLayout(filePath, DefaultSheetLayout())
}

// ParseWithLayout reads responses using a custom sheet layout.
func ParseWithLayout(filePath string, layout SheetLayout) (*types.ResponseSet, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	set, err := parseSheet(f, layout)
	if err != nil {
		return nil, err
	}
	set.Source = filePath
	return set, nil
}

// parseSheet reads the configured sheet of an open workbook.
func parseSheet(f *excelize.File, layout SheetLayout) (*types.ResponseSet, error) {
	if layout.HeaderRow < 0 {
		return nil, fmt.Errorf("header row must not be negative, got %d", layout.HeaderRow)
	}

	sheetName := f.GetSheetName(layout.SheetIndex)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheet at index %d", layout.SheetIndex)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) <= layout.HeaderRow {
		return nil, fmt.Errorf("sheet %q has no header row", sheetName)
	}

	header := cleanHeaders(rows[layout.HeaderRow])
	records := make([]types.Record, 0, len(rows)-layout.HeaderRow-1)
	for _, row := range rows[layout.HeaderRow+1:] {
		// GetRows omits trailing empty cells; NewRecord pads.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}
		records = append(records, types.NewRecord(header, row))
	}

	return &types.ResponseSet{Header: header, Records: records}, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders names empty header cells after their column letter.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		if strings.TrimSpace(header) == "" {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				name = fmt.Sprintf("%d", i+1)
			}
			header = "Column_" + name
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
