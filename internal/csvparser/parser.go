// =============================================================================
// Candidate Surveys - CSV Response Parser
// =============================================================================
//
// This module reads questionnaire responses exported as delimited text (for
// example a Google Forms CSV download). The first row is the header; every
// following non-empty row is one candidate's response.
//
// FEATURES:
//   - Configurable delimiter (comma, tab, pipe, semicolon)
//   - Quoted cells spanning several lines (long-form answers)
//   - UTF-8 byte order mark removal on the first header cell
//   - Ragged rows (short rows are padded, long rows are truncated)
//
// Values are kept exactly as written. Trimming is the job of whoever
// consumes them: candidate details are trimmed, conditional comparisons are
// not.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/candidate-surveys/internal/types"
)

// utf8BOM is stripped from the start of the first header cell.
const utf8BOM = "\uFEFF"

// Settings controls how a response file is parsed.
type Settings struct {
	// Delimiter separates cells. Accepts a single character or one of the
	// names "tab", "pipe", "semicolon", "comma".
	// Default: ","
	Delimiter string
}

// DefaultSettings returns comma-delimited settings.
func DefaultSettings() Settings {
	return Settings{Delimiter: ","}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a response file from disk.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The parsing settings.
//
// RETURNS:
//   - The header and records of the file.
//   - An error if the file cannot be opened or is not valid CSV.
func Parse(filePath string, settings Settings) (*types.ResponseSet, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	set, err := Read(bufio.NewReader(file), settings)
	if err != nil {
		return nil, err
	}
	set.Source = filePath
	return set, nil
}

// Read parses responses from any reader.
func Read(r io.Reader, settings Settings) (*types.ResponseSet, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	header := cleanHeaders(allRows[0])
	records := make([]types.Record, 0, len(allRows)-1)
	for _, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}
		records = append(records, types.NewRecord(header, row))
	}

	return &types.ResponseSet{Header: header, Records: records}, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Allow a variable number of fields per row; NewRecord pads and trims.
	reader.FieldsPerRecord = -1

	// Survey exports are not always strict about quoting.
	reader.LazyQuotes = true
}

// Delimiter maps a delimiter setting to the rune the CSV reader needs.
func Delimiter(setting string) rune {
	switch strings.ToLower(setting) {
	case "", ",", "comma":
		return ','
	case "\\t", "\t", "tab":
		return '\t'
	case "|", "pipe":
		return '|'
	case ";", "semicolon":
		return ';'
	default:
		return []rune(setting)[0]
	}
}

// cleanHeaders strips a byte order mark and names empty header cells.
//
// Names are otherwise kept verbatim so that configuration written against
// the raw export still matches.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		if strings.TrimSpace(header) == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
