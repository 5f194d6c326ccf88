package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/candidate-surveys/internal/csvparser"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
	"github.com/ginjaninja78/candidate-surveys/internal/xlsxparser"
)

const testConfig = `{
  "file_structure": [2, 1],
  "candidate_details": [1, 2],
  "question_overrides": {"3": "What is your top priority?"},
  "ignored_fields": ["Timestamp"],
  "html_table": {"cols": ["Name", "County"]},
  "name": "Voter Guide"
}`

const testResponses = "Timestamp,Name,County,Priority\n" +
	"t1,Ada,Polk,Roads\n" +
	"t2,Grace,Story,\n"

// fixture writes a config, a response file and an empty logo directory.
func fixture(t *testing.T, configDoc, responses string) (dir, configPath, responsesPath string) {
	t.Helper()
	dir = t.TempDir()
	configPath = filepath.Join(dir, "config.json")
	responsesPath = filepath.Join(dir, "responses.csv")
	require.NoError(t, os.WriteFile(configPath, []byte(configDoc), 0o644))
	require.NoError(t, os.WriteFile(responsesPath, []byte(responses), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "logos"), 0o755))
	return dir, configPath, responsesPath
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		summaryPath = ""
		notAnswered = false
		dedupePaths = false
		strict = false
		delimiter = ","
		sheetNumber = 1
		headerRow = 1
		fontPath = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "0.1.0\n", out)
}

func TestValidate_ReportsSubstitutions(t *testing.T) {
	_, configPath, responsesPath := fixture(t, testConfig, testResponses)

	out, err := execute(t, "validate", "--config", configPath, "--responses", responsesPath)
	require.NoError(t, err)

	assert.Contains(t, out, `file_structure: replaced 2 with "County"`)
	assert.Contains(t, out, `question_overrides: replaced 3 with "Priority"`)
	assert.Contains(t, out, "Configuration OK: 4 column(s), 2 record(s)")
}

func TestValidate_MissingColumn(t *testing.T) {
	_, configPath, responsesPath := fixture(t, testConfig, "Timestamp,Name,County,Priority\nt1,Ada,Polk,Roads\n")
	badConfig := strings.Replace(testConfig, `"cols": ["Name", "County"]`, `"cols": ["Name", "Party"]`, 1)
	require.NoError(t, os.WriteFile(configPath, []byte(badConfig), 0o644))

	out, err := execute(t, "validate", "--config", configPath, "--responses", responsesPath)

	var missing *types.MissingFieldError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "Party", missing.Field)
	assert.Contains(t, out, "[ERROR] html_table")
}

func TestValidate_StrictFailsOnWarnings(t *testing.T) {
	withStale := strings.Replace(testConfig, `"ignored_fields": ["Timestamp"]`, `"ignored_fields": ["Timestamp", "Retired"]`, 1)
	_, configPath, responsesPath := fixture(t, withStale, testResponses)

	out, err := execute(t, "validate", "--config", configPath, "--responses", responsesPath)
	require.NoError(t, err)
	assert.Contains(t, out, "[WARNING] ignored_fields")
	assert.Contains(t, out, "1 warning(s)")

	out, err = execute(t, "validate", "--config", configPath, "--responses", responsesPath, "--strict")
	var missing *types.MissingFieldError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "Retired", missing.Field)
	assert.Contains(t, out, "[ERROR] ignored_fields")
}

func TestValidate_WorkbookHeaderRow(t *testing.T) {
	_, configPath, _ := fixture(t, testConfig, testResponses)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Candidate Questionnaire 2026"},
		{"Timestamp", "Name", "County", "Priority"},
		{"t1", "Ada", "Polk", "Roads"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	workbook := filepath.Join(t.TempDir(), "responses.xlsx")
	require.NoError(t, f.SaveAs(workbook))

	out, err := execute(t, "validate", "--config", configPath, "--responses", workbook, "--header-row", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration OK: 4 column(s), 1 record(s)")

	_, err = execute(t, "validate", "--config", configPath, "--responses", workbook, "--sheet", "2")
	assert.Error(t, err)
}

func TestValidate_OutOfRangeIndex(t *testing.T) {
	_, configPath, responsesPath := fixture(t, strings.Replace(testConfig, "[2, 1]", "[9, 1]", 1), testResponses)

	_, err := execute(t, "validate", "--config", configPath, "--responses", responsesPath)

	var cfgErr *types.ConfigError
	assert.True(t, errors.As(err, &cfgErr), "got %v", err)
}

func TestGenerate_WritesDocumentsAndSummary(t *testing.T) {
	dir, configPath, responsesPath := fixture(t, testConfig, testResponses)
	output := filepath.Join(dir, "output")

	out, err := execute(t, "generate-pdfs",
		"--config", configPath,
		"--responses", responsesPath,
		"--logos", filepath.Join(dir, "logos"),
		"--output", output,
		"--not-answered",
	)
	require.NoError(t, err)

	for _, path := range []string{
		filepath.Join(output, "Polk", "Ada.pdf"),
		filepath.Join(output, "Story", "Grace.pdf"),
	} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), path)
	}
	assert.FileExists(t, filepath.Join(output, "summary.html"))
	assert.Contains(t, out, "2 document(s) written")
}

func TestGenerate_MissingLogoDirectory(t *testing.T) {
	dir, configPath, responsesPath := fixture(t, testConfig, testResponses)

	_, err := execute(t, "generate-pdfs",
		"--config", configPath,
		"--responses", responsesPath,
		"--logos", filepath.Join(dir, "no-such-dir"),
		"--output", filepath.Join(dir, "output"),
	)

	var imgErr *types.ImageReadError
	assert.True(t, errors.As(err, &imgErr), "got %v", err)
	assert.NoDirExists(t, filepath.Join(dir, "output"))
}

func TestGenerate_MissingFont(t *testing.T) {
	dir, configPath, responsesPath := fixture(t, testConfig, testResponses)

	_, err := execute(t, "generate-pdfs",
		"--config", configPath,
		"--responses", responsesPath,
		"--logos", filepath.Join(dir, "logos"),
		"--output", filepath.Join(dir, "output"),
		"--font", filepath.Join(dir, "missing.ttf"),
	)

	var writeErr *types.WriteError
	require.True(t, errors.As(err, &writeErr), "got %v", err)
	assert.NoFileExists(t, filepath.Join(dir, "output", "Polk", "Ada.pdf"))
}

func TestReadResponses_PicksReaderByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "responses.txt")
	require.NoError(t, os.WriteFile(path, []byte("Name|County\nAda|Polk\n"), 0o644))

	set, err := readResponses(path, csvparser.Settings{Delimiter: "pipe"}, xlsxparser.DefaultSheetLayout())
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "County"}, set.Header)
	assert.Len(t, set.Records, 1)
}
