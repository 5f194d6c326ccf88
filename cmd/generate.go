// =============================================================================
// Candidate Surveys - Generate Command
// =============================================================================
//
// This file defines the 'generate-pdfs' command, the main command of the
// tool. It turns every row of a response file into one candidate document.
//
// COMMAND USAGE:
//   surveys generate-pdfs [flags]
//
// FLAGS:
//   --responses    : Response file (.csv or .xlsx)
//   --logos        : Directory of sponsor logos
//   --output       : Root directory of the generated documents
//   --summary      : Summary table path (default <output>/summary.html)
//   --delimiter    : CSV delimiter
//   --sheet        : Worksheet of an XLSX response file (1-based)
//   --header-row   : Header row of an XLSX response file (1-based)
//   --not-answered : Print "Not answered." under empty answers
//   --dedupe-paths : Rename documents whose path is already used
//   --font         : UTF-8 TrueType font for text outside cp1252
//
// PROCESSING PIPELINE:
//   1. Load the configuration file
//   2. Read the response file
//   3. Resolve positional field references against the header
//   4. Lay out the logo grid
//   5. Generate one document per record, then the summary table
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/candidate-surveys/internal/config"
	"github.com/ginjaninja78/candidate-surveys/internal/csvparser"
	"github.com/ginjaninja78/candidate-surveys/internal/generator"
	"github.com/ginjaninja78/candidate-surveys/internal/logogrid"
	"github.com/ginjaninja78/candidate-surveys/internal/pdfwriter"
	"github.com/ginjaninja78/candidate-surveys/internal/types"
	"github.com/ginjaninja78/candidate-surveys/internal/xlsxparser"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// logosDir is the directory holding the sponsor logos.
var logosDir string

// outputDir is the root of the generated document tree.
var outputDir string

// summaryPath is where the summary table is written.
var summaryPath string

// delimiter separates cells in a CSV response file.
var delimiter string

// sheetNumber and headerRow locate the responses in an XLSX workbook.
// Both count from 1, like the workbook's own sheet tabs and row numbers.
var sheetNumber int
var headerRow int

// notAnswered forces the "Not answered." marker on.
var notAnswered bool

// dedupePaths renames documents whose path was already used in the batch.
var dedupePaths bool

// fontPath is a UTF-8 TrueType font used instead of the core fonts.
var fontPath string

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

// generateCmd represents the 'generate-pdfs' command.
var generateCmd = &cobra.Command{
	Use:   "generate-pdfs",
	Short: "Generate one PDF per candidate response",
	Long: `The generate-pdfs command reads the response file, resolves the
configuration against its header and writes one PDF per response under the
output directory. The directory tree below the output directory is taken from
the file_structure fields of each candidate.

When the configuration has an html_table section, a color-coded summary table
of all candidates is written as well.

The batch stops at the first failing record. Documents written before the
failure are kept.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(
		&responsesFile,
		"responses",
		"responses.csv",
		"Path to the response file (.csv or .xlsx)",
	)

	generateCmd.Flags().StringVar(
		&logosDir,
		"logos",
		"logos",
		"Directory of sponsor logos shown in every footer",
	)

	generateCmd.Flags().StringVar(
		&outputDir,
		"output",
		"output",
		"Root directory of the generated documents",
	)

	generateCmd.Flags().StringVar(
		&summaryPath,
		"summary",
		"",
		"Path of the HTML summary table (default <output>/summary.html)",
	)

	generateCmd.Flags().StringVar(
		&delimiter,
		"delimiter",
		",",
		"CSV delimiter: a single character or tab, pipe, semicolon, comma",
	)

	addWorkbookFlags(generateCmd)

	generateCmd.Flags().BoolVar(
		&notAnswered,
		"not-answered",
		false,
		"Print \"Not answered.\" under empty answers",
	)

	generateCmd.Flags().BoolVar(
		&dedupePaths,
		"dedupe-paths",
		false,
		"Append -2, -3, ... to document paths already used in the batch",
	)

	generateCmd.Flags().StringVar(
		&fontPath,
		"font",
		"",
		"UTF-8 TrueType font for names and answers outside Western European scripts",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runGenerate runs the generation pipeline.
func runGenerate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	set, cfg, err := loadBatch(cfgFile, responsesFile)
	if err != nil {
		return err
	}
	if notAnswered {
		cfg.PrintNotAnswered = true
	}

	grid, err := logogrid.FromDirectory(logosDir, cfg.LogoColumns)
	if err != nil {
		return fmt.Errorf("failed to lay out logos: %w", err)
	}
	logger.Debug("Laid out logo grid",
		zap.String("dir", logosDir),
		zap.Int("rows", len(grid.Rows)),
		zap.Float64("cell_size", grid.CellSize))

	summary := summaryPath
	if summary == "" {
		summary = filepath.Join(outputDir, "summary.html")
	}

	pageOptions := pdfwriter.DefaultPageOptions()
	pageOptions.UnicodeFont = fontPath

	gen, err := generator.New(cfg, grid, pdfwriter.New(pageOptions, logger), logger, generator.Options{
		OutputDir:   outputDir,
		SummaryPath: summary,
		DedupePaths: dedupePaths,
	})
	if err != nil {
		return err
	}

	result, err := gen.Run(cmd.Context(), set)
	if err != nil {
		if result != nil && len(result.Documents) > 0 {
			fmt.Fprintf(out, "%d document(s) written before the failure\n", len(result.Documents))
		}
		return err
	}

	fmt.Fprintln(out, result.String())
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// addWorkbookFlags registers the flags that locate responses in a workbook.
func addWorkbookFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(
		&sheetNumber,
		"sheet",
		1,
		"Worksheet of an XLSX response file, counting from 1",
	)

	cmd.Flags().IntVar(
		&headerRow,
		"header-row",
		1,
		"Header row of an XLSX response file, counting from 1",
	)
}

// loadBatch reads the configuration and the responses and resolves one
// against the other. The response reader is configured from the command
// flags.
//
// PARAMETERS:
//   - configPath: The configuration file.
//   - responsesPath: The response file; .xlsx is read as a workbook, anything
//     else as CSV.
//
// RETURNS:
//   - The responses and the resolved configuration.
//   - An error if any step fails.
func loadBatch(configPath, responsesPath string) (*types.ResponseSet, *config.Resolved, error) {
	raw, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	layout := xlsxparser.SheetLayout{SheetIndex: sheetNumber - 1, HeaderRow: headerRow - 1}
	set, err := readResponses(responsesPath, csvparser.Settings{Delimiter: delimiter}, layout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read responses: %w", err)
	}
	logger.Info("Read responses",
		zap.String("path", responsesPath),
		zap.Int("columns", len(set.Header)),
		zap.Int("records", len(set.Records)))

	cfg, err := config.Resolve(raw, set.Header)
	if err != nil {
		return nil, nil, err
	}
	for _, sub := range cfg.Substitutions {
		logger.Info("Resolved positional field",
			zap.String("key", sub.Key),
			zap.Int("index", sub.Index),
			zap.String("name", sub.Name))
	}

	return set, cfg, nil
}

// readResponses picks the reader by file extension.
func readResponses(path string, settings csvparser.Settings, layout xlsxparser.SheetLayout) (*types.ResponseSet, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return xlsxparser.ParseWithLayout(path, layout)
	}
	return csvparser.Parse(path, settings)
}
