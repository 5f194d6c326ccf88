// =============================================================================
// Candidate Surveys - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (surveys)
//   ├── generateCmd (surveys generate-pdfs)
//   ├── validateCmd (surveys validate)
//   └── versionCmd  (surveys version)
//
// The root command owns the global flags and builds the logger shared by the
// subcommands.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the survey configuration file.
var cfgFile string

// responsesFile holds the path to the response file (.csv or .xlsx).
var responsesFile string

// verbose enables debug logging when set to true.
var verbose bool

// logger is built before any subcommand runs.
var logger = zap.NewNop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "surveys",
	Short: "Candidate Surveys - Turn questionnaire responses into per-candidate PDFs",
	Long: `Candidate Surveys reads candidate questionnaire responses exported from a
form tool and writes one formatted PDF per candidate, laid out according to a
configuration file.

Key Features:
  - Columns referenced by name or by position in the header
  - Questions shown only for some answers (conditional sections)
  - Sponsor logo grid in every document footer
  - Optional color-coded HTML summary of selected columns

Example Usage:
  surveys generate-pdfs --responses responses.csv --config config.json
  surveys validate --responses responses.csv --config config.json`,
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// newLogger builds a production logger, at debug level when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: the survey configuration (.json, .yaml or .yml).
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.json",
		"Path to the survey configuration file",
	)

	// --verbose flag: enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
