// =============================================================================
// Candidate Surveys - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   surveys validate --responses responses.csv --config config.json [--strict]
//
// Resolves the configuration against the response header and reports every
// positional substitution and every field reference the header lacks.
// Nothing is written.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/candidate-surveys/internal/validation"
)

// strict fails validation on warnings as well as errors.
var strict bool

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration against a response file",
	Long: `The validate command resolves positional field references in the
configuration against the header of the response file and checks that every
field the configuration names exists. Errors fail the command; warnings are
only reported unless --strict is given.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(
		&responsesFile,
		"responses",
		"responses.csv",
		"Path to the response file (.csv or .xlsx)",
	)

	validateCmd.Flags().StringVar(
		&delimiter,
		"delimiter",
		",",
		"CSV delimiter: a single character or tab, pipe, semicolon, comma",
	)

	addWorkbookFlags(validateCmd)

	validateCmd.Flags().BoolVar(
		&strict,
		"strict",
		false,
		"Treat warnings as errors",
	)
}

// runValidate prints the substitutions and issues of one configuration.
func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	set, cfg, err := loadBatch(cfgFile, responsesFile)
	if err != nil {
		return err
	}

	if len(cfg.Substitutions) > 0 {
		fmt.Fprintln(out, "Substitutions:")
		for _, sub := range cfg.Substitutions {
			fmt.Fprintf(out, "  %s\n", sub)
		}
	}

	validator := validation.NewValidatorWithOptions(validation.Options{TreatWarningsAsErrors: strict})
	result := validator.CheckHeader(cfg, set.Header)
	if len(result.Issues) > 0 {
		fmt.Fprint(out, validation.FormatIssues(result.Issues))
	}
	if err := result.Err(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Configuration OK: %d column(s), %d record(s), %d warning(s)\n",
		len(set.Header), len(set.Records), result.WarningCount)
	return nil
}
