// =============================================================================
// Candidate Surveys - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   surveys version
//
// OUTPUT:
//   0.1.0
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the application version.
// Set at build time using ldflags:
//
//	go build -ldflags "-X 'github.com/ginjaninja78/candidate-surveys/cmd.Version=0.1.0'"
var Version = "0.1.0"

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
