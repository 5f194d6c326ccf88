// =============================================================================
// Candidate Surveys - Main Entry Point
// =============================================================================
//
// USAGE:
//   surveys generate-pdfs  - Write one PDF per candidate response
//   surveys validate       - Check a configuration against a response file
//   surveys version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : configuration, readers, document assembly, writers
//   - pkg/       : shared file-system utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/candidate-surveys/cmd"
)

func main() {
	cmd.Execute()
}
