// =============================================================================
// Settlement Report Enricher - Main Entry Point
// =============================================================================
//
// This is the main entry point for the settlement report enricher CLI.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   enricher process       - Enrich all settlement reports in the input directory
//   enricher validate      - Validate configuration and input files without processing
//   enricher version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core pipeline logic (not for external import)
//   - pkg/           : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/settleops/settlement-enricher/cmd"
)

func main() {
	cmd.Execute()
}
