// =============================================================================
// TaxEase Analyzer - Main Entry Point
// =============================================================================
//
// USAGE:
//   taxease analyze <file|dir>  - Analyze sales exports and write reports
//   taxease scan <file>         - Flag large amounts in free text
//   taxease serve               - Start the upload server
//   taxease tables              - Print the reference tables
//   taxease version             - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Analysis engine, input adapters, reports and server
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/taxease/cmd"
)

func main() {
	cmd.Execute()
}
