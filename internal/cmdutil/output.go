package cmdutil

import (
	"fmt"

	"github.com/forgepack/forge/internal/output"
)

// PrintBuildErrors prints the orchestrator's error-string list in the
// CLI's failure format (spec §7 "user-visible failure shape").
func PrintBuildErrors(errs []string) {
	output.Error("build failed")
	output.Println(output.FormatErrorList(errs))
}

// PrintBuildSummary prints a one-line success summary once the bundle has
// been written.
func PrintBuildSummary(outputPath string, manifestEntries int) {
	output.Println(output.FormatCheckmark(
		fmt.Sprintf("bundled %d manifest entries to %s", manifestEntries, outputPath)))
}
