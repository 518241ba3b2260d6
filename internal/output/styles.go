package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette — named constants for all ANSI 256 colors used in the CLI.
// These are the single source of truth; never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: package names, serve paths.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the resolved, ordered, linked and written stage
	// statuses (bright, high-visibility).
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "skipped" stage status (medium visibility).
	ColorYellow = lipgloss.Color("220")

	// ColorRed is a plain red; the "failed" stage status uses ColorBoldRed.
	ColorRed = lipgloss.Color("196")

	// ColorBoldRed is used for fatal error lines (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark (✔).
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles — map domain concepts to visual presentation.
var (
	// StyleNoun styles identifiable nouns (package names, serve paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (resolving, ordering, linking, writing).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (scope prefixes, separators, timestamps).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Stage status constants, used when reporting pipeline progress on stdout.
const (
	StatusResolved = "resolved"
	StatusOrdered  = "ordered"
	StatusLinked   = "linked"
	StatusWritten  = "written"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// StatusStyle returns the lipgloss style for a given stage status string.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusResolved, StatusOrdered, StatusLinked, StatusWritten:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minPackageColumnWidth is the minimum width for the package identifier column
// before the status suffix. This ensures status words align consistently.
const minPackageColumnWidth = 40

// FormatPackageLine renders a (role, package) identifier with a right-aligned,
// color-coded status suffix.
//
// Format: p:<role>:<package>  <status>
//
// The "p:" prefix is dim, the identifier is cyan, and the status uses StatusStyle.
func FormatPackageLine(role, pkgID, status string) string {
	path := fmt.Sprintf("%s:%s", role, pkgID)

	padding := minPackageColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	prefix := StyleDim.Render("p:")
	styledPath := StyleNoun.Render(path)
	styledStatus := StatusStyle(status).Render(status)

	return prefix + styledPath + strings.Repeat(" ", padding) + styledStatus
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatErrorList renders the orchestrator's error-string list the way the
// CLI prints a failed build: one bold-red bullet per line.
func FormatErrorList(errs []string) string {
	style := lipgloss.NewStyle().Foreground(ColorBoldRed)
	var b strings.Builder
	for _, e := range errs {
		b.WriteString(style.Render("✘ " + e))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
