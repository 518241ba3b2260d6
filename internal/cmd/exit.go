// Package cmd provides command implementations for the forge CLI.
package cmd

import "errors"

// Exit codes. A non-empty error-string list from the bundler (spec §7)
// always maps to ExitBuildFailed; only configuration and unexpected errors
// get their own codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitConfigurationError indicates a missing or invalid required option.
	ExitConfigurationError = 2

	// ExitBuildFailed indicates the bundler returned a non-empty error list.
	ExitBuildFailed = 3
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitConfigurationError:
		return "Configuration Error"
	case ExitBuildFailed:
		return "Build Failed"
	default:
		return "Unknown"
	}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitGeneralError
}
