package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error returns success", nil, ExitSuccess},
		{"unknown error returns general error", errors.New("something went wrong"), ExitGeneralError},
		{"exit error with custom code", NewExitError(errors.New("custom error"), 42), 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCodeFromError(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	originalErr := errors.New("original error")
	exitErr := NewExitError(originalErr, ExitConfigurationError)

	t.Run("Error returns wrapped error message", func(t *testing.T) {
		assert.Equal(t, "original error", exitErr.Error())
	})

	t.Run("Unwrap returns original error", func(t *testing.T) {
		assert.Equal(t, originalErr, errors.Unwrap(exitErr))
	})

	t.Run("errors.Is works with unwrapped error", func(t *testing.T) {
		assert.True(t, errors.Is(exitErr, originalErr))
	})
}

func TestExitCodeName(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{ExitSuccess, "Success"},
		{ExitGeneralError, "General Error"},
		{ExitConfigurationError, "Configuration Error"},
		{ExitBuildFailed, "Build Failed"},
		{999, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCodeName(tt.code))
		})
	}
}
