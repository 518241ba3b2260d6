// Package cmdutil provides shared command utilities for the build command.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BuildFlags holds the flags that map 1:1 onto the bundler's entry-point
// options record (spec §6 "Entry-point contract").
type BuildFlags struct {
	Release         string
	NodeModulesMode string
	PackagesRoot    string
	Registry        string
	TestPackages    []string
	NoMinify        bool
	StrictServerCSS bool
}

// AddTo registers the build flags on the given cobra command.
func (f *BuildFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Release, "release", "none",
		`Release identifier pinning package versions ("none" for local-only)`)
	cmd.Flags().StringVar(&f.NodeModulesMode, "node-modules-mode", "symlink",
		"Native module install strategy: skip, copy, or symlink")
	cmd.Flags().StringArrayVar(&f.TestPackages, "test-package", nil,
		"Package to also bundle in its test role (can be repeated)")
	cmd.Flags().StringVar(&f.PackagesRoot, "packages-root", "",
		"Directory to search for packages not found under <appDir>/packages (defaults to config)")
	cmd.Flags().StringVar(&f.Registry, "registry", "",
		"Release warehouse URL used to resolve pinned package versions (defaults to config)")
	cmd.Flags().BoolVar(&f.NoMinify, "no-minify", false,
		"Skip the minifier driver")
	cmd.Flags().BoolVar(&f.StrictServerCSS, "strict-server-css", false,
		"Treat server-side CSS resources as a Handler error instead of dropping them")
}

// Validate checks the flag combination the way a programming-error
// precondition would be checked at the entry-point boundary (spec §6).
func (f *BuildFlags) Validate() error {
	switch f.NodeModulesMode {
	case "skip", "copy", "symlink":
	default:
		return fmt.Errorf("--node-modules-mode must be skip, copy, or symlink, got %q", f.NodeModulesMode)
	}
	if f.Release == "" {
		return fmt.Errorf("--release is required")
	}
	return nil
}

// ResolveAppDir returns the application directory from command args,
// defaulting to the current directory.
func ResolveAppDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
