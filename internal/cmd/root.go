package cmd

import (
	"github.com/spf13/cobra"

	"github.com/forgepack/forge/internal/output"
)

// Global flags shared across all subcommands.
var (
	verbose    bool
	configFile string
)

// NewRootCmd constructs the forge root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "forge",
		Short:         "forge bundles a web application into a runnable artifact",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetupLogging(verbose)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug-level) logging")
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to a forge config file (default: ~/.forge/config.yaml)")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newVersionCmd())

	return root
}
