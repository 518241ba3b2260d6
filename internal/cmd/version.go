package cmd

import (
	"github.com/spf13/cobra"

	"github.com/forgepack/forge/internal/output"
	"github.com/forgepack/forge/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print forge's version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output.Println(version.Get().String())
			return nil
		},
	}
}
