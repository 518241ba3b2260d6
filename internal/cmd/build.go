package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgepack/forge/internal/bundle"
	"github.com/forgepack/forge/internal/cmdutil"
	"github.com/forgepack/forge/internal/config"
	"github.com/forgepack/forge/internal/fsutil"
	"github.com/forgepack/forge/internal/output"
	"github.com/forgepack/forge/internal/pkgmodel"
)

func newBuildCmd() *cobra.Command {
	flags := &cmdutil.BuildFlags{}
	var serverRuntimeDir, nativeModuleRoot, bundleVersionFile string

	cmd := &cobra.Command{
		Use:   "build <appDir> <outputPath>",
		Short: "Bundle an application directory into a runnable artifact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.Validate(); err != nil {
				return NewExitError(err, ExitConfigurationError)
			}

			appDir, outputPath := args[0], args[1]

			cfg, err := config.NewLoader().LoadWithDefaults(configFile)
			if err != nil {
				return NewExitError(err, ExitConfigurationError)
			}

			var nodeModulesModeFlag, packagesRootFlag, registryFlag string
			if cmd.Flags().Changed("node-modules-mode") {
				nodeModulesModeFlag = flags.NodeModulesMode
			}
			if cmd.Flags().Changed("packages-root") {
				packagesRootFlag = flags.PackagesRoot
			}
			if cmd.Flags().Changed("registry") {
				registryFlag = flags.Registry
			}
			resolved := config.ResolveAll(config.ResolveOptions{
				PackagesRootFlag:    packagesRootFlag,
				RegistryFlag:        registryFlag,
				NodeModulesModeFlag: nodeModulesModeFlag,
				Config:              cfg,
			})
			output.Debug("resolved configuration",
				"packagesRoot", resolved.PackagesRoot.Value, "packagesRootSource", resolved.PackagesRoot.Source,
				"registry", resolved.Registry.Value, "registrySource", resolved.Registry.Source,
				"nodeModulesMode", resolved.NodeModulesMode.Value, "nodeModulesModeSource", resolved.NodeModulesMode.Source)

			loader := pkgmodel.NewLoader(resolved.PackagesRoot.Value)

			options := bundle.Options{
				Release:         flags.Release,
				NodeModulesMode: resolved.NodeModulesMode.Value,
				TestPackages:    flags.TestPackages,
				NoMinify:        flags.NoMinify || cfg.Build.NoMinify,
				StrictServerCSS: flags.StrictServerCSS || cfg.Build.StrictServerCSS,
			}

			writerOpts := bundle.WriterOptions{
				ServerRuntimeDir:  serverRuntimeDir,
				NativeModuleRoot:  nativeModuleRoot,
				BundleVersionFile: bundleVersionFile,
				Ignores:           fsutil.DefaultIgnoreList(),
			}

			output.Debug("starting bundle", "appDir", appDir, "outputPath", outputPath)
			var errs []string
			spinErr := output.RunWithSpinner(context.Background(), func() error {
				errs = bundle.Run(appDir, outputPath, options, loader, writerOpts)
				return nil
			}, output.WithTitle("Bundling "+appDir))
			if spinErr != nil {
				return NewExitError(spinErr, ExitGeneralError)
			}
			if len(errs) > 0 {
				cmdutil.PrintBuildErrors(errs)
				return NewExitError(fmt.Errorf("%s", errs[0]), ExitBuildFailed)
			}

			cmdutil.PrintBuildSummary(outputPath, 0)
			return nil
		},
	}

	flags.AddTo(cmd)
	cmd.Flags().StringVar(&serverRuntimeDir, "server-runtime-dir", "", "Directory containing the server runtime to embed under server/")
	cmd.Flags().StringVar(&nativeModuleRoot, "native-module-root", "", "Prebuilt native-module root to link or copy into server/node_modules")
	cmd.Flags().StringVar(&bundleVersionFile, "bundle-version-file", "", "Platform bundle-version marker file to copy into server/.bundle_version.txt")

	return cmd
}
