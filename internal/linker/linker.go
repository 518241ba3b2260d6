// Package linker implements the JS-asset linker driver's external
// collaborator (spec.md §4.4): a pure function that takes a set of JS
// input files and an import map and returns the linked output files plus
// the computed export set.
//
// Grounded on wayli-app-fluxbase/cli/bundler/analyzer.go's use of
// github.com/evanw/esbuild/pkg/api: api.Build with Write:false and a
// custom OnResolve plugin. Here the plugin marks every symbol name present
// in the caller's import map as external, so esbuild never tries to
// resolve a package's upstream symbols itself — load-order-driven
// resolution across packages stays the bundler's responsibility, not
// esbuild's.
package linker

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// InputFile is one JS resource to link, carrying its in-memory source and
// the serve path it was heading to before linking.
type InputFile struct {
	Source    []byte
	ServePath string
}

// OutputFile is one linked JS file ready to become a bundle.Resource.
type OutputFile struct {
	Source    []byte
	ServePath string
}

// Options configures one Link call (spec §4.4 step 3's invocation
// parameters, minus the bundler-internal fields already folded into
// CombinedServePath/Name by the caller).
type Options struct {
	// UseGlobalNamespace is true only for the application PBR.
	UseGlobalNamespace bool
	// CombinedServePath is the serve path of the single combined output
	// file; empty for the application (which keeps its files separate).
	CombinedServePath string
	// ImportStubServePath is the serve path reserved for a module that
	// re-exports every symbol in Imports. Link does not read it, and no such
	// module is generated.
	ImportStubServePath string
	// Imports maps symbol name -> supplying package name, computed by the
	// linker driver from upstream exports.use[env].
	Imports map[string]string
	// Name is the package's name, or empty for the application.
	Name string
	// ForceExport is the package author's declared export set; the linker
	// guarantees these symbols survive even if nothing in-bundle imports
	// them yet.
	ForceExport map[string]bool
}

// Result is the linker's pure-function output (spec §4.4's
// "{files: [{source, servePath}], exports: [symbol names]}" contract).
type Result struct {
	Files   []OutputFile
	Exports map[string]bool
}

// Link bundles inputs with esbuild into one IIFE, treating every bare
// import whose path is a symbol named in opts.Imports as external. The
// reported export set is opts.ForceExport; the bundled output is not
// inspected for further exports.
func Link(inputs []InputFile, opts Options) (Result, error) {
	if len(inputs) == 0 {
		exports := map[string]bool{}
		for sym := range opts.ForceExport {
			exports[sym] = true
		}
		return Result{Exports: exports}, nil
	}

	entryContents := make(map[string]string, len(inputs))
	var entryOrder []string
	for i, in := range inputs {
		virtualPath := fmt.Sprintf("input-%d.js", i)
		entryContents[virtualPath] = string(in.Source)
		entryOrder = append(entryOrder, virtualPath)
	}

	importNames := make([]string, 0, len(opts.Imports))
	for sym := range opts.Imports {
		importNames = append(importNames, sym)
	}

	buildResult := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   concatEntries(entryContents, entryOrder),
			Sourcefile: combinedEntryName(opts),
			Loader:     api.LoaderJS,
		},
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		Format:            api.FormatIIFE,
		Platform:          api.PlatformBrowser,
		GlobalName:        globalName(opts),
		MinifyWhitespace:  false,
		MinifyIdentifiers: false,
		MinifySyntax:      false,
		Plugins: []api.Plugin{
			externalSymbolsPlugin(importNames),
		},
	})
	if len(buildResult.Errors) > 0 {
		var msgs []string
		for _, e := range buildResult.Errors {
			msgs = append(msgs, e.Text)
		}
		return Result{}, fmt.Errorf("link failed: %s", strings.Join(msgs, "; "))
	}

	exports := map[string]bool{}
	for sym := range opts.ForceExport {
		exports[sym] = true
	}

	var outputs []OutputFile
	for _, f := range buildResult.OutputFiles {
		path := opts.CombinedServePath
		if path == "" && len(inputs) > 0 {
			path = inputs[0].ServePath
		}
		outputs = append(outputs, OutputFile{Source: f.Contents, ServePath: path})
	}

	return Result{Files: outputs, Exports: exports}, nil
}

func combinedEntryName(opts Options) string {
	if opts.Name != "" {
		return opts.Name + ".js"
	}
	return "app.js"
}

func globalName(opts Options) string {
	if opts.UseGlobalNamespace {
		return ""
	}
	if opts.Name != "" {
		return "Package_" + sanitizeIdent(opts.Name)
	}
	return ""
}

func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func concatEntries(contents map[string]string, order []string) string {
	var b strings.Builder
	for _, name := range order {
		b.WriteString(contents[name])
		b.WriteString("\n;\n")
	}
	return b.String()
}

// externalSymbolsPlugin marks bare imports matching any name in symbols as
// external, so esbuild leaves them unresolved in the output; no module that
// satisfies them is generated.
func externalSymbolsPlugin(symbols []string) api.Plugin {
	names := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		names[s] = true
	}
	return api.Plugin{
		Name: "forge-external-imports",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `.*`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if names[args.Path] {
						return api.OnResolveResult{Path: args.Path, External: true}, nil
					}
					return api.OnResolveResult{}, nil
				})
		},
	}
}
