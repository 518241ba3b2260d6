// Package minifier implements the JS and CSS minifier external
// collaborators (spec.md §4.6, §6): pure byte-in/byte-out transforms.
// Grounded on the same esbuild API surface as internal/linker
// (wayli-app-fluxbase/cli/bundler/analyzer.go), here via api.Transform
// instead of api.Build since there is nothing to resolve or bundle — each
// input is already a fully concatenated blob.
package minifier

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// JSOptions configures the JS minifier (spec §4.6's
// "{fromString: true, drop_debugger: false}" option record).
type JSOptions struct {
	DropDebugger bool
}

// JS minifies a blob of concatenated JavaScript.
func JS(source []byte, opts JSOptions) ([]byte, error) {
	var drop api.Drop
	if opts.DropDebugger {
		drop = api.DropDebugger
	}
	result := api.Transform(string(source), api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Target:            api.ESNext,
		Drop:              drop,
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("js minify failed: %s", joinErrors(result.Errors))
	}
	return result.Code, nil
}

// CSS minifies a blob of concatenated CSS.
func CSS(source []byte) ([]byte, error) {
	result := api.Transform(string(source), api.TransformOptions{
		Loader:            api.LoaderCSS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("css minify failed: %s", joinErrors(result.Errors))
	}
	return result.Code, nil
}

func joinErrors(msgs []api.Message) string {
	var texts []string
	for _, m := range msgs {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "; ")
}
