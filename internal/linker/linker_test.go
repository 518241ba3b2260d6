package linker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkZeroInputsReturnsForceExportOnly(t *testing.T) {
	result, err := Link(nil, Options{
		ForceExport: map[string]bool{"X": true, "Y": true},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, map[string]bool{"X": true, "Y": true}, result.Exports)
}

func TestLinkBundlesAndAppliesGlobalName(t *testing.T) {
	inputs := []InputFile{
		{Source: []byte("var X = 1;"), ServePath: "/packages/a.js"},
	}
	result, err := Link(inputs, Options{
		CombinedServePath: "/packages/a.js",
		Name:              "a",
		ForceExport:       map[string]bool{"X": true},
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "/packages/a.js", result.Files[0].ServePath)
	assert.Contains(t, string(result.Files[0].Source), "Package_a")
	assert.Equal(t, map[string]bool{"X": true}, result.Exports)
}

func TestLinkMarksImportedSymbolsExternal(t *testing.T) {
	inputs := []InputFile{
		{Source: []byte("console.log(Shared);"), ServePath: "/packages/b.js"},
	}
	result, err := Link(inputs, Options{
		CombinedServePath:   "/packages/b.js",
		ImportStubServePath: "/packages/global-imports.js",
		Imports:             map[string]string{"Shared": "a"},
		Name:                "b",
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	// Shared must survive unresolved (esbuild doesn't inline a definition
	// for it since it was never declared in the input), not be dropped.
	assert.Contains(t, string(result.Files[0].Source), "Shared")
}

func TestLinkReturnsErrorOnSyntaxError(t *testing.T) {
	inputs := []InputFile{
		{Source: []byte("function( {{{"), ServePath: "/packages/bad.js"},
	}
	_, err := Link(inputs, Options{Name: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link failed")
}

func TestSanitizeIdentReplacesNonAlnum(t *testing.T) {
	assert.Equal(t, "my_pkg_name", sanitizeIdent("my-pkg.name"))
	assert.Equal(t, "abc123", sanitizeIdent("abc123"))
}

func TestCombinedEntryNameFallsBackToAppJS(t *testing.T) {
	assert.Equal(t, "app.js", combinedEntryName(Options{}))
	assert.Equal(t, "widgets.js", combinedEntryName(Options{Name: "widgets"}))
}

func TestGlobalNameEmptyForApplication(t *testing.T) {
	assert.Equal(t, "", globalName(Options{UseGlobalNamespace: true, Name: "anything"}))
	assert.Equal(t, "", globalName(Options{}))
	assert.True(t, strings.HasPrefix(globalName(Options{Name: "widgets"}), "Package_"))
}

func TestConcatEntriesPreservesOrder(t *testing.T) {
	out := concatEntries(map[string]string{"a.js": "A", "b.js": "B"}, []string{"a.js", "b.js"})
	assert.Equal(t, "A\n;\nB\n;\n", out)
}
