package minifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSMinifiesAndShrinks(t *testing.T) {
	source := []byte("function add(firstNumber, secondNumber) {\n  return firstNumber + secondNumber;\n}\n")
	out, err := JS(source, JSOptions{})
	require.NoError(t, err)
	assert.Less(t, len(out), len(source))
	assert.NotContains(t, string(out), "firstNumber")
}

func TestJSDropDebuggerRemovesStatement(t *testing.T) {
	source := []byte("function f() { debugger; return 1; }")
	out, err := JS(source, JSOptions{DropDebugger: true})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "debugger")
}

func TestJSKeepsDebuggerByDefault(t *testing.T) {
	source := []byte("function f() { debugger; return 1; }")
	out, err := JS(source, JSOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(out), "debugger")
}

func TestJSSyntaxErrorIsReported(t *testing.T) {
	_, err := JS([]byte("function( {{{"), JSOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "js minify failed")
}

func TestCSSMinifiesAndShrinks(t *testing.T) {
	source := []byte("body {\n  color: red;\n  margin: 0;\n}\n")
	out, err := CSS(source)
	require.NoError(t, err)
	assert.Less(t, len(out), len(source))
	assert.True(t, strings.Contains(string(out), "red"))
}

func TestCSSSyntaxErrorIsReported(t *testing.T) {
	_, err := CSS([]byte("body { color: ;;; "))
	if err == nil {
		t.Skip("esbuild's CSS parser tolerates this input")
	}
	assert.Contains(t, err.Error(), "css minify failed")
}
