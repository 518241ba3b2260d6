package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinifyProducesOneCacheableEntryPerKind(t *testing.T) {
	b := NewBundle("/app", "none", nil, nil)
	b.Files.Client["/a.js"] = []byte("var a = 1;")
	b.Files.Client["/b.js"] = []byte("var b = 2;")
	b.JS.Client = []string{"/a.js", "/b.js"}

	b.Files.Client["/a.css"] = []byte("body { color: red; }")
	b.CSS = []string{"/a.css"}

	require.NoError(t, Minify(b))

	assert.Empty(t, b.JS.Client)
	assert.Empty(t, b.CSS)
	assert.Len(t, b.Manifest, 2)

	var jsEntries, cssEntries int
	for _, m := range b.Manifest {
		assert.True(t, *m.Cacheable)
		assert.Len(t, m.Hash, 40)
		switch m.Type {
		case "js":
			jsEntries++
		case "css":
			cssEntries++
		}
	}
	assert.Equal(t, 1, jsEntries)
	assert.Equal(t, 1, cssEntries)

	assert.Empty(t, b.Files.Client["/a.js"])
	_, stillThere := b.Files.Client["/a.js"]
	assert.False(t, stillThere)
}

func TestMinifyNoopWhenNothingToMinify(t *testing.T) {
	b := NewBundle("/app", "none", nil, nil)
	require.NoError(t, Minify(b))
	assert.Empty(t, b.Manifest)
}
