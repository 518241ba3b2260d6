package bundle

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/forgepack/forge/internal/minifier"
)

// Minify concatenates client JS and CSS and runs them through the
// external minifiers, emitting fingerprinted cacheable entries (spec §4.6
// C8 Minifier Driver, an optional stage gated by Options.NoMinify).
func Minify(b *Bundle) error {
	if len(b.JS.Client) > 0 {
		var parts [][]byte
		for _, path := range b.JS.Client {
			parts = append(parts, b.Files.Client[path])
		}
		combined := joinBytes(parts, "\n;\n")
		out, err := minifier.JS(combined, minifier.JSOptions{DropDebugger: false})
		if err != nil {
			return err
		}
		hash := sha1Hex(out)
		path := "/" + hash + ".js"
		b.Files.ClientCacheable[path] = out
		b.Manifest = append(b.Manifest, ManifestEntry{
			Path:      "static_cacheable" + path,
			Where:     "client",
			Type:      "js",
			Cacheable: boolPtr(true),
			URL:       path,
			Size:      intPtr(len(out)),
			Hash:      hash,
		})
		for _, p := range b.JS.Client {
			delete(b.Files.Client, p)
		}
		b.JS.Client = nil
	}

	if len(b.CSS) > 0 {
		var parts [][]byte
		for _, path := range b.CSS {
			parts = append(parts, b.Files.Client[path])
		}
		combined := joinBytes(parts, "\n")
		out, err := minifier.CSS(combined)
		if err != nil {
			return err
		}
		hash := sha1Hex(out)
		path := "/" + hash + ".css"
		b.Files.ClientCacheable[path] = out
		b.Manifest = append(b.Manifest, ManifestEntry{
			Path:      "static_cacheable" + path,
			Where:     "client",
			Type:      "css",
			Cacheable: boolPtr(true),
			URL:       path,
			Size:      intPtr(len(out)),
			Hash:      hash,
		})
		for _, p := range b.CSS {
			delete(b.Files.Client, p)
		}
		b.CSS = nil
	}

	return nil
}

func joinBytes(parts [][]byte, sep string) []byte {
	return []byte(strings.Join(byteSlicesToStrings(parts), sep))
}

func byteSlicesToStrings(parts [][]byte) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = string(p)
	}
	return out
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
