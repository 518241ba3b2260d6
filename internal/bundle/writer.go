package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/forgepack/forge/internal/errors"
	"github.com/forgepack/forge/internal/fsutil"
	"github.com/forgepack/forge/internal/htmltemplate"
)

// WriterOptions configures the writer stage with the platform-specific
// paths spec §4.7 treats as given: the server-runtime directory to copy,
// the prebuilt native-module root, and the bundle-version marker file.
type WriterOptions struct {
	ServerRuntimeDir  string
	NativeModuleRoot  string
	BundleVersionFile string
	NodeModulesMode   string
	Ignores           fsutil.IgnoreList
}

// appManifest is the shape of app.json (spec §6 output tree layout).
type appManifest struct {
	Load     []string        `json:"load"`
	Manifest []ManifestEntry `json:"manifest"`
	Release  string          `json:"release,omitempty"`
}

// dependenciesManifest is the shape of dependencies.json (spec §6).
type dependenciesManifest struct {
	Core       string              `json:"core"`
	App        []string            `json:"app"`
	Packages   map[string][]string `json:"packages"`
	Extensions []string            `json:"extensions"`
	Exclude    []string            `json:"exclude"`
}

// Write materialises the bundle tree at a staging path and atomically
// swaps it into place at outputPath (spec §4.7 C9 Writer).
func Write(b *Bundle, outputPath string, opts WriterOptions) error {
	buildPath := filepath.Join(filepath.Dir(outputPath), ".build."+filepath.Base(outputPath))

	if err := fsutil.RemoveTree(buildPath); err != nil {
		return errors.NewIOError("clearing build area", err)
	}
	if err := fsutil.MkdirP(buildPath); err != nil {
		return errors.NewIOError("creating build area", err)
	}

	if err := writeServerRuntime(buildPath, opts); err != nil {
		return err
	}
	if err := writeNativeModuleRoot(buildPath, opts); err != nil {
		return err
	}
	if err := writePublicAssets(b, buildPath, opts); err != nil {
		return err
	}
	if err := writeRemainingClientJS(b); err != nil {
		return err
	}
	if err := writeClientFiles(b, buildPath); err != nil {
		return err
	}
	if err := writeCacheableFiles(b, buildPath); err != nil {
		return err
	}
	appLoad, err := writeServerFiles(b, buildPath)
	if err != nil {
		return err
	}
	if err := writeNodeModuleDirs(b, buildPath, opts); err != nil {
		return err
	}
	if err := writeAppHTML(b, buildPath); err != nil {
		return err
	}
	if err := writeMainAndReadme(buildPath); err != nil {
		return err
	}
	if err := writeManifests(b, buildPath, appLoad, opts); err != nil {
		return err
	}

	if err := fsutil.RemoveTree(outputPath); err != nil {
		return errors.NewIOError("removing previous output", err)
	}
	if err := fsutil.Rename(buildPath, outputPath); err != nil {
		return errors.NewIOError("swapping build area into place", err)
	}
	return nil
}

func writeServerRuntime(buildPath string, opts WriterOptions) error {
	if opts.ServerRuntimeDir == "" {
		return nil
	}
	dest := filepath.Join(buildPath, "server")
	if err := fsutil.CopyTree(opts.ServerRuntimeDir, dest, opts.Ignores); err != nil {
		return errors.NewIOError("copying server runtime", err)
	}
	return nil
}

func writeNativeModuleRoot(buildPath string, opts WriterOptions) error {
	dest := filepath.Join(buildPath, "server", "node_modules")
	switch opts.NodeModulesMode {
	case "symlink":
		if opts.NativeModuleRoot == "" {
			return nil
		}
		if err := fsutil.Symlink(opts.NativeModuleRoot, dest); err != nil {
			return errors.NewIOError("symlinking native module root", err)
		}
	case "copy":
		if opts.NativeModuleRoot == "" {
			return nil
		}
		if err := fsutil.CopyTree(opts.NativeModuleRoot, dest, opts.Ignores); err != nil {
			return errors.NewIOError("copying native module root", err)
		}
	case "skip":
	}
	if opts.BundleVersionFile != "" {
		data, err := fsutil.ReadFile(opts.BundleVersionFile)
		if err == nil {
			_ = fsutil.WriteFile(filepath.Join(buildPath, "server", ".bundle_version.txt"), data, 0o644)
		}
	}
	return nil
}

func writePublicAssets(b *Bundle, buildPath string, opts WriterOptions) error {
	appPkg := b.applicationPBR()
	if appPkg == nil {
		return nil
	}
	publicDir := filepath.Join(appPkg.Package.SourceRoot, "public")
	if !fsutil.Exists(publicDir) {
		return nil
	}
	dest := filepath.Join(buildPath, "static")
	if err := fsutil.CopyTree(publicDir, dest, opts.Ignores); err != nil {
		return errors.NewIOError("copying public assets", err)
	}

	return filepath.Walk(publicDir, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || opts.Ignores.MatchesBasename(filepath.Base(p)) {
			return nil
		}
		rel, err := filepath.Rel(publicDir, p)
		if err != nil {
			return err
		}
		data, err := fsutil.ReadFile(p)
		if err != nil {
			return errors.NewIOError("reading public asset "+rel, err)
		}
		urlPath := "/" + filepath.ToSlash(rel)
		b.Manifest = append(b.Manifest, ManifestEntry{
			Path:      "static" + urlPath,
			Where:     "client",
			Type:      "static",
			Cacheable: boolPtr(false),
			URL:       urlPath,
			Size:      intPtr(len(data)),
			Hash:      sha1Hex(data),
		})
		return nil
	})
}

// writeRemainingClientJS handles spec §4.7 step 5: when the minifier was
// skipped, client JS/CSS still needs a cache-bust URL computed directly
// from their content hash.
func writeRemainingClientJS(b *Bundle) error {
	for _, name := range append(append([]string{}, b.JS.Client...), b.CSS...) {
		data, ok := b.Files.Client[name]
		if !ok {
			continue
		}
		hash := sha1Hex(data)
		delete(b.Files.Client, name)
		b.Files.ClientCacheable[name] = data
		typ := "js"
		if strings.HasSuffix(name, ".css") {
			typ = "css"
		}
		b.Manifest = append(b.Manifest, ManifestEntry{
			Path:      "static_cacheable" + name,
			Where:     "client",
			Type:      typ,
			Cacheable: boolPtr(true),
			URL:       name + "?" + hash,
			Size:      intPtr(len(data)),
			Hash:      hash,
		})
	}
	b.JS.Client = nil
	b.CSS = nil
	return nil
}

func writeClientFiles(b *Bundle, buildPath string) error {
	for _, name := range sortedKeys(b.Files.Client) {
		data := b.Files.Client[name]
		dest := filepath.Join(buildPath, "static", filepath.FromSlash(name))
		if err := fsutil.WriteFile(dest, data, 0o644); err != nil {
			return errors.NewIOError("writing static asset "+name, err)
		}
		hash := sha1Hex(data)
		b.Manifest = append(b.Manifest, ManifestEntry{
			Path:      "static" + name,
			Where:     "client",
			Type:      "static",
			Cacheable: boolPtr(false),
			URL:       name,
			Size:      intPtr(len(data)),
			Hash:      hash,
		})
	}
	return nil
}

func writeCacheableFiles(b *Bundle, buildPath string) error {
	for _, name := range sortedKeys(b.Files.ClientCacheable) {
		data := b.Files.ClientCacheable[name]
		dest := filepath.Join(buildPath, "static_cacheable", filepath.FromSlash(name))
		if err := fsutil.WriteFile(dest, data, 0o644); err != nil {
			return errors.NewIOError("writing cacheable asset "+name, err)
		}
	}
	return nil
}

// writeServerFiles writes every files.server entry and records its
// bundle-relative path into app.json.load in aggregation order (spec §4.7
// step 8), not sorted serve-path order — a dependency's server file must
// precede its dependent's in load, and alphabetical order doesn't
// guarantee that.
func writeServerFiles(b *Bundle, buildPath string) ([]string, error) {
	order := append(append([]string{}, b.ServerLoad...), missingServerPaths(b)...)

	var load []string
	for _, name := range order {
		data, ok := b.Files.Server[name]
		if !ok {
			continue
		}
		rel := strings.TrimPrefix(name, "/")
		dest := filepath.Join(buildPath, "app", filepath.FromSlash(rel))
		if err := fsutil.WriteFile(dest, data, 0o644); err != nil {
			return nil, errors.NewIOError("writing server file "+name, err)
		}
		load = append(load, "app/"+rel)
	}
	return load, nil
}

// missingServerPaths returns files.server entries ServerLoad didn't record,
// in sorted order, as a defensive fallback — every aggregated JS/static
// server resource is recorded, so this is normally empty.
func missingServerPaths(b *Bundle) []string {
	recorded := make(map[string]bool, len(b.ServerLoad))
	for _, name := range b.ServerLoad {
		recorded[name] = true
	}
	var missing []string
	for _, name := range sortedKeys(b.Files.Server) {
		if !recorded[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func writeNodeModuleDirs(b *Bundle, buildPath string, opts WriterOptions) error {
	for relPath, sourceDir := range b.NodeModulesDirs {
		parent := filepath.Dir(filepath.Join(buildPath, "app", relPath))
		if !fsutil.Exists(parent) {
			// Resolved open question 1 (SPEC_FULL.md §9): create the
			// missing parent rather than silently skipping the install.
			if err := fsutil.MkdirP(parent); err != nil {
				return errors.NewIOError("creating parent for native module "+relPath, err)
			}
		}
		dest := filepath.Join(buildPath, "app", relPath)
		switch opts.NodeModulesMode {
		case "symlink":
			if err := fsutil.Symlink(sourceDir, dest); err != nil {
				return errors.NewIOError("symlinking native module "+relPath, err)
			}
		case "copy", "skip":
			if err := fsutil.CopyTree(sourceDir, dest, opts.Ignores); err != nil {
				return errors.NewIOError("copying native module "+relPath, err)
			}
		}
	}
	return nil
}

func writeAppHTML(b *Bundle, buildPath string) error {
	renderer, err := htmltemplate.NewRenderer()
	if err != nil {
		return errors.NewIOError("compiling app.html template", err)
	}

	var scripts, stylesheets []string
	for _, entry := range b.Manifest {
		if entry.Where != "client" {
			continue
		}
		switch entry.Type {
		case "js":
			scripts = append(scripts, entry.URL)
		case "css":
			stylesheets = append(stylesheets, entry.URL)
		}
	}

	html, err := renderer.Render(htmltemplate.Values{
		Scripts:     scripts,
		Stylesheets: stylesheets,
		HeadExtra:   b.Head,
		BodyExtra:   b.Body,
	})
	if err != nil {
		return errors.NewIOError("rendering app.html", err)
	}

	dest := filepath.Join(buildPath, "app.html")
	if err := fsutil.WriteFile(dest, []byte(html), 0o644); err != nil {
		return errors.NewIOError("writing app.html", err)
	}

	hash := sha1Hex([]byte(html))
	b.Manifest = append(b.Manifest, ManifestEntry{
		Path:  "app.html",
		Where: "internal",
		Hash:  hash,
	})
	return nil
}

func writeMainAndReadme(buildPath string) error {
	main := "require('./server/server.js');\n"
	if err := fsutil.WriteFile(filepath.Join(buildPath, "main.js"), []byte(main), 0o644); err != nil {
		return errors.NewIOError("writing main.js", err)
	}
	readme := "This is a forge application bundle. To run it, invoke `node main.js`.\n"
	if err := fsutil.WriteFile(filepath.Join(buildPath, "README"), []byte(readme), 0o644); err != nil {
		return errors.NewIOError("writing README", err)
	}
	return nil
}

func writeManifests(b *Bundle, buildPath string, appLoad []string, opts WriterOptions) error {
	app := appManifest{
		Load:     appLoad,
		Manifest: b.Manifest,
		Release:  releaseField(b),
	}
	data, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return errors.NewIOError("encoding app.json", err)
	}
	if err := fsutil.WriteFile(filepath.Join(buildPath, "app.json"), data, 0o644); err != nil {
		return errors.NewIOError("writing app.json", err)
	}

	deps := dependenciesManifest{
		Core:       "server",
		App:        sortedSet(b.applicationDeps()),
		Packages:   b.packageDeps(),
		Extensions: b.applicationExtensions(),
		Exclude:    opts.Ignores.Sources(),
	}
	depsData, err := json.MarshalIndent(deps, "", "  ")
	if err != nil {
		return errors.NewIOError("encoding dependencies.json", err)
	}
	if err := fsutil.WriteFile(filepath.Join(buildPath, "dependencies.json"), depsData, 0o644); err != nil {
		return errors.NewIOError("writing dependencies.json", err)
	}
	return nil
}

// releaseField reports the release identifier written into app.json.
// When a release manifest was loaded, it's the content-derived identity
// (spec §4.7 step 12), computed from the release name and its pinned
// versions, so the same name with the same pins always produces the same
// identity; otherwise it falls back to the raw --release option string.
func releaseField(b *Bundle) string {
	if b.Release == "none" || b.Release == "" {
		return ""
	}
	if b.ReleaseManifest != nil {
		return b.ReleaseManifest.Identity()
	}
	return b.Release
}

func (b *Bundle) applicationPBR() *PBR {
	for _, pbr := range b.PBRsByOrder {
		if pbr.Package.IsApplication() {
			return pbr
		}
	}
	return nil
}

func (b *Bundle) applicationDeps() map[string]bool {
	app := b.applicationPBR()
	if app == nil {
		return nil
	}
	return app.Deps
}

// applicationExtensions collects the application PBR's registered
// extensions across every role×environment it was bundled in (spec §4.7
// step 12's "extensions" field).
func (b *Bundle) applicationExtensions() []string {
	app := b.applicationPBR()
	if app == nil {
		return nil
	}
	exts := map[string]bool{}
	for _, ext := range app.Package.RegisteredExtensions() {
		exts[ext] = true
	}
	return sortedSet(exts)
}

// packageDeps computes dependencies.json's packages[name] field: the
// union of source-relative paths that influenced a package across every
// role it was bundled in (spec §4.7 step 12).
func (b *Bundle) packageDeps() map[string][]string {
	out := map[string]map[string]bool{}
	for _, pbr := range b.PBRsByOrder {
		if pbr.Package.IsApplication() {
			continue
		}
		name := pbr.Package.Name
		if out[name] == nil {
			out[name] = map[string]bool{}
		}
		for relPath := range pbr.Deps {
			out[name][relPath] = true
		}
	}
	result := map[string][]string{}
	for name, set := range out {
		result[name] = sortedSet(set)
	}
	return result
}

func sortedKeys(table FileTable) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
