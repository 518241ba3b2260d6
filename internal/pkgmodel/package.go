// Package pkgmodel models reusable packages and release manifests: the
// external collaborator spec.md §6 specifies only by contract ("Package
// loader: get(nameOrPackage, {releaseManifest, appDir}) -> Package | none").
// This package gives that contract a concrete, disk-backed implementation.
package pkgmodel

// Package is an immutable handle on one reusable package or the
// application itself (spec §3 "Package (external)").
//
// The bundler treats Package as immutable apart from one mutation in the
// original design: the linker used to write computed exports back onto
// Package.exports. SPEC_FULL.md §9 resolves that open design note by moving
// the mutable export state into a separate registry (bundle.ExportsRegistry,
// in internal/bundle/exports.go) keyed by (package ID, role, env) and owned
// by the Bundle rather than the Package. Package itself is therefore fully
// immutable here.
type Package struct {
	// ID is a stable identity, independent of Name (the application has no
	// Name but still has an ID).
	ID string

	// Name is the package's declared name. Empty means "the application".
	Name string

	// SourceRoot is the absolute directory sources are read from.
	SourceRoot string

	// ServeRoot is the serve-path prefix sources are written under.
	ServeRoot string

	// Uses maps role -> environment -> ordered list of used package names.
	Uses map[Role]map[Environment][]string

	// Sources maps role -> environment -> ordered list of source paths,
	// relative to SourceRoot.
	Sources map[Role]map[Environment][]string

	// Unordered is the set of package names this package doesn't care
	// about the load-order position of, even though it depends on them.
	Unordered map[string]bool

	// Exports maps role -> environment -> declared export symbol set. This
	// is the package author's *declared* set (forceExport in the linker
	// contract), distinct from the Registry's *computed* set.
	Exports map[Role]map[Environment]map[string]bool

	// NativeModuleDirs lists package-managed native-module directories,
	// relative to the package, that should be installed under
	// build/app/<relPath> by the writer (spec §4.7 step 9).
	NativeModuleDirs []string

	// Handlers looks up an extension handler for (role, env, ext). A nil
	// entry or missing key means "no handler": the source compiler (C5)
	// falls back to emitting the file as a static resource.
	Handlers map[handlerKey]SourceHandler
}

// Role mirrors bundle.Role without importing package bundle, avoiding an
// import cycle (pkgmodel is the lower-level package; bundle depends on it).
type Role string

// Environment mirrors bundle.Environment for the same reason.
type Environment string

const (
	RoleUse  Role = "use"
	RoleTest Role = "test"

	EnvClient Environment = "client"
	EnvServer Environment = "server"
)

type handlerKey struct {
	Role Role
	Env  Environment
	Ext  string
}

// IsApplication reports whether this Package is the unnamed application
// package rooted at the user's project directory.
func (p *Package) IsApplication() bool {
	return p.Name == ""
}

// HandlerFor looks up the extension handler for (role, env, ext), the
// exact lookup signature spec §4.3 calls getSourceHandler.
func (p *Package) HandlerFor(role Role, env Environment, ext string) (SourceHandler, bool) {
	h, ok := p.Handlers[handlerKey{Role: role, Env: env, Ext: ext}]
	return h, ok
}

// RegisteredExtensions returns the distinct extensions this package has a
// handler for, across every (role, env) combination (spec §4.7 step 12's
// "registered extensions of the application PBR across all role×env").
func (p *Package) RegisteredExtensions() []string {
	seen := map[string]bool{}
	for key := range p.Handlers {
		seen[key.Ext] = true
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		exts = append(exts, ext)
	}
	return exts
}

// NewPackage constructs a Package with its maps initialized, so callers
// (the Loader, and tests) never have to remember which of the
// role/environment maps need pre-allocating.
func NewPackage(id, name, sourceRoot, serveRoot string) *Package {
	return &Package{
		ID:         id,
		Name:       name,
		SourceRoot: sourceRoot,
		ServeRoot:  serveRoot,
		Uses: map[Role]map[Environment][]string{
			RoleUse:  {EnvClient: nil, EnvServer: nil},
			RoleTest: {EnvClient: nil, EnvServer: nil},
		},
		Sources: map[Role]map[Environment][]string{
			RoleUse:  {EnvClient: nil, EnvServer: nil},
			RoleTest: {EnvClient: nil, EnvServer: nil},
		},
		Unordered: make(map[string]bool),
		Exports: map[Role]map[Environment]map[string]bool{
			RoleUse:  {EnvClient: {}, EnvServer: {}},
			RoleTest: {EnvClient: {}, EnvServer: {}},
		},
		Handlers: make(map[handlerKey]SourceHandler),
	}
}

// SetHandler registers an extension handler for (role, env, ext).
func (p *Package) SetHandler(role Role, env Environment, ext string, h SourceHandler) {
	p.Handlers[handlerKey{Role: role, Env: env, Ext: ext}] = h
}
