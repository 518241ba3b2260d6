package pkgmodel

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/forgepack/forge/internal/fsutil"
)

// Loader resolves package names to *Package from local packages
// directories (<appDir>/packages and PackagesRoot); a release manifest
// passed in GetOptions is not consulted. This is
// the concrete implementation of the "Package loader" external
// collaborator contract spec.md §6 specifies only abstractly:
// get(nameOrPackage, {releaseManifest, appDir}) -> Package | none;
// get_for_app(dir, ignoreList) -> Package; flush().
type Loader struct {
	// PackagesRoot is an additional search directory for packages not
	// found under <appDir>/packages/<name>, e.g. a shared local packages
	// checkout (internal/config.Config.PackagesRoot).
	PackagesRoot string

	mu    sync.Mutex
	cache map[string]*Package
}

// NewLoader creates a Loader with an empty cache.
func NewLoader(packagesRoot string) *Loader {
	return &Loader{
		PackagesRoot: packagesRoot,
		cache:        make(map[string]*Package),
	}
}

// GetOptions carries the context Get needs to resolve a name: the app
// directory (for <appDir>/packages/<name>) and the release manifest (for
// pinned versions once a release warehouse is wired in — forge resolves
// only from local directories, matching the loader contract's other
// collaborator, the release warehouse, being out of this core's scope).
type GetOptions struct {
	AppDir          string
	ReleaseManifest *Release
}

// Get resolves a package name to a *Package, or returns (nil, nil) if it
// cannot be found — the "Package | none" return shape from spec §6,
// translated into Go as a nil result with no error for "not found, let the
// caller turn this into a Resolution error", and a non-nil error only for
// an actual I/O failure while probing candidate directories.
func (l *Loader) Get(name string, opts GetOptions) (*Package, error) {
	l.mu.Lock()
	if cached, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	candidates := []string{
		filepath.Join(opts.AppDir, "packages", name),
	}
	if l.PackagesRoot != "" {
		candidates = append(candidates, filepath.Join(l.PackagesRoot, name))
	}

	var dir string
	for _, c := range candidates {
		if fsutil.Exists(filepath.Join(c, "package.yaml")) {
			dir = c
			break
		}
	}
	if dir == "" {
		return nil, nil
	}

	manifest, err := loadPackageManifest(dir)
	if err != nil {
		return nil, err
	}

	pkg := buildPackage(packageID(dir), manifest, filepath.Join(dir, "source"), "/packages/"+name)
	if pkg.Name == "" {
		pkg.Name = name
	}
	registerDefaultHandlers(pkg)

	l.mu.Lock()
	l.cache[name] = pkg
	l.mu.Unlock()

	return pkg, nil
}

// GetForApp loads the unnamed application package rooted at dir. Source
// discovery follows a fixed directory convention (client/, server/), the
// concrete policy this loader chooses for the discovery contract spec.md
// §6 deliberately leaves unspecified.
func (l *Loader) GetForApp(dir string, ignores fsutil.IgnoreList) (*Package, error) {
	pkg := NewPackage(packageID(dir), "", dir, "/")
	registerDefaultHandlers(pkg)

	for _, pair := range []struct {
		sub string
		env Environment
	}{
		{"client", EnvClient},
		{"server", EnvServer},
	} {
		root := filepath.Join(dir, pair.sub)
		if !fsutil.Exists(root) {
			continue
		}
		files, err := discoverSources(root, ignores)
		if err != nil {
			return nil, fmt.Errorf("discovering %s sources: %w", pair.sub, err)
		}
		pkg.Sources[RoleUse][pair.env] = files
	}

	manifestPath := filepath.Join(dir, "package.yaml")
	if fsutil.Exists(manifestPath) {
		manifest, err := loadPackageManifest(dir)
		if err != nil {
			return nil, err
		}
		for _, role := range []Role{RoleUse, RoleTest} {
			uses := manifest.Uses.forRole(role)
			pkg.Uses[role][EnvClient] = uses.Client
			pkg.Uses[role][EnvServer] = uses.Server
		}
	}

	return pkg, nil
}

// discoverSources walks root and returns source-relative paths (relative to
// root's parent, matching Package.Sources' "relative to SourceRoot"
// contract), skipping ignored basenames, in deterministic (sorted by walk
// order) order.
func discoverSources(root string, ignores fsutil.IgnoreList) ([]string, error) {
	var rel []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ignores.MatchesBasename(filepath.Base(path)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		r, err := filepath.Rel(filepath.Dir(root), path)
		if err != nil {
			return err
		}
		rel = append(rel, r)
		return nil
	})
	return rel, err
}

// Flush clears the loader's memoised cache, matching spec §6's flush()
// contract and §5's "Package cache is a process-wide mutable map flushed
// at orchestrator entry".
func (l *Loader) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*Package)
}

func packageID(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return abs
}
