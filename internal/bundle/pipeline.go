package bundle

import (
	"fmt"
	"path/filepath"

	"github.com/forgepack/forge/internal/output"
	"github.com/forgepack/forge/internal/pkgmodel"
)

// Run runs the full pipeline C3→C9 against appDir, writing the result
// to outputPath (spec §4.8 C10 Bundle Orchestrator, and spec §6's
// entry-point contract "bundle(appDir, outputPath, options)"). Returns a
// non-empty ordered list of human-readable error strings on failure, or
// an empty slice on success — never an error value, matching the
// contract's "errors are data" propagation policy (spec §7).
func Run(appDir, outputPath string, options Options, loader *pkgmodel.Loader, writerOpts WriterOptions) []string {
	if err := options.Validate(); err != nil {
		return []string{err.Error()}
	}

	loader.Flush()

	var releaseManifest *pkgmodel.Release
	if options.Release != "none" {
		rel, err := pkgmodel.LoadRelease(appDir + "/release.yaml")
		if err != nil {
			return []string{fmt.Sprintf("loading release manifest: %v", err)}
		}
		releaseManifest = rel
	}

	b := NewBundle(appDir, options.Release, releaseManifest, loader)

	appPkg, err := loader.GetForApp(appDir, writerOpts.Ignores)
	if err != nil {
		return []string{fmt.Sprintf("loading application package: %v", err)}
	}

	roots := Roots{
		RoleUse: {
			EnvClient: {appPkg},
			EnvServer: {appPkg},
		},
	}
	if len(options.TestPackages) > 0 {
		roots[RoleTest] = map[Environment][]*pkgmodel.Package{}
		for _, name := range options.TestPackages {
			pkg, err := loader.Get(name, pkgmodel.GetOptions{AppDir: appDir, ReleaseManifest: releaseManifest})
			if err != nil || pkg == nil {
				return []string{fmt.Sprintf("cannot resolve test package %q", name)}
			}
			roots[RoleTest][EnvClient] = append(roots[RoleTest][EnvClient], pkg)
			roots[RoleTest][EnvServer] = append(roots[RoleTest][EnvServer], pkg)
		}
	}

	if err := Resolve(b, roots); err != nil {
		return []string{err.Error()}
	}
	seedAllDeclaredExports(b)
	prepareNativeModules(b)
	reportProgress(b.pbrInsertionOrder(), output.StatusResolved)

	if err := Order(b); err != nil {
		return []string{err.Error()}
	}
	reportProgress(b.PBRsByOrder, output.StatusOrdered)
	if err := Compile(b); err != nil {
		return []string{err.Error()}
	}
	if err := Link(b); err != nil {
		return []string{err.Error()}
	}
	reportProgress(b.PBRsByOrder, output.StatusLinked)
	if err := Aggregate(b, options.StrictServerCSS); err != nil {
		return []string{err.Error()}
	}
	if !options.NoMinify {
		if err := Minify(b); err != nil {
			return []string{err.Error()}
		}
	}
	writerOpts.NodeModulesMode = options.NodeModulesMode
	if err := Write(b, outputPath, writerOpts); err != nil {
		return []string{err.Error()}
	}
	reportProgress(b.PBRsByOrder, output.StatusWritten)

	if len(b.Errors) > 0 {
		out := make([]string, 0, len(b.Errors))
		for _, e := range b.Errors {
			out = append(out, e.Error())
		}
		return out
	}
	return nil
}

// reportProgress prints one status line per PBR, in the given order. It's
// suppressed on a TTY, where the build command's spinner owns stdout; on a
// plain pipe or CI log it gives a per-package trace of the pipeline's
// progress through each stage.
func reportProgress(pbrs []*PBR, status string) {
	if output.IsTTY() {
		return
	}
	for _, pbr := range pbrs {
		name := pbr.Package.Name
		if name == "" {
			name = "app"
		}
		output.Println(output.FormatPackageLine(string(pbr.Role), name, status))
	}
}

// seedDeclaredExports copies one package's author-declared export sets
// into the bundle's ExportsRegistry.
func seedDeclaredExports(b *Bundle, pkg *pkgmodel.Package) {
	for _, role := range []pkgmodel.Role{pkgmodel.RoleUse, pkgmodel.RoleTest} {
		for _, env := range []pkgmodel.Environment{pkgmodel.EnvClient, pkgmodel.EnvServer} {
			b.Exports.SeedDeclared(pkg.ID, bundleRole(role), bundleEnvFromPkgmodel(env), pkg.Exports[role][env])
		}
	}
}

// seedAllDeclaredExports seeds declared exports for every resolved PBR's
// package, once resolution has produced the full PBR set.
func seedAllDeclaredExports(b *Bundle) {
	for _, pbr := range b.pbrInsertionOrder() {
		seedDeclaredExports(b, pbr.Package)
	}
}

func bundleRole(r pkgmodel.Role) Role {
	if r == pkgmodel.RoleTest {
		return RoleTest
	}
	return RoleUse
}

func bundleEnvFromPkgmodel(e pkgmodel.Environment) Environment {
	if e == pkgmodel.EnvServer {
		return EnvServer
	}
	return EnvClient
}

// prepareNativeModules registers each resolved package's declared
// native-module directories into the bundle's NodeModulesDirs table, the
// orchestrator's "native-module prep" step between resolution and
// compilation (spec §4.8). Each directory is installed under
// build/app/packages/<name>/<dir>, sourced from the sibling of the
// package's source root.
func prepareNativeModules(b *Bundle) {
	for _, pbr := range b.pbrInsertionOrder() {
		pkg := pbr.Package
		if pkg.IsApplication() {
			continue
		}
		for _, dir := range pkg.NativeModuleDirs {
			bundleRelPath := "packages/" + pkg.Name + "/" + dir
			sourceDir := filepath.Join(pkg.SourceRoot, "..", dir)
			b.NodeModulesDirs[bundleRelPath] = sourceDir
		}
	}
}
