package bundle

import (
	"github.com/forgepack/forge/internal/linker"
	"github.com/forgepack/forge/internal/pkgmodel"
)

// Link traverses PBRs in load order and, for each environment, hands its
// JS resources to the linker driver (spec §4.4 C6 Linker Driver).
func Link(b *Bundle) error {
	for _, pbr := range b.PBRsByOrder {
		for _, env := range AllEnvironments {
			if !pbr.Presence[env] {
				continue
			}
			if err := linkPBR(b, pbr, env); err != nil {
				return err
			}
		}
	}
	return nil
}

func linkPBR(b *Bundle, pbr *PBR, env Environment) error {
	pkg := pbr.Package
	role := pkgmodelRole(pbr.Role)
	penv := pkgmodelEnv(env)

	imports := computeImports(b, pkg, role, penv)

	// Step 2: partition resources into js inputs and everything else.
	var inputs []linker.InputFile
	var others []Resource
	for _, r := range pbr.Resources[env] {
		if r.Type == ResourceJS {
			inputs = append(inputs, linker.InputFile{Source: r.Data, ServePath: r.ServePath})
		} else {
			others = append(others, r)
		}
	}
	pbr.Resources[env] = others

	// Step 3: invoke the linker.
	combinedPath := combinedServePath(pbr)
	result, err := linker.Link(inputs, linker.Options{
		UseGlobalNamespace: pkg.IsApplication(),
		CombinedServePath:  combinedPath,
		ImportStubServePath: "/packages/global-imports.js",
		Imports:             imports,
		Name:                pkg.Name,
		ForceExport:         b.Exports.Declared(pkg.ID, pbr.Role, env),
	})
	if err != nil {
		return err
	}

	// Step 4: persist results and append output resources.
	b.Exports.SetComputed(pkg.ID, pbr.Role, env, result.Exports)
	for _, f := range result.Files {
		pbr.Resources[env] = append(pbr.Resources[env], Resource{
			Type:      ResourceJS,
			Data:      f.Source,
			ServePath: f.ServePath,
		})
	}
	return nil
}

// computeImports builds the symbol -> supplying-package-name map the
// linker feeds to the external-symbols plugin (spec §4.4 step 1). Only a
// named, non-unordered upstream contributes: the use of exports.use[env],
// not exports[role][env], means test code imports only from production-role
// upstream exports. P8: when two upstreams in the uses list export the same
// symbol, the later one in load order wins, since later entries overwrite
// earlier ones in this single left-to-right pass.
func computeImports(b *Bundle, pkg *pkgmodel.Package, role pkgmodel.Role, penv pkgmodel.Environment) map[string]string {
	imports := map[string]string{}
	for _, name := range pkg.Uses[role][penv] {
		if pkg.Unordered[name] {
			continue
		}
		upstream, err := b.Loader.Get(name, pkgmodel.GetOptions{AppDir: b.AppDir, ReleaseManifest: b.ReleaseManifest})
		if err != nil || upstream == nil || upstream.IsApplication() {
			continue
		}
		for sym := range b.Exports.Computed(upstream.ID, RoleUse, bundleEnv(penv)) {
			imports[sym] = name
		}
	}
	return imports
}

// combinedServePath returns the serve path the linker should combine
// this PBR's JS inputs into, or "" for the application (which keeps its
// files separate, spec §4.4 step 3).
func combinedServePath(pbr *PBR) string {
	if pbr.Package.IsApplication() {
		return ""
	}
	if pbr.Role == RoleTest {
		return "/package-tests/" + pbr.Package.Name + ".js"
	}
	return "/packages/" + pbr.Package.Name + ".js"
}
