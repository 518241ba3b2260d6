package bundle

import (
	"github.com/forgepack/forge/internal/errors"
	"github.com/forgepack/forge/internal/pkgmodel"
)

// Roots maps role -> environment -> the list of root packages to resolve
// from, spec §4.1's "roots[role][env] -> list of packages" input.
type Roots map[Role]map[Environment][]*pkgmodel.Package

// Resolve computes the transitive closure of packages reachable from
// roots, creating (or reusing) one PBR per (role, package.id) and marking
// environment presence as it goes (spec §4.1 C3 Dependency Resolver).
func Resolve(b *Bundle, roots Roots) error {
	for role, byEnv := range roots {
		for env, pkgs := range byEnv {
			for _, pkg := range pkgs {
				if err := visit(b, pkg, role, env); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// visit is the resolver's recursive visitor (spec §4.1 steps 1-4).
// Dependencies of a test-role PBR are always resolved as role=use: tests
// may import production code of other packages but never their tests.
func visit(b *Bundle, pkg *pkgmodel.Package, role Role, env Environment) error {
	pbr := b.getOrCreatePBR(pkg, role)

	if pbr.Presence[env] {
		return nil
	}
	pbr.Presence[env] = true

	for _, name := range pkg.Uses[pkgmodelRole(role)][pkgmodelEnv(env)] {
		used, err := b.Loader.Get(name, pkgmodel.GetOptions{
			AppDir:          b.AppDir,
			ReleaseManifest: b.ReleaseManifest,
		})
		if err != nil {
			return errors.NewIOError("resolving package "+name, err)
		}
		if used == nil {
			return errors.NewResolutionError(name, nil)
		}
		if err := visit(b, used, RoleUse, env); err != nil {
			return err
		}
	}
	return nil
}

func pkgmodelRole(r Role) pkgmodel.Role {
	if r == RoleTest {
		return pkgmodel.RoleTest
	}
	return pkgmodel.RoleUse
}

func pkgmodelEnv(e Environment) pkgmodel.Environment {
	if e == EnvServer {
		return pkgmodel.EnvServer
	}
	return pkgmodel.EnvClient
}
