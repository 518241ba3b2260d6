package bundle

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/forgepack/forge/internal/errors"
	"github.com/forgepack/forge/internal/pkgmodel"
)

// Compile routes each source file of each PBR, in load order, through its
// extension handler; unrecognized extensions become static resources
// (spec §4.3 C5 Source Compiler).
func Compile(b *Bundle) error {
	for _, pbr := range b.PBRsByOrder {
		for _, env := range AllEnvironments {
			if !pbr.Presence[env] {
				continue
			}
			if err := compilePBR(pbr, env); err != nil {
				return err
			}
		}
	}
	return nil
}

func compilePBR(pbr *PBR, env Environment) error {
	pkg := pbr.Package
	role := pkgmodelRole(pbr.Role)
	penv := pkgmodelEnv(env)

	for _, relPath := range pkg.Sources[role][penv] {
		ext := strings.TrimPrefix(filepath.Ext(relPath), ".")
		absSource := filepath.Join(pkg.SourceRoot, relPath)
		absServe := path.Join(pkg.ServeRoot, filepath.ToSlash(relPath))

		handler, ok := pkg.HandlerFor(role, penv, ext)
		if !ok {
			data, err := os.ReadFile(absSource)
			if err != nil {
				return errors.NewIOError("reading source "+relPath, err)
			}
			pbr.Resources[env] = append(pbr.Resources[env], Resource{
				Type:      ResourceStatic,
				Data:      data,
				ServePath: absServe,
			})
			pbr.Deps[relPath] = true
			continue
		}

		emitter := pkgmodel.NewEmitter(absSource)
		if err := handler(emitter, absSource, absServe, penv); err != nil {
			return errors.NewHandlerError(pkg.Name, relPath, err)
		}
		for _, r := range emitter.Resources {
			pbr.Resources[bundleEnv(r.Env)] = append(pbr.Resources[bundleEnv(r.Env)], Resource{
				Type:      bundleResourceType(r.Type),
				Data:      r.Data,
				ServePath: r.Path,
			})
		}
		pbr.Deps[relPath] = true
	}
	return nil
}

func bundleEnv(e pkgmodel.Environment) Environment {
	if e == pkgmodel.EnvServer {
		return EnvServer
	}
	return EnvClient
}

func bundleResourceType(k pkgmodel.ResourceKind) ResourceType {
	switch k {
	case pkgmodel.KindJS:
		return ResourceJS
	case pkgmodel.KindCSS:
		return ResourceCSS
	case pkgmodel.KindHead:
		return ResourceHead
	case pkgmodel.KindBody:
		return ResourceBody
	default:
		return ResourceStatic
	}
}
