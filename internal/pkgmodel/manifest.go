package pkgmodel

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// packageManifest is the on-disk shape of package.yaml, grounded on the
// teacher's existing use of gopkg.in/yaml.v3 for structured manifests
// (internal/output/manifest.go's YAML writer, mirrored here as a reader).
type packageManifest struct {
	Name      string              `yaml:"name,omitempty"`
	Uses      roleEnvStringList   `yaml:"uses,omitempty"`
	Sources   roleEnvStringList   `yaml:"sources,omitempty"`
	Unordered []string            `yaml:"unordered,omitempty"`
	Exports   roleEnvStringList   `yaml:"exports,omitempty"`
	NativeModuleDirs []string     `yaml:"nativeModuleDirs,omitempty"`
}

// roleEnvStringList is {use:{client:[...],server:[...]}, test:{...}}.
type roleEnvStringList struct {
	Use  envStringList `yaml:"use,omitempty"`
	Test envStringList `yaml:"test,omitempty"`
}

type envStringList struct {
	Client []string `yaml:"client,omitempty"`
	Server []string `yaml:"server,omitempty"`
}

func (r roleEnvStringList) forRole(role Role) envStringList {
	if role == RoleTest {
		return r.Test
	}
	return r.Use
}

// loadPackageManifest reads and parses package.yaml from dir.
func loadPackageManifest(dir string) (*packageManifest, error) {
	path := filepath.Join(dir, "package.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m packageManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// buildPackage translates a parsed manifest plus its source-tree location
// into a *Package. id is the package's stable identity (the loader derives
// it from the manifest's absolute directory path).
func buildPackage(id string, m *packageManifest, sourceRoot, serveRoot string) *Package {
	pkg := NewPackage(id, m.Name, sourceRoot, serveRoot)

	for _, role := range []Role{RoleUse, RoleTest} {
		uses := m.Uses.forRole(role)
		pkg.Uses[role][EnvClient] = uses.Client
		pkg.Uses[role][EnvServer] = uses.Server

		sources := m.Sources.forRole(role)
		pkg.Sources[role][EnvClient] = sources.Client
		pkg.Sources[role][EnvServer] = sources.Server

		exports := m.Exports.forRole(role)
		for _, sym := range exports.Client {
			pkg.Exports[role][EnvClient][sym] = true
		}
		for _, sym := range exports.Server {
			pkg.Exports[role][EnvServer][sym] = true
		}
	}

	for _, name := range m.Unordered {
		pkg.Unordered[name] = true
	}

	pkg.NativeModuleDirs = m.NativeModuleDirs

	return pkg
}
