package pkgmodel

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// releaseNamespace is a fixed namespace UUID for deriving deterministic
// release identities via uuid.NewSHA1, the same construction
// open-platform-model-cli's internal/build/release package uses for its
// ReleaseMetadata.UUID field.
var releaseNamespace = uuid.MustParse("8f14e45f-ceea-467e-b2ee-2d3c2a0a8f6f")

// Release is a release manifest pinning package versions (spec §3 "Bundle"
// field releaseManifest / release).
type Release struct {
	Name     string            `yaml:"name"`
	Versions map[string]string `yaml:"versions"`
}

// LoadRelease reads a release.yaml file from path.
func LoadRelease(path string) (*Release, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading release manifest %s: %w", path, err)
	}
	var r Release
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing release manifest %s: %w", path, err)
	}
	return &r, nil
}

// Identity derives a stable, deterministic UUID from the release
// manifest's content: same name + same pinned versions always yields the
// same identity, which is what a cache-bust-idempotence check (spec P6)
// needs from a release identifier.
func (r *Release) Identity() string {
	if r == nil {
		return ""
	}
	names := make([]string, 0, len(r.Versions))
	for name := range r.Versions {
		names = append(names, name)
	}
	sort.Strings(names)

	seed := r.Name
	for _, name := range names {
		seed += "\x00" + name + "\x00" + r.Versions[name]
	}
	return uuid.NewSHA1(releaseNamespace, []byte(seed)).String()
}
