// Package bundle implements the bundling pipeline: dependency resolution,
// load ordering, source compilation, JS linking, resource aggregation,
// minification, and the atomic build-and-swap output writer.
//
// The pipeline is strictly sequential and single-threaded (spec §5): each
// stage reads the fully-populated output of the stage before it. This
// mirrors the teacher's transform executor, which is sequential because its
// evaluation context cannot be shared across goroutines; here the
// constraint comes from the exports registry (see ExportsRegistry in exports.go),
// which the linker both reads and writes as it walks packages in load
// order.
package bundle

import "github.com/forgepack/forge/internal/pkgmodel"

// Role distinguishes a package's production incarnation from its test
// incarnation.
type Role string

const (
	RoleUse  Role = "use"
	RoleTest Role = "test"
)

// Environment is where a resource will execute.
type Environment string

const (
	EnvClient Environment = "client"
	EnvServer Environment = "server"
)

// AllEnvironments lists both environments in a fixed order, used wherever
// the original implementation's load-order routine needed to iterate over
// "both environments" explicitly rather than positionally (see DESIGN.md,
// open question 2).
var AllEnvironments = []Environment{EnvClient, EnvServer}

// ResourceType is the kind of artifact fragment a Resource carries.
type ResourceType string

const (
	ResourceJS     ResourceType = "js"
	ResourceCSS    ResourceType = "css"
	ResourceHead   ResourceType = "head"
	ResourceBody   ResourceType = "body"
	ResourceStatic ResourceType = "static"
)

// Resource is an immutable description of one emitted artifact fragment
// (spec §3 "Resource"). Resources are append-only within a PBR's resource
// list for a given environment; list order is preserved end-to-end and
// defines deterministic in-bundle order.
type Resource struct {
	Type ResourceType
	// Data is the opaque byte buffer. Go's []byte makes the original
	// source's "contents instanceof Buffer" check (DESIGN.md open question
	// 3) structurally unnecessary: every Resource carries real bytes.
	Data []byte
	// ServePath is the absolute forward-slash path this resource wishes to
	// be served at; ignored for head/body resources.
	ServePath string
}

// PBR is a Package Bundling Record: the per-(package, role) workspace
// holding one package's contribution to the bundle (spec §3 "PBR").
type PBR struct {
	Package *pkgmodel.Package
	Role    Role

	// Presence records which environments this PBR is active in.
	Presence map[Environment]bool

	// Resources holds the accumulated, append-only resource list per
	// environment, in declaration order.
	Resources map[Environment][]Resource

	// Deps is the set of source paths that influenced this PBR, kept for
	// the development watcher's use (forge itself has no watch mode —
	// spec.md Non-goals — but still produces this set for a future one).
	Deps map[string]bool
}

// ID returns the PBR's identity key as a comparable PBRKey struct,
// matching spec §3's "(role, package.id)" identity.
func (p *PBR) ID() PBRKey {
	return PBRKey{Role: p.Role, PackageID: p.Package.ID}
}

// PBRKey is the map key type for a Bundle's PBR set.
type PBRKey struct {
	Role      Role
	PackageID string
}

// newPBR creates a freshly-initialized PBR for pkg in the given role.
func newPBR(pkg *pkgmodel.Package, role Role) *PBR {
	return &PBR{
		Package:  pkg,
		Role:     role,
		Presence: make(map[Environment]bool, 2),
		Resources: map[Environment][]Resource{
			EnvClient: nil,
			EnvServer: nil,
		},
		Deps: make(map[string]bool),
	}
}

// FileTable holds byte contents keyed by serve path; forge uses one per
// output channel: files.client, files.client_cacheable, files.server.
type FileTable map[string][]byte

// ManifestEntry is one entry of the bundle-wide manifest (spec §6).
type ManifestEntry struct {
	Path      string `json:"path"`
	Where     string `json:"where"` // "client" or "internal"
	Type      string `json:"type,omitempty"`
	Cacheable *bool  `json:"cacheable,omitempty"`
	URL       string `json:"url,omitempty"`
	Size      *int   `json:"size,omitempty"`
	Hash      string `json:"hash"`
}

// Bundle is the complete in-memory aggregate of resources and metadata
// prior to writing (spec §3 "Bundle").
type Bundle struct {
	AppDir          string
	ReleaseManifest *pkgmodel.Release
	Release         string

	PBRs        map[PBRKey]*PBR
	PBRsByOrder []*PBR

	// pbrInsertion records PBR creation order, since Go map iteration over
	// PBRs is unordered and the load orderer (C4) needs a deterministic
	// root-walk order to produce a deterministic result (P6).
	pbrInsertion []*PBR

	Files struct {
		Client          FileTable
		ClientCacheable FileTable
		Server          FileTable
	}

	JS struct {
		Client []string
		Server []string
	}
	CSS     []string
	Static  struct {
		Client []string
		Server []string
	}

	// ServerLoad records every files.server serve path in true aggregation
	// order (spec §4.7 step 8 "recording the bundle-relative path into
	// app.json.load in order"), interleaving JS and static server resources
	// exactly as the aggregator (C7) walked PBRs in load order — unlike
	// JS.Server/Static.Server, which are split by resource type and so each
	// loses the other's interleaving.
	ServerLoad []string

	NodeModulesDirs map[string]string // bundle-relative path -> source dir

	// servePathOwner records which package first claimed a serve path in
	// each environment's file table, so the aggregator (C7) can detect the
	// serve-path collision invariant I3 forbids instead of silently
	// overwriting an earlier package's resource.
	servePathOwner map[Environment]map[string]string

	Head []string
	Body []string

	Manifest []ManifestEntry
	Errors   []error

	// Exports is the registry the linker driver (C6) reads and writes
	// through, replacing the original's Package-mutation hack (SPEC_FULL.md
	// §9, design note "Package mutation by the linker").
	Exports *ExportsRegistry

	// Loader resolves package names during dependency resolution (C3),
	// spec §6's "Package loader" external collaborator contract.
	Loader *pkgmodel.Loader
}

// NewBundle creates an empty Bundle rooted at appDir.
func NewBundle(appDir string, release string, releaseManifest *pkgmodel.Release, loader *pkgmodel.Loader) *Bundle {
	b := &Bundle{
		AppDir:          appDir,
		Release:         release,
		ReleaseManifest: releaseManifest,
		PBRs:            make(map[PBRKey]*PBR),
		NodeModulesDirs: make(map[string]string),
		Exports:         NewExportsRegistry(),
		Loader:          loader,
		servePathOwner: map[Environment]map[string]string{
			EnvClient: make(map[string]string),
			EnvServer: make(map[string]string),
		},
	}
	b.Files.Client = make(FileTable)
	b.Files.ClientCacheable = make(FileTable)
	b.Files.Server = make(FileTable)
	return b
}

// getOrCreatePBR fetches the PBR keyed (role, pkg.ID), creating it lazily
// on first touch (spec §3 "Lifecycle").
func (b *Bundle) getOrCreatePBR(pkg *pkgmodel.Package, role Role) *PBR {
	key := PBRKey{Role: role, PackageID: pkg.ID}
	if pbr, ok := b.PBRs[key]; ok {
		return pbr
	}
	pbr := newPBR(pkg, role)
	b.PBRs[key] = pbr
	b.pbrInsertion = append(b.pbrInsertion, pbr)
	return pbr
}

// pbrInsertionOrder returns PBRs in creation order.
func (b *Bundle) pbrInsertionOrder() []*PBR {
	return b.pbrInsertion
}

// findUsePBRByName looks up the role=use PBR for the package named name,
// the lookup C4's edge-walk needs (edges always point at role=use
// dependants, spec §4.2).
func (b *Bundle) findUsePBRByName(name string) (*PBR, bool) {
	for _, pbr := range b.pbrInsertion {
		if pbr.Role == RoleUse && pbr.Package.Name == name {
			return pbr, true
		}
	}
	return nil, false
}

// Options is the bundler's entry-point options record (spec §6).
type Options struct {
	// Release pins package versions; "none" means local-only.
	Release string
	// NodeModulesMode is one of "skip", "copy", "symlink".
	NodeModulesMode string
	// TestPackages additionally bundles these packages in their test role.
	TestPackages []string
	// NoMinify skips the minifier driver (C8).
	NoMinify bool
	// StrictServerCSS promotes server-side CSS resources (spec I5) from a
	// silent drop to a Handler-category error. Additive; see SPEC_FULL.md
	// §9 open question 4.
	StrictServerCSS bool
}

// Validate checks the options record for the missing-required-option
// programming error spec §6 distinguishes from a bundling failure.
func (o Options) Validate() error {
	if o.Release == "" {
		return errMissingRelease
	}
	switch o.NodeModulesMode {
	case "skip", "copy", "symlink":
	default:
		return errInvalidNodeModulesMode
	}
	return nil
}
