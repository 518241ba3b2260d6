package bundle

// exportsKey identifies one (package, role, env) export slot.
type exportsKey struct {
	PackageID string
	Role      Role
	Env       Environment
}

// ExportsRegistry replaces the original design's "linker writes computed
// exports back onto Package" hack (spec.md §9 design note "Package
// mutation by the linker"). The Bundle owns one registry; Package stays
// immutable, and the linker driver (C6) reads and writes through this type
// instead.
type ExportsRegistry struct {
	declared map[exportsKey]map[string]bool
	computed map[exportsKey]map[string]bool
}

// NewExportsRegistry creates an empty registry.
func NewExportsRegistry() *ExportsRegistry {
	return &ExportsRegistry{
		declared: make(map[exportsKey]map[string]bool),
		computed: make(map[exportsKey]map[string]bool),
	}
}

// SeedDeclared records a package's author-declared export set (the
// linker's forceExport input), read once from pkgmodel.Package.Exports.
func (r *ExportsRegistry) SeedDeclared(packageID string, role Role, env Environment, symbols map[string]bool) {
	r.declared[exportsKey{packageID, role, env}] = symbols
}

// Declared returns the declared export set for (package, role, env), or an
// empty set if none was seeded.
func (r *ExportsRegistry) Declared(packageID string, role Role, env Environment) map[string]bool {
	return r.declared[exportsKey{packageID, role, env}]
}

// SetComputed stores the linker's computed export set for (package, role,
// env), making it visible to every PBR visited later in load order (spec
// §4.4 step 4, "so later PBRs observe the correct exports").
func (r *ExportsRegistry) SetComputed(packageID string, role Role, env Environment, symbols map[string]bool) {
	r.computed[exportsKey{packageID, role, env}] = symbols
}

// Computed returns the linker's computed export set for (package, role,
// env), or nil if the linker hasn't processed that PBR×environment yet —
// which for a well-ordered traversal only happens for packages not present
// in that environment at all.
func (r *ExportsRegistry) Computed(packageID string, role Role, env Environment) map[string]bool {
	return r.computed[exportsKey{packageID, role, env}]
}
