package pkgmodel

import (
	"fmt"
	"os"
)

// SourceHandler transforms one source file into zero or more emitted
// resources (spec §3 GLOSSARY "Extension handler"). It is opaque to the
// bundler: a handler may call Emitter.Emit any number of times with any
// types into any environments.
type SourceHandler func(emit *Emitter, absSourcePath, absServePath string, env Environment) error

// DataSource is the exhaustive variant spec.md §9's design note calls for,
// replacing the original's implicit "source_file defaults to path, else
// read from data" fallback chain with an explicit switch. Exactly one
// variant should be set; EmitOptions.Validate enforces that.
type DataSource struct {
	Bytes []byte
	Text  string
	File  string
	// Infer, when true, means "read from the serve path's corresponding
	// source file" (the original's implicit default). Prefer setting File
	// explicitly; Infer exists only for handlers translating directly from
	// the original's looser calling convention.
	Infer bool
}

// EmitOptions configures one call to Emitter.Emit (spec §4.3 "Emit
// interface passed to handlers").
type EmitOptions struct {
	Type  ResourceKind
	Where []Environment
	// Path is the serve path; mandatory except for Head/Body.
	Path string
	Data DataSource
}

// ResourceKind mirrors bundle.ResourceType; pkgmodel can't import bundle
// (bundle imports pkgmodel), so the handler-facing vocabulary is declared
// here and translated 1:1 in bundle/compiler.go.
type ResourceKind string

const (
	KindJS     ResourceKind = "js"
	KindCSS    ResourceKind = "css"
	KindHead   ResourceKind = "head"
	KindBody   ResourceKind = "body"
	KindStatic ResourceKind = "static"
)

// Validate enforces the invariants spec.md §9's design note calls out
// explicitly: head/body must not set Path, at least one Where value is
// required (the emitter appends once per requested environment, but an
// empty Where is always a Handler-category misconfiguration), and exactly
// one DataSource variant must be set.
func (o EmitOptions) Validate() error {
	if len(o.Where) == 0 {
		return fmt.Errorf("emit: Where must name at least one environment")
	}
	switch o.Type {
	case KindHead, KindBody:
		if o.Path != "" {
			return fmt.Errorf("emit: type %s must not set Path", o.Type)
		}
		for _, env := range o.Where {
			if env != EnvClient {
				return fmt.Errorf("emit: type %s may only target client, got %s", o.Type, env)
			}
		}
	case KindJS, KindCSS, KindStatic:
		if o.Path == "" {
			return fmt.Errorf("emit: type %s requires Path", o.Type)
		}
	default:
		return fmt.Errorf("emit: unknown resource type %q", o.Type)
	}
	set := 0
	for _, isSet := range []bool{o.Data.Bytes != nil, o.Data.Text != "", o.Data.File != "", o.Data.Infer} {
		if isSet {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("emit: exactly one of Bytes, Text, File, or Infer must be set, got %d", set)
	}
	return nil
}

// Resolve reads the configured DataSource into bytes, per the exhaustive
// switch spec.md §9's design note requires.
func (o EmitOptions) Resolve() ([]byte, error) {
	switch {
	case o.Data.Bytes != nil:
		return o.Data.Bytes, nil
	case o.Data.Text != "":
		return []byte(o.Data.Text), nil
	case o.Data.File != "":
		return os.ReadFile(o.Data.File)
	case o.Data.Infer:
		return nil, fmt.Errorf("emit: inferred data source requires the compiler to supply a default path")
	default:
		return nil, fmt.Errorf("emit: no data source set (Bytes, Text, or File required)")
	}
}

// registerDefaultHandlers installs the Meteor core's built-in js and css
// extension handlers for both roles and both environments, the same pair
// every loader-resolved package gets before any custom handler is layered
// on top. Packages constructed directly (tests, fixtures) stay handler-free
// so the unrecognized-extension-becomes-static fallback stays exercisable.
func registerDefaultHandlers(p *Package) {
	for _, role := range []Role{RoleUse, RoleTest} {
		for _, env := range []Environment{EnvClient, EnvServer} {
			p.SetHandler(role, env, "js", defaultJSHandler)
			p.SetHandler(role, env, "css", defaultCSSHandler)
		}
	}
}

// defaultJSHandler emits the source file verbatim as a JS resource at its
// own serve path, the identity transform the core applies to plain .js
// sources before the linker (C6) combines them.
func defaultJSHandler(emit *Emitter, absSource, absServe string, env Environment) error {
	return emit.Emit(EmitOptions{
		Type:  KindJS,
		Where: []Environment{env},
		Path:  absServe,
		Data:  DataSource{File: absSource},
	})
}

// defaultCSSHandler emits the source file verbatim as a CSS resource,
// mirroring defaultJSHandler for stylesheets.
func defaultCSSHandler(emit *Emitter, absSource, absServe string, env Environment) error {
	return emit.Emit(EmitOptions{
		Type:  KindCSS,
		Where: []Environment{env},
		Path:  absServe,
		Data:  DataSource{File: absSource},
	})
}

// EmittedResource is one resource an Emitter produced, ready for the
// source compiler (C5) to append onto its PBR.
type EmittedResource struct {
	Type ResourceKind
	Env  Environment
	Data []byte
	Path string
}

// Emitter accumulates resources emitted by a SourceHandler during one
// source-file compilation.
type Emitter struct {
	// defaultFile backs DataSource.Infer: the compiler sets this to the
	// absolute source path before invoking the handler.
	defaultFile string
	Resources   []EmittedResource
}

// NewEmitter creates an Emitter whose inferred data source defaults to
// defaultSourceFile.
func NewEmitter(defaultSourceFile string) *Emitter {
	return &Emitter{defaultFile: defaultSourceFile}
}

// Emit validates opts, resolves its data, and appends one EmittedResource
// per requested environment.
func (e *Emitter) Emit(opts EmitOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	if opts.Data.Infer {
		opts.Data.File = e.defaultFile
		opts.Data.Infer = false
	}

	data, err := opts.Resolve()
	if err != nil {
		return err
	}

	for _, env := range opts.Where {
		e.Resources = append(e.Resources, EmittedResource{
			Type: opts.Type,
			Env:  env,
			Data: data,
			Path: opts.Path,
		})
	}
	return nil
}
