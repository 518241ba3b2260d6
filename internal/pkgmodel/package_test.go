package pkgmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPackageInitializesMaps(t *testing.T) {
	pkg := NewPackage("id1", "left-pad", "/src", "/packages/left-pad")
	assert.True(t, len(pkg.Uses[RoleUse]) == 2)
	assert.Empty(t, pkg.Uses[RoleUse][EnvClient])
	assert.False(t, pkg.IsApplication())
}

func TestApplicationPackageHasNoName(t *testing.T) {
	pkg := NewPackage("app", "", "/app", "/")
	assert.True(t, pkg.IsApplication())
}

func TestSetHandlerAndLookup(t *testing.T) {
	pkg := NewPackage("id1", "styled", "/src", "/packages/styled")
	called := false
	pkg.SetHandler(RoleUse, EnvClient, "less", func(e *Emitter, src, serve string, env Environment) error {
		called = true
		return nil
	})

	h, ok := pkg.HandlerFor(RoleUse, EnvClient, "less")
	assert.True(t, ok)
	_ = h(nil, "", "", EnvClient)
	assert.True(t, called)

	_, ok = pkg.HandlerFor(RoleUse, EnvClient, "css")
	assert.False(t, ok)
}
