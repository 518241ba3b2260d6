package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAllFlagPrecedence(t *testing.T) {
	resolved := ResolveAll(ResolveOptions{
		NodeModulesModeFlag: "copy",
		Config:              &Config{NodeModulesMode: "symlink"},
	})
	assert.Equal(t, "copy", resolved.NodeModulesMode.Value)
	assert.Equal(t, "flag", resolved.NodeModulesMode.Source)
}

func TestResolveAllConfigPrecedence(t *testing.T) {
	resolved := ResolveAll(ResolveOptions{
		Config: &Config{NodeModulesMode: "symlink"},
	})
	assert.Equal(t, "symlink", resolved.NodeModulesMode.Value)
	assert.Equal(t, "config", resolved.NodeModulesMode.Source)
}

func TestResolveAllDefault(t *testing.T) {
	resolved := ResolveAll(ResolveOptions{})
	assert.Equal(t, "symlink", resolved.NodeModulesMode.Value)
	assert.Equal(t, "default", resolved.NodeModulesMode.Source)
}
