package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "symlink", cfg.NodeModulesMode)
}

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	merged := cfg.WithDefaults()
	assert.Equal(t, "symlink", merged.NodeModulesMode)
}

func TestWithDefaultsPreservesSetValues(t *testing.T) {
	cfg := &Config{NodeModulesMode: "copy", Registry: "https://example.test"}
	merged := cfg.WithDefaults()
	assert.Equal(t, "copy", merged.NodeModulesMode)
	assert.Equal(t, "https://example.test", merged.Registry)
}

func TestWithDefaultsNilReceiver(t *testing.T) {
	var cfg *Config
	merged := cfg.WithDefaults()
	assert.Equal(t, "symlink", merged.NodeModulesMode)
}
