package pkgmodel

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitOptionsValidateHeadRejectsPath(t *testing.T) {
	opts := EmitOptions{Type: KindHead, Where: []Environment{EnvClient}, Path: "/x.js"}
	err := opts.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not set Path")
}

func TestEmitOptionsValidateHeadRejectsServer(t *testing.T) {
	opts := EmitOptions{Type: KindHead, Where: []Environment{EnvServer}}
	err := opts.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "may only target client")
}

func TestEmitOptionsValidateStaticRequiresPath(t *testing.T) {
	opts := EmitOptions{Type: KindStatic, Where: []Environment{EnvClient}}
	err := opts.Validate()
	require.Error(t, err)
}

func TestEmitterEmitAppendsPerEnvironment(t *testing.T) {
	e := NewEmitter("/src/app.js")
	err := e.Emit(EmitOptions{
		Type:  KindJS,
		Where: []Environment{EnvClient, EnvServer},
		Path:  "/app.js",
		Data:  DataSource{Text: "console.log(1)"},
	})
	require.NoError(t, err)
	require.Len(t, e.Resources, 2)
	assert.Equal(t, EnvClient, e.Resources[0].Env)
	assert.Equal(t, EnvServer, e.Resources[1].Env)
	assert.Equal(t, "console.log(1)", string(e.Resources[0].Data))
}

func TestEmitterInferUsesDefaultFile(t *testing.T) {
	path := t.TempDir() + "/app.js"
	require.NoError(t, os.WriteFile(path, []byte("console.log(2)"), 0o644))

	e := NewEmitter(path)
	err := e.Emit(EmitOptions{
		Type:  KindJS,
		Where: []Environment{EnvClient},
		Path:  "/app.js",
		Data:  DataSource{Infer: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "console.log(2)", string(e.Resources[0].Data))
}
