package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgepack/forge/internal/errors"
	"github.com/forgepack/forge/internal/pkgmodel"
)

func TestAggregateDropsServerCSSByDefault(t *testing.T) {
	b := NewBundle("/app", "none", nil, nil)
	pkg := pkgmodel.NewPackage("A", "A", "/src/A", "/packages/A")
	pbr := b.getOrCreatePBR(pkg, RoleUse)
	pbr.Presence[EnvServer] = true
	pbr.Resources[EnvServer] = []Resource{{Type: ResourceCSS, Data: []byte("body{}"), ServePath: "/a.css"}}
	b.PBRsByOrder = []*PBR{pbr}

	require.NoError(t, Aggregate(b, false))

	assert.Empty(t, b.CSS)
	assert.Empty(t, b.Files.Client)
}

func TestAggregateStrictServerCSSIsAnError(t *testing.T) {
	b := NewBundle("/app", "none", nil, nil)
	pkg := pkgmodel.NewPackage("A", "A", "/src/A", "/packages/A")
	pbr := b.getOrCreatePBR(pkg, RoleUse)
	pbr.Presence[EnvServer] = true
	pbr.Resources[EnvServer] = []Resource{{Type: ResourceCSS, Data: []byte("body{}"), ServePath: "/a.css"}}
	b.PBRsByOrder = []*PBR{pbr}

	err := Aggregate(b, true)
	require.Error(t, err)
}

func TestAggregateClientCSSIsKept(t *testing.T) {
	b := NewBundle("/app", "none", nil, nil)
	pkg := pkgmodel.NewPackage("A", "A", "/src/A", "/packages/A")
	pbr := b.getOrCreatePBR(pkg, RoleUse)
	pbr.Presence[EnvClient] = true
	pbr.Resources[EnvClient] = []Resource{{Type: ResourceCSS, Data: []byte("body{}"), ServePath: "/a.css"}}
	b.PBRsByOrder = []*PBR{pbr}

	require.NoError(t, Aggregate(b, false))
	assert.Equal(t, []string{"/a.css"}, b.CSS)
	assert.Equal(t, []byte("body{}"), b.Files.Client["/a.css"])
}

// TestAggregateDuplicateServePathIsConflict exercises I3: two packages
// claiming the same client serve path must fail the bundle rather than
// have the second silently overwrite the first.
func TestAggregateDuplicateServePathIsConflict(t *testing.T) {
	b := NewBundle("/app", "none", nil, nil)
	pkgA := pkgmodel.NewPackage("A", "A", "/src/A", "/packages/A")
	pbrA := b.getOrCreatePBR(pkgA, RoleUse)
	pbrA.Presence[EnvClient] = true
	pbrA.Resources[EnvClient] = []Resource{{Type: ResourceJS, Data: []byte("a();"), ServePath: "/shared.js"}}

	pkgB := pkgmodel.NewPackage("B", "B", "/src/B", "/packages/B")
	pbrB := b.getOrCreatePBR(pkgB, RoleUse)
	pbrB.Presence[EnvClient] = true
	pbrB.Resources[EnvClient] = []Resource{{Type: ResourceStatic, Data: []byte("b"), ServePath: "/shared.js"}}

	b.PBRsByOrder = []*PBR{pbrA, pbrB}

	err := Aggregate(b, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/shared.js")
	assert.Contains(t, err.Error(), "A")
	assert.Contains(t, err.Error(), "B")
	assert.Equal(t, []byte("a();"), b.Files.Client["/shared.js"])
}

func TestAggregateHeadBodyTargetingServerIsResourceTypeError(t *testing.T) {
	b := NewBundle("/app", "none", nil, nil)
	pkg := pkgmodel.NewPackage("A", "A", "/src/A", "/packages/A")
	pbr := b.getOrCreatePBR(pkg, RoleUse)
	pbr.Presence[EnvServer] = true
	pbr.Resources[EnvServer] = []Resource{{Type: ResourceHead, Data: []byte("<meta>")}}
	b.PBRsByOrder = []*PBR{pbr}

	err := Aggregate(b, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrResourceType)
}
