package material

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockup-renderer/internal/decal"
	"mockup-renderer/internal/design"
	"mockup-renderer/internal/model"
	"mockup-renderer/internal/texture"
)

func setup(t *testing.T) (*model.Model, *model.Surface, *texture.Texture, *decal.Decal) {
	t.Helper()
	m := model.BuildMug().Clone()
	s, err := model.FindSurface(m, "body")
	require.NoError(t, err)
	tex := texture.New(image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	d := decal.Attach(tex, design.DefaultImagePlacement(), decal.DefaultCalibration())
	return m, s, tex, d
}

func TestBindApplies(t *testing.T) {
	m, s, tex, d := setup(t)
	b := NewBinder(model.DefaultMaterial(), model.MappingDecal)

	got := b.Bind(m, s, tex, d)
	assert.Equal(t, Bound{Applied: true, Surface: "body", Decorated: true}, got)

	mat := m.Meshes[s.Mesh].Material
	assert.Same(t, tex, mat.Map)
	assert.Same(t, d, mat.Decal)
	assert.True(t, mat.Transparent)
	assert.InDelta(t, 0.7, mat.Roughness, 1e-12)
	assert.Zero(t, mat.Metalness)
	assert.Equal(t, model.DefaultMaterial().BaseColor, mat.BaseColor)
}

func TestBindIdempotent(t *testing.T) {
	m, s, tex, d := setup(t)
	b := NewBinder(model.DefaultMaterial(), model.MappingDecal)

	b.Bind(m, s, tex, d)
	first := m.Meshes[s.Mesh].Material
	b.Bind(m, s, tex, d)
	assert.Equal(t, first, m.Meshes[s.Mesh].Material)
}

func TestBindNilTextureRestoresBase(t *testing.T) {
	m, s, tex, d := setup(t)
	b := NewBinder(model.DefaultMaterial(), model.MappingDecal)

	b.Bind(m, s, tex, d)
	got := b.Bind(m, s, nil, nil)
	assert.True(t, got.Applied)
	assert.False(t, got.Decorated)
	assert.Equal(t, model.DefaultMaterial(), m.Meshes[s.Mesh].Material)
}

func TestBindNoSurfaceIsNoop(t *testing.T) {
	m, _, tex, d := setup(t)
	b := NewBinder(model.DefaultMaterial(), model.MappingDecal)

	before := m.Meshes[0].Material
	assert.False(t, b.Bind(m, nil, tex, d).Applied)
	assert.False(t, b.Bind(nil, &model.Surface{}, tex, d).Applied)
	assert.Equal(t, before, m.Meshes[0].Material)
}

func TestBindReplacesPreviousSurface(t *testing.T) {
	m, s, tex, d := setup(t)
	b := NewBinder(model.DefaultMaterial(), model.MappingDecal)

	b.Bind(m, s, tex, d)
	other := &model.Surface{Mesh: 2, Name: "handle"}
	b.Bind(m, other, tex, d)

	assert.False(t, m.Meshes[s.Mesh].Material.Decorated(), "only one override at a time")
	assert.True(t, m.Meshes[2].Material.Decorated())

	b.Reset()
	for _, mesh := range m.Meshes {
		assert.False(t, mesh.Material.Decorated(), mesh.Name)
	}
}

func TestBindUVMappingDropsDecal(t *testing.T) {
	m, s, tex, d := setup(t)
	b := NewBinder(model.DefaultMaterial(), model.MappingUV)
	b.Bind(m, s, tex, d)

	mat := m.Meshes[s.Mesh].Material
	assert.Equal(t, model.MappingUV, mat.Mapping)
	assert.Nil(t, mat.Decal)
	assert.Same(t, tex, mat.Map)
}

func TestBindLeavesSourceModel(t *testing.T) {
	src := model.BuildMug()
	m := src.Clone()
	s, err := model.FindSurface(m, "")
	require.NoError(t, err)
	tex := texture.New(image.NewNRGBA(image.Rect(0, 0, 2, 2)))

	NewBinder(model.DefaultMaterial(), model.MappingDecal).Bind(m, s, tex, nil)
	assert.False(t, src.Meshes[s.Mesh].Material.Decorated())
}
