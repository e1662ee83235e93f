// Package material binds synthesized textures to the paintable surface of
// a model.
package material

import (
	"mockup-renderer/internal/decal"
	"mockup-renderer/internal/logging"
	"mockup-renderer/internal/model"
	"mockup-renderer/internal/texture"
)

// Binder applies textures to one model. A model carries at most one
// decorated surface at a time.
type Binder struct {
	base    model.Material
	mapping model.Mapping

	bound *model.Model
	mesh  int // mesh index currently overridden in bound, -1 if none
}

// NewBinder creates a binder that builds materials from base using the
// given mapping mode.
func NewBinder(base model.Material, mapping model.Mapping) *Binder {
	if mapping != model.MappingUV {
		mapping = model.MappingDecal
	}
	return &Binder{base: base, mapping: mapping, mesh: -1}
}

// Bound describes the outcome of a Bind.
type Bound struct {
	Applied   bool
	Surface   string
	Decorated bool
}

// Bind sets the material of surface s on m. A nil texture restores the base
// material. Binding a different surface first restores the previous one.
// Nil model or surface is a logged no-op. Only m is changed, so callers
// pass their own clone.
func (b *Binder) Bind(m *model.Model, s *model.Surface, tex *texture.Texture, d *decal.Decal) Bound {
	mesh := s.MeshOf(m)
	if mesh == nil {
		logging.Logger().Warn("bind skipped: no paintable surface")
		return Bound{}
	}

	if b.bound == m && b.mesh >= 0 && b.mesh != s.Mesh && b.mesh < len(m.Meshes) {
		m.Meshes[b.mesh].Material = b.base
	}
	b.bound = m
	b.mesh = s.Mesh

	mesh.Material = b.Material(tex, d)
	logging.Logger().Debug("material bound",
		"surface", s.Name, "decorated", tex != nil, "mapping", string(b.mapping))
	return Bound{Applied: true, Surface: s.Name, Decorated: tex != nil}
}

// Material returns the material Bind would assign for tex and d.
func (b *Binder) Material(tex *texture.Texture, d *decal.Decal) model.Material {
	mat := b.base
	if tex == nil {
		return mat
	}
	mat.Map = tex
	mat.Transparent = true
	mat.Mapping = b.mapping
	if b.mapping == model.MappingDecal {
		mat.Decal = d
	}
	return mat
}

// Reset restores the base material on the surface bound last.
func (b *Binder) Reset() {
	if b.bound != nil && b.mesh >= 0 && b.mesh < len(b.bound.Meshes) {
		b.bound.Meshes[b.mesh].Material = b.base
	}
	b.bound = nil
	b.mesh = -1
}
