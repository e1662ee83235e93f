// Package model holds product meshes, their materials and the provider
// that loads them.
package model

import (
	"image/color"
	"math"

	"mockup-renderer/internal/decal"
	"mockup-renderer/internal/mathutil"
	"mockup-renderer/internal/texture"
)

// Triangle indexes three vertices of its mesh. Positions, normals and UVs
// share the same index.
type Triangle [3]int

// Mesh holds geometry and material for one named part of a model.
// Normals and UVs are either empty or parallel to Verts.
type Mesh struct {
	Name     string
	Verts    [][3]float32
	Normals  [][3]float32
	UVs      [][2]float32
	Tris     []Triangle
	Material Material
}

// HasUV reports whether the mesh carries texture coordinates.
func (m *Mesh) HasUV() bool {
	return len(m.UVs) > 0 && len(m.UVs) == len(m.Verts)
}

// Mapping selects how a material's texture reaches the surface.
type Mapping string

const (
	// MappingDecal projects the texture through the material's decal.
	MappingDecal Mapping = "decal"
	// MappingUV wraps the texture over the whole surface by its UVs.
	MappingUV Mapping = "uv"
)

// Material is a physically based surface description.
type Material struct {
	BaseColor   color.NRGBA
	Roughness   float64
	Metalness   float64
	Map         *texture.Texture
	Decal       *decal.Decal
	Mapping     Mapping
	Transparent bool
}

// DefaultMaterial is the undecorated ceramic surface.
func DefaultMaterial() Material {
	return Material{
		BaseColor: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Roughness: 0.7,
		Metalness: 0,
		Mapping:   MappingDecal,
	}
}

// Decorated reports whether the material carries a texture.
func (m Material) Decorated() bool {
	return m.Map != nil
}

// Model is a named set of meshes.
type Model struct {
	Name   string
	Meshes []Mesh
}

// Clone returns a copy whose mesh headers and materials can be changed
// without affecting m. Geometry slices are shared and must be treated as
// read-only.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	c := &Model{Name: m.Name, Meshes: make([]Mesh, len(m.Meshes))}
	copy(c.Meshes, m.Meshes)
	return c
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Model) Bounds() (lo, hi mathutil.Vec3) {
	lo = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := range m.Meshes {
		for _, v := range m.Meshes[i].Verts {
			for k := 0; k < 3; k++ {
				f := float64(v[k])
				lo[k] = math.Min(lo[k], f)
				hi[k] = math.Max(hi[k], f)
			}
		}
	}
	return lo, hi
}

// VertexCount returns the number of vertices across all meshes.
func (m *Model) VertexCount() int {
	n := 0
	for i := range m.Meshes {
		n += len(m.Meshes[i].Verts)
	}
	return n
}

// computeNormals fills smooth per-vertex normals from face geometry.
func computeNormals(m *Mesh) {
	normals := make([]mathutil.Vec3, len(m.Verts))
	for _, t := range m.Tris {
		a, b, c := mathutil.V3(m.Verts[t[0]]), mathutil.V3(m.Verts[t[1]]), mathutil.V3(m.Verts[t[2]])
		n := b.Sub(a).Cross(c.Sub(a))
		for _, i := range t {
			normals[i] = normals[i].Add(n)
		}
	}
	m.Normals = make([][3]float32, len(m.Verts))
	for i, n := range normals {
		n = n.Normalize()
		m.Normals[i] = [3]float32{float32(n[0]), float32(n[1]), float32(n[2])}
	}
}
