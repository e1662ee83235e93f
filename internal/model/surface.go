package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSurfaceNotFound is returned when a model has no paintable surface.
var ErrSurfaceNotFound = errors.New("model: paintable surface not found")

// Surface identifies the paintable mesh of a model.
type Surface struct {
	Mesh  int
	Name  string
	HasUV bool
}

// FindSurface locates the paintable surface of m. The first mesh with UV
// coordinates wins; when no mesh has UVs, name is matched against mesh
// names (case-insensitive).
func FindSurface(m *Model, name string) (*Surface, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: no model", ErrSurfaceNotFound)
	}
	for i := range m.Meshes {
		if m.Meshes[i].HasUV() {
			return &Surface{Mesh: i, Name: m.Meshes[i].Name, HasUV: true}, nil
		}
	}
	if name != "" {
		for i := range m.Meshes {
			if strings.EqualFold(m.Meshes[i].Name, name) {
				return &Surface{Mesh: i, Name: m.Meshes[i].Name}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w in %s", ErrSurfaceNotFound, m.Name)
}

// MeshOf returns the mesh of s within m, or nil if s does not fit m.
func (s *Surface) MeshOf(m *Model) *Mesh {
	if s == nil || m == nil || s.Mesh < 0 || s.Mesh >= len(m.Meshes) {
		return nil
	}
	return &m.Meshes[s.Mesh]
}
