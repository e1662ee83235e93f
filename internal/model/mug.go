package model

import (
	"math"
)

// Procedural mug dimensions in model units. The body stands on y=0 with
// its printable front facing +Z and the handle on +X.
const (
	mugRadius      = 0.1
	mugHeight      = 0.2
	mugWall        = 0.008
	mugSegments    = 72
	mugRings       = 12
	handleMajor    = 0.055
	handleMinor    = 0.011
	handleSegments = 24
	handleSides    = 12
)

// BuildMug returns the built-in mug: a UV-mapped outer body, an untextured
// shell (rim, inner wall, bottoms) and a handle.
func BuildMug() *Model {
	return &Model{
		Name:   "mug",
		Meshes: []Mesh{mugBody(), mugShell(), mugHandle()},
	}
}

// mugBody is the outer cylinder. u runs around the mug with the front
// (+Z) at u=0.5; v runs from top (0) to bottom (1).
func mugBody() Mesh {
	m := Mesh{Name: "body", Material: DefaultMaterial()}
	for r := 0; r <= mugRings; r++ {
		t := float64(r) / mugRings
		y := mugHeight * (1 - t)
		for s := 0; s <= mugSegments; s++ {
			u := float64(s) / mugSegments
			// u=0.5 faces +Z
			a := (u - 0.5) * 2 * math.Pi
			x, z := math.Sin(a), math.Cos(a)
			m.Verts = append(m.Verts, vec3f(mugRadius*x, y, mugRadius*z))
			m.Normals = append(m.Normals, vec3f(x, 0, z))
			m.UVs = append(m.UVs, [2]float32{float32(u), float32(t)})
		}
	}
	row := mugSegments + 1
	for r := 0; r < mugRings; r++ {
		for s := 0; s < mugSegments; s++ {
			a := r*row + s
			b := a + row
			m.Tris = append(m.Tris, Triangle{a, b, a + 1}, Triangle{a + 1, b, b + 1})
		}
	}
	return m
}

// mugShell is everything of the body that is not printable: the rim, the
// inner wall and both bottoms.
func mugShell() Mesh {
	m := Mesh{Name: "shell", Material: DefaultMaterial()}
	inner := mugRadius - mugWall

	ring := func(radius, y float64, nx, ny, nz float64, inward bool) int {
		start := len(m.Verts)
		for s := 0; s < mugSegments; s++ {
			a := float64(s) / mugSegments * 2 * math.Pi
			x, z := math.Sin(a), math.Cos(a)
			m.Verts = append(m.Verts, vec3f(radius*x, y, radius*z))
			if inward {
				m.Normals = append(m.Normals, vec3f(-x, 0, -z))
			} else {
				m.Normals = append(m.Normals, vec3f(nx, ny, nz))
			}
		}
		return start
	}
	band := func(a, b int) {
		for s := 0; s < mugSegments; s++ {
			n := (s + 1) % mugSegments
			m.Tris = append(m.Tris, Triangle{a + s, b + s, a + n}, Triangle{a + n, b + s, b + n})
		}
	}
	disk := func(center [3]float32, normal [3]float32, rim int) {
		c := len(m.Verts)
		m.Verts = append(m.Verts, center)
		m.Normals = append(m.Normals, normal)
		for s := 0; s < mugSegments; s++ {
			n := (s + 1) % mugSegments
			m.Tris = append(m.Tris, Triangle{c, rim + s, rim + n})
		}
	}

	// Rim annulus
	rimOuter := ring(mugRadius, mugHeight, 0, 1, 0, false)
	rimInner := ring(inner, mugHeight, 0, 1, 0, false)
	band(rimOuter, rimInner)

	// Inner wall down to the inner floor
	wallTop := ring(inner, mugHeight, 0, 0, 0, true)
	wallBottom := ring(inner, mugWall, 0, 0, 0, true)
	band(wallTop, wallBottom)

	floor := ring(inner, mugWall, 0, 1, 0, false)
	disk(vec3f(0, mugWall, 0), vec3f(0, 1, 0), floor)

	base := ring(mugRadius, 0, 0, -1, 0, false)
	disk(vec3f(0, 0, 0), vec3f(0, -1, 0), base)
	return m
}

// mugHandle is a half torus on the +X side, swept in the XY plane.
func mugHandle() Mesh {
	m := Mesh{Name: "handle", Material: DefaultMaterial()}
	cx := mugRadius - 0.004
	cy := mugHeight / 2
	for i := 0; i <= handleSegments; i++ {
		// From the bottom attachment through +X to the top
		theta := -math.Pi/2 + math.Pi*float64(i)/handleSegments
		dx, dy := math.Cos(theta), math.Sin(theta)
		for j := 0; j < handleSides; j++ {
			phi := 2 * math.Pi * float64(j) / handleSides
			// Tube normal in the (radial, z) frame
			nr, nz := math.Cos(phi), math.Sin(phi)
			nx, ny := dx*nr, dy*nr
			m.Verts = append(m.Verts, vec3f(
				cx+handleMajor*dx+handleMinor*nx,
				cy+handleMajor*dy+handleMinor*ny,
				handleMinor*nz,
			))
			m.Normals = append(m.Normals, vec3f(nx, ny, nz))
		}
	}
	for i := 0; i < handleSegments; i++ {
		for j := 0; j < handleSides; j++ {
			a := i*handleSides + j
			b := i*handleSides + (j+1)%handleSides
			c := a + handleSides
			d := b + handleSides
			m.Tris = append(m.Tris, Triangle{a, c, b}, Triangle{b, c, d})
		}
	}
	return m
}

func vec3f(x, y, z float64) [3]float32 {
	return [3]float32{float32(x), float32(y), float32(z)}
}
