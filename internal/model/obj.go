package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const blanks = "\r\n\t "

// objDecoder reads Wavefront OBJ geometry. Each o/g statement starts a new
// mesh; materials and smoothing groups are ignored.
type objDecoder struct {
	verts   [][3]float32
	normals [][3]float32
	uvs     [][2]float32

	meshes  []*objMesh
	current *objMesh
	line    int
}

type objMesh struct {
	mesh      Mesh
	seen      map[[3]int]int // (v, vt, vn) → mesh vertex
	anyUV     bool
	anyNormal bool
}

// ParseOBJ reads an OBJ file from disk.
func ParseOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := DecodeOBJ(f, name)
	if err != nil {
		return nil, fmt.Errorf("model: parse %s: %w", path, err)
	}
	return m, nil
}

// DecodeOBJ decodes OBJ geometry from r. Polygons are fan-triangulated and
// negative (relative) indices are supported.
func DecodeOBJ(r io.Reader, name string) (*Model, error) {
	dec := &objDecoder{}
	br := bufio.NewReader(r)
	for {
		dec.line++
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if perr := dec.parseLine(strings.Trim(line, blanks)); perr != nil {
			return nil, fmt.Errorf("line %d: %w", dec.line, perr)
		}
		if err == io.EOF {
			break
		}
	}

	m := &Model{Name: name}
	for _, om := range dec.meshes {
		if len(om.mesh.Tris) == 0 {
			continue
		}
		if !om.anyUV {
			om.mesh.UVs = nil
		}
		if !om.anyNormal {
			computeNormals(&om.mesh)
		}
		m.Meshes = append(m.Meshes, om.mesh)
	}
	if len(m.Meshes) == 0 {
		return nil, fmt.Errorf("no faces")
	}
	return m, nil
}

func (dec *objDecoder) parseLine(line string) error {
	if line == "" || line[0] == '#' {
		return nil
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.verts = append(dec.verts, [3]float32{v[0], v[1], v[2]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		dec.uvs = append(dec.uvs, [2]float32{v[0], v[1]})
	case "o", "g":
		name := ""
		if len(fields) > 1 {
			name = strings.Join(fields[1:], " ")
		}
		dec.startMesh(name)
	case "f":
		return dec.parseFace(fields[1:])
	}
	return nil
}

func (dec *objDecoder) startMesh(name string) {
	if name == "" {
		name = fmt.Sprintf("mesh_%d", len(dec.meshes))
	}
	// A g right after an empty o just renames it
	if dec.current != nil && len(dec.current.mesh.Tris) == 0 {
		dec.current.mesh.Name = name
		return
	}
	dec.current = &objMesh{
		mesh: Mesh{Name: name, Material: DefaultMaterial()},
		seen: make(map[[3]int]int),
	}
	dec.meshes = append(dec.meshes, dec.current)
}

func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face with %d vertices", len(fields))
	}
	if dec.current == nil {
		dec.startMesh("")
	}
	idx := make([]int, len(fields))
	for i, f := range fields {
		vi, err := dec.copyVertex(f)
		if err != nil {
			return err
		}
		idx[i] = vi
	}
	for i := 2; i < len(idx); i++ {
		dec.current.mesh.Tris = append(dec.current.mesh.Tris, Triangle{idx[0], idx[i-1], idx[i]})
	}
	return nil
}

// copyVertex resolves one "v/vt/vn" corner into a mesh-local vertex.
func (dec *objDecoder) copyVertex(corner string) (int, error) {
	parts := strings.Split(corner, "/")
	key := [3]int{-1, -1, -1}
	sizes := [3]int{len(dec.verts), len(dec.uvs), len(dec.normals)}
	for k := 0; k < len(parts) && k < 3; k++ {
		if parts[k] == "" {
			continue
		}
		n, err := strconv.Atoi(parts[k])
		if err != nil {
			return 0, fmt.Errorf("bad index %q", corner)
		}
		if n < 0 {
			n = sizes[k] + n
		} else {
			n--
		}
		if n < 0 || n >= sizes[k] {
			return 0, fmt.Errorf("index out of range %q", corner)
		}
		key[k] = n
	}
	if key[0] < 0 {
		return 0, fmt.Errorf("missing vertex index %q", corner)
	}

	om := dec.current
	if vi, ok := om.seen[key]; ok {
		return vi, nil
	}
	vi := len(om.mesh.Verts)
	om.seen[key] = vi
	om.mesh.Verts = append(om.mesh.Verts, dec.verts[key[0]])

	var uv [2]float32
	if key[1] >= 0 {
		uv = dec.uvs[key[1]]
		om.anyUV = true
	}
	om.mesh.UVs = append(om.mesh.UVs, uv)

	var n [3]float32
	if key[2] >= 0 {
		n = dec.normals[key[2]]
		om.anyNormal = true
	}
	om.mesh.Normals = append(om.mesh.Normals, n)
	return vi, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
