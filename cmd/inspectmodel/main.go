package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"mockup-renderer/internal/model"
)

func main() {
	surfaceName := flag.String("surface", "body", "Mesh name used when no mesh has UVs")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{model.Builtin}
	}

	provider := model.NewProvider()
	for _, path := range paths {
		m, err := provider.Load(context.Background(), path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Load error %s: %v\n", path, err)
			continue
		}
		lo, hi := m.Bounds()
		fmt.Printf("\n=== %s (meshes=%d verts=%d) ===\n", path, len(m.Meshes), m.VertexCount())
		fmt.Printf("  bounds: x=[%.3f..%.3f] y=[%.3f..%.3f] z=[%.3f..%.3f]\n",
			lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])

		for i, mesh := range m.Meshes {
			uv := "no"
			if mesh.HasUV() {
				uv = "yes"
			}
			fmt.Printf("  Mesh[%d] %-12s verts=%-6d tris=%-6d uv=%s\n",
				i, mesh.Name, len(mesh.Verts), len(mesh.Tris), uv)
		}

		s, err := model.FindSurface(m, *surfaceName)
		switch {
		case errors.Is(err, model.ErrSurfaceNotFound):
			fmt.Println("  paintable surface: none (renders undecorated)")
		case err != nil:
			fmt.Printf("  paintable surface: %v\n", err)
		default:
			how := "by name"
			if s.HasUV {
				how = "first mesh with UVs"
			}
			fmt.Printf("  paintable surface: Mesh[%d] %s (%s)\n", s.Mesh, s.Name, how)
		}
	}
}
