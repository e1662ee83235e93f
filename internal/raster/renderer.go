// Package raster is a CPU renderer for product models: z-buffered triangle
// rasterization with texture and decal compositing, soft studio lighting
// and supersampling.
package raster

import (
	"errors"
	"image"
	"image/color"

	"mockup-renderer/internal/logging"
	"mockup-renderer/internal/mathutil"
	"mockup-renderer/internal/model"
)

// ErrEmptyScene is returned when a scene has nothing to draw.
var ErrEmptyScene = errors.New("raster: scene has no model")

// Scene is what a Renderer draws.
type Scene struct {
	Model      *model.Model
	Background color.NRGBA // zero is transparent
}

// Renderer draws scenes into a square frame. A Renderer is not safe for
// concurrent use; batch workers each own one.
type Renderer struct {
	Light LightConfig

	size        int
	supersample int
	fb          *FrameBuffer
	frame       *image.NRGBA
	frames      int
}

// NewRenderer creates a renderer for size×size frames, drawn internally at
// size×supersample and filtered down.
func NewRenderer(size, supersample int) *Renderer {
	if size <= 0 {
		size = 512
	}
	if supersample <= 0 {
		supersample = 1
	}
	return &Renderer{
		Light:       DefaultLightConfig(),
		size:        size,
		supersample: supersample,
	}
}

// Size returns the frame edge length.
func (r *Renderer) Size() int { return r.size }

// Render draws scene from cam and keeps the result as the current frame.
func (r *Renderer) Render(scene Scene, cam Camera) error {
	renderSize := r.size * r.supersample
	if r.fb == nil || r.fb.Width != renderSize {
		r.fb = NewFrameBuffer(renderSize, renderSize)
	}
	r.fb.Clear(scene.Background)

	m := scene.Model
	if m == nil || m.VertexCount() == 0 {
		r.frame = Downsample(r.fb.Image(), r.size, r.size)
		return ErrEmptyScene
	}

	// Rotate into view space and frame the whole model
	R := cam.ViewMatrix()
	views := make([][]mathutil.Vec3, len(m.Meshes))
	for i := range m.Meshes {
		vs := make([]mathutil.Vec3, len(m.Meshes[i].Verts))
		for j, v := range m.Meshes[i].Verts {
			vs[j] = R.MulVec3(mathutil.V3(v))
		}
		views[i] = vs
	}
	proj := fitProjection(views, cam, renderSize, renderSize/10)

	tris := 0
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		if len(mesh.Verts) == 0 {
			continue
		}
		pass := newMeshPass(mesh, views[i], R, proj, &r.Light)
		for _, tri := range mesh.Tris {
			RasterizeTriangle(r.fb, pass, tri, &r.Light)
		}
		tris += len(mesh.Tris)
	}

	r.frame = Downsample(r.fb.Image(), r.size, r.size)
	r.frames++
	logging.Logger().Debug("frame rendered", "model", m.Name, "triangles", tris, "size", r.size, "frame", r.frames)
	return nil
}

// Frame returns the most recent frame, or nil before the first Render.
// The image is replaced, not modified, by later renders.
func (r *Renderer) Frame() *image.NRGBA {
	return r.frame
}

// Frames returns how many frames have been rendered.
func (r *Renderer) Frames() int {
	return r.frames
}
