package raster

import (
	"math"

	"mockup-renderer/internal/mathutil"
)

// DefaultPolar is the fixed orbit polar angle, measured from +Y. It keeps
// the camera slightly above the rim so the opening of the mug shows.
const DefaultPolar = math.Pi / 2.5

// DefaultFOV is the vertical field of view in degrees.
const DefaultFOV = 45.0

// Camera orbits the model center. Yaw 0 looks at the front (+Z) of the
// model; positive yaw moves the camera toward +X.
type Camera struct {
	Yaw         float64 // radians
	Polar       float64 // radians from +Y
	FOV         float64 // degrees, used when Perspective is set
	Perspective bool
	Zoom        float64 // 1 fits the model to the frame
}

// DefaultCamera returns the preview camera.
func DefaultCamera() Camera {
	return Camera{Polar: DefaultPolar, FOV: DefaultFOV, Perspective: true, Zoom: 1}
}

// ViewMatrix rotates world coordinates into view space, where +Z points at
// the viewer and +Y is up on screen.
func (c Camera) ViewMatrix() mathutil.Mat3 {
	polar := c.Polar
	if polar <= 0 || polar >= math.Pi {
		polar = DefaultPolar
	}
	return mathutil.Mat3Mul(mathutil.RotX(math.Pi/2-polar), mathutil.RotY(-c.Yaw))
}

// projection maps view-space points to pixel coordinates. Larger z is
// closer to the viewer.
type projection struct {
	center  mathutil.Vec3
	scale   float64
	half    float64
	persp   bool
	camDist float64
	zCenter float64
}

// fitProjection frames the view-space points of all meshes so the model
// fills the render minus a margin.
func fitProjection(views [][]mathutil.Vec3, cam Camera, renderSize, margin int) projection {
	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, vs := range views {
		for _, t := range vs {
			for k := 0; k < 3; k++ {
				lo[k] = math.Min(lo[k], t[k])
				hi[k] = math.Max(hi[k], t[k])
			}
		}
	}
	center := lo.Add(hi).Scale(0.5)
	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 0.001 {
		span = 0.001
	}
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	p := projection{
		center: center,
		scale:  float64(renderSize-2*margin) / span * zoom,
		half:   float64(renderSize) / 2,
	}
	if cam.Perspective {
		fov := cam.FOV
		if fov <= 0 {
			fov = DefaultFOV
		}
		p.persp = true
		p.zCenter = center[2]
		// Distance at which the half span fills the half field of view,
		// pushed back by the depth so the front does not clip
		p.camDist = span/2/math.Tan(mathutil.Deg2Rad(fov/2)) + (hi[2]-lo[2])/2
	}
	return p
}

// project returns pixel x, y and depth for a view-space point.
func (p projection) project(t mathutil.Vec3) (x, y, z float64) {
	dx, dy := t[0]-p.center[0], t[1]-p.center[1]
	if p.persp {
		zOff := t[2] - p.zCenter
		depth := math.Max(p.camDist-zOff, 1e-4)
		factor := p.camDist / depth
		dx *= factor
		dy *= factor
	}
	return dx*p.scale + p.half, -dy*p.scale + p.half, t[2]
}
