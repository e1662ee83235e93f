// Package decal maps placement parameters onto a box projector positioned
// on the paintable surface of the model.
package decal

import (
	"mockup-renderer/internal/config"
	"mockup-renderer/internal/design"
	"mockup-renderer/internal/mathutil"
	"mockup-renderer/internal/texture"
)

// Calibration ties placement percentages to model units. The reference
// values fit the built-in mug: the front of the body faces +Z and its
// printable band is centered 0.1 units above the base.
type Calibration struct {
	HorizontalSpan float64
	VerticalSpan   float64
	VerticalBias   float64
	ForwardOffset  float64
	UnitScale      float64
	Axis           mathutil.Vec3
}

// DefaultCalibration returns the reference calibration.
func DefaultCalibration() Calibration {
	return Calibration{
		HorizontalSpan: 0.15,
		VerticalSpan:   0.2,
		VerticalBias:   0.1,
		ForwardOffset:  0.1,
		UnitScale:      0.18,
		Axis:           mathutil.Vec3{0, 0, 1},
	}
}

// FromConfig overlays the non-zero fields of c on the reference
// calibration.
func FromConfig(c config.Calibration) Calibration {
	cal := DefaultCalibration()
	if c.HorizontalSpan != 0 {
		cal.HorizontalSpan = c.HorizontalSpan
	}
	if c.VerticalSpan != 0 {
		cal.VerticalSpan = c.VerticalSpan
	}
	if c.VerticalBias != 0 {
		cal.VerticalBias = c.VerticalBias
	}
	if c.ForwardOffset != 0 {
		cal.ForwardOffset = c.ForwardOffset
	}
	if c.UnitScale != 0 {
		cal.UnitScale = c.UnitScale
	}
	if axis := mathutil.Vec3(c.Axis); axis.Len() > 0 {
		cal.Axis = axis.Normalize()
	}
	return cal
}

// Transform is the pose of the decal projector in model space.
type Transform struct {
	Translation mathutil.Vec3
	Axis        mathutil.Vec3
	Angle       float64 // radians about Axis
	Scale       mathutil.Vec3
}

// ComputeTransform derives the projector pose from a placement. The result
// depends only on its arguments.
func ComputeTransform(p design.Placement, c Calibration) Transform {
	p = p.Clamp()
	axis := c.Axis
	if axis.Len() == 0 {
		axis = mathutil.Vec3{0, 0, 1}
	}
	s := p.ScalePercent / 100 * c.UnitScale
	return Transform{
		Translation: mathutil.Vec3{
			(p.PositionX - 50) / 100 * c.HorizontalSpan,
			(p.PositionY-50)/100*c.VerticalSpan + c.VerticalBias,
			c.ForwardOffset,
		},
		Axis:  axis,
		Angle: mathutil.Deg2Rad(p.RotationDegrees),
		Scale: mathutil.Vec3{s, s, s},
	}
}

// Matrix returns the projector-to-model matrix T·R·S.
func (t Transform) Matrix() mathutil.Mat4 {
	return mathutil.Compose(t.Translation, mathutil.AxisAngle(t.Axis, t.Angle), t.Scale)
}

// Project maps a model-space point into decal UV space. ok is false when
// the point lies outside the unit projector box.
func (t Transform) Project(p mathutil.Vec3) (u, v float64, ok bool) {
	return project(t.Matrix().AffineInverse(), p)
}

func project(inv mathutil.Mat4, p mathutil.Vec3) (u, v float64, ok bool) {
	l := inv.MulPoint(p)
	if l[0] < -0.5 || l[0] > 0.5 || l[1] < -0.5 || l[1] > 0.5 || l[2] < -0.5 || l[2] > 0.5 {
		return 0, 0, false
	}
	return l[0] + 0.5, 0.5 - l[1], true
}

// Decal is a texture projected by a Transform.
type Decal struct {
	Texture   *texture.Texture
	Transform Transform
	inverse   mathutil.Mat4
}

// Attach builds the decal for tex at placement p. It returns nil when
// there is no texture.
func Attach(tex *texture.Texture, p design.Placement, c Calibration) *Decal {
	if tex == nil {
		return nil
	}
	t := ComputeTransform(p, c)
	return &Decal{
		Texture:   tex,
		Transform: t,
		inverse:   t.Matrix().AffineInverse(),
	}
}

// Project maps a model-space point into the decal texture.
func (d *Decal) Project(p mathutil.Vec3) (u, v float64, ok bool) {
	if d == nil {
		return 0, 0, false
	}
	return project(d.inverse, p)
}
