package decal

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockup-renderer/internal/config"
	"mockup-renderer/internal/design"
	"mockup-renderer/internal/mathutil"
	"mockup-renderer/internal/texture"
)

func TestComputeTransformReference(t *testing.T) {
	tr := ComputeTransform(design.Placement{PositionX: 75, PositionY: 50, ScalePercent: 70, RotationDegrees: 90}, DefaultCalibration())

	assert.InDelta(t, 0.0375, tr.Translation[0], 1e-12)
	assert.InDelta(t, 0.1, tr.Translation[1], 1e-12)
	assert.InDelta(t, 0.1, tr.Translation[2], 1e-12)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0.126, tr.Scale[i], 1e-12)
	}
	assert.InDelta(t, math.Pi/2, tr.Angle, 1e-12)
	assert.Equal(t, mathutil.Vec3{0, 0, 1}, tr.Axis)
}

func TestComputeTransformCentered(t *testing.T) {
	tr := ComputeTransform(design.DefaultImagePlacement(), DefaultCalibration())
	assert.Zero(t, tr.Translation[0])
	assert.InDelta(t, 0.1, tr.Translation[1], 1e-12)
	assert.Zero(t, tr.Angle)
}

func TestComputeTransformClamps(t *testing.T) {
	a := ComputeTransform(design.Placement{PositionX: 250, PositionY: -10, ScalePercent: 1, RotationDegrees: 400}, DefaultCalibration())
	b := ComputeTransform(design.Placement{PositionX: 100, PositionY: 0, ScalePercent: 20, RotationDegrees: 180}, DefaultCalibration())
	assert.Equal(t, b, a)
}

func TestComputeTransformIsPure(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cal := DefaultCalibration()
	for i := 0; i < 500; i++ {
		p := design.Placement{
			PositionX:       rng.Float64() * 100,
			PositionY:       rng.Float64() * 100,
			ScalePercent:    20 + rng.Float64()*130,
			RotationDegrees: -180 + rng.Float64()*360,
		}
		a := ComputeTransform(p, cal)
		b := ComputeTransform(p, cal)
		require.Equal(t, a, b)
		require.Equal(t, a.Matrix(), b.Matrix())
	}
}

func TestProjectBox(t *testing.T) {
	tr := ComputeTransform(design.DefaultImagePlacement(), DefaultCalibration())
	half := tr.Scale[0] / 2

	u, v, ok := tr.Project(tr.Translation)
	require.True(t, ok)
	assert.InDelta(t, 0.5, u, 1e-9)
	assert.InDelta(t, 0.5, v, 1e-9)

	// Top-left corner of the box maps to (0,0)
	u, v, ok = tr.Project(tr.Translation.Add(mathutil.Vec3{-half * 0.999, half * 0.999, 0}))
	require.True(t, ok)
	assert.InDelta(t, 0, u, 1e-3)
	assert.InDelta(t, 0, v, 1e-3)

	_, _, ok = tr.Project(tr.Translation.Add(mathutil.Vec3{half * 1.01, 0, 0}))
	assert.False(t, ok)
	_, _, ok = tr.Project(mathutil.Vec3{0, 0.1, -0.1})
	assert.False(t, ok, "back of the mug is outside the projector")
}

func TestProjectRotated(t *testing.T) {
	tr := ComputeTransform(design.Placement{PositionX: 50, PositionY: 50, ScalePercent: 100, RotationDegrees: 90}, DefaultCalibration())
	// A quarter turn counterclockwise brings the bottom of the design to the right
	u, v, ok := tr.Project(tr.Translation.Add(mathutil.Vec3{0.05, 0, 0}))
	require.True(t, ok)
	assert.InDelta(t, 0.5, u, 1e-9)
	assert.Greater(t, v, 0.5)
}

func TestAttach(t *testing.T) {
	assert.Nil(t, Attach(nil, design.DefaultImagePlacement(), DefaultCalibration()))

	tex := texture.New(image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	d := Attach(tex, design.DefaultImagePlacement(), DefaultCalibration())
	require.NotNil(t, d)
	assert.Same(t, tex, d.Texture)

	u, v, ok := d.Project(d.Transform.Translation)
	require.True(t, ok)
	assert.InDelta(t, 0.5, u, 1e-9)
	assert.InDelta(t, 0.5, v, 1e-9)

	var none *Decal
	_, _, ok = none.Project(mathutil.Vec3{})
	assert.False(t, ok)
}

func TestFromConfig(t *testing.T) {
	assert.Equal(t, DefaultCalibration(), FromConfig(config.Calibration{}))

	cal := FromConfig(config.Calibration{UnitScale: 0.3, Axis: [3]float64{0, 0, 2}})
	assert.InDelta(t, 0.3, cal.UnitScale, 1e-12)
	assert.Equal(t, mathutil.Vec3{0, 0, 1}, cal.Axis)
	assert.InDelta(t, 0.15, cal.HorizontalSpan, 1e-12)
}
