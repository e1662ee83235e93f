package raster

import (
	"math"

	"mockup-renderer/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters. Directions are in
// view space with +Z toward the viewer.
type LightConfig struct {
	LightDir  mathutil.Vec3
	RimDir    mathutil.Vec3
	ViewDir   mathutil.Vec3
	HalfMain  mathutil.Vec3 // precomputed half-vector for Blinn-Phong
	Ambient   float64
	Hemi      float64
	Direct    float64
	Rim       float64
	SpecInt   float64
	SpecPow   float64
	Exposure  float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig returns a soft studio setup: key light from the upper
// right front, a rim light from behind and a hemisphere fill.
func DefaultLightConfig() LightConfig {
	lightDir := mathutil.Vec3{180, 260, 300}.Normalize()
	rimDir := mathutil.Vec3{-160, 130, -210}.Normalize()
	viewDir := mathutil.Vec3{0, 0, 1}

	halfMain := lightDir.Add(viewDir).Normalize()

	return LightConfig{
		LightDir:  lightDir,
		RimDir:    rimDir,
		ViewDir:   viewDir,
		HalfMain:  halfMain,
		Ambient:   0.35,
		Hemi:      0.35,
		Direct:    0.95,
		Rim:       0.30,
		SpecInt:   0.60,
		SpecPow:   12.0,
		Exposure:  1.0,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// Shade returns the diffuse and specular terms for a view-space normal on
// a surface with the given roughness and metalness (both 0..1). Rough
// surfaces get a broad dim highlight; metals lose most of their diffuse.
func (lc *LightConfig) Shade(normal mathutil.Vec3, roughness, metalness float64) (diffuse, spec float64) {
	roughness = clamp01(roughness)
	metalness = clamp01(metalness)

	// Lambertian (abs for double-sided)
	ndlMain := math.Abs(normal.Dot(lc.LightDir))
	ndlRim := math.Abs(normal.Dot(lc.RimDir))

	// Hemisphere fill
	hemi := normal[1]*0.25 + 0.75
	hemiLight := hemi * lc.Hemi

	diffuse = (lc.Ambient + hemiLight + ndlMain*lc.Direct + ndlRim*lc.Rim) * (1 - 0.8*metalness)

	// Blinn-Phong specular
	ndh := math.Abs(normal.Dot(lc.HalfMain))
	gloss := 1 - roughness
	power := lc.SpecPow * (1 + 7*gloss*gloss)
	spec = math.Pow(ndh, power) * lc.SpecInt * (0.2 + 0.8*gloss)
	return diffuse, spec
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
