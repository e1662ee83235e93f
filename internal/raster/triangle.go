package raster

import (
	"image"
	"math"

	"mockup-renderer/internal/decal"
	"mockup-renderer/internal/mathutil"
	"mockup-renderer/internal/model"
)

// meshPass holds one mesh projected for the current frame. Shading is
// computed per vertex and interpolated (Gouraud).
type meshPass struct {
	px, py, pz []float64
	diff, spec []float64
	verts      [][3]float32 // model space, for decal projection
	uvs        [][2]float32

	base     [3]uint8
	specTint [3]float64 // linear

	uvTex    *image.NRGBA
	decal    *decal.Decal
	decalTex *image.NRGBA
}

func newMeshPass(mesh *model.Mesh, view []mathutil.Vec3, R mathutil.Mat3, proj projection, lc *LightConfig) *meshPass {
	n := len(mesh.Verts)
	p := &meshPass{
		px:    make([]float64, n),
		py:    make([]float64, n),
		pz:    make([]float64, n),
		diff:  make([]float64, n),
		spec:  make([]float64, n),
		verts: mesh.Verts,
		uvs:   mesh.UVs,
	}
	mat := &mesh.Material
	for i := range mesh.Verts {
		p.px[i], p.py[i], p.pz[i] = proj.project(view[i])
		var nrm mathutil.Vec3
		if i < len(mesh.Normals) {
			nrm = R.MulVec3(mathutil.V3(mesh.Normals[i])).Normalize()
		}
		p.diff[i], p.spec[i] = lc.Shade(nrm, mat.Roughness, mat.Metalness)
	}

	p.base = [3]uint8{mat.BaseColor.R, mat.BaseColor.G, mat.BaseColor.B}
	// Metals tint their highlight with the base color
	for k := 0; k < 3; k++ {
		p.specTint[k] = 1 + (srgbToLinear[p.base[k]]-1)*clamp01(mat.Metalness)
	}

	if mat.Map.Ready() {
		switch {
		case mat.Mapping == model.MappingUV && mesh.HasUV():
			p.uvTex = mat.Map.Image
		case mat.Mapping != model.MappingUV && mat.Decal != nil && mat.Decal.Texture.Ready():
			p.decal = mat.Decal
			p.decalTex = mat.Decal.Texture.Image
		}
	}
	return p
}

// RasterizeTriangle rasterizes a single triangle with z-buffer, texture or
// decal compositing over the base color, sRGB color space, Gouraud
// lighting and ACES tone mapping. The inner loop does not allocate.
func RasterizeTriangle(fb *FrameBuffer, p *meshPass, tri model.Triangle, lc *LightConfig) {
	nv := len(p.px)
	for _, i := range tri {
		if i < 0 || i >= nv {
			return
		}
	}
	i0, i1, i2 := tri[0], tri[1], tri[2]

	x0, y0, z0 := p.px[i0], p.py[i0], p.pz[i0]
	x1, y1, z1 := p.px[i1], p.py[i1], p.pz[i1]
	x2, y2, z2 := p.px[i2], p.py[i2], p.pz[i2]

	hasUV := p.uvTex != nil && len(p.uvs) == nv
	var u0, v0, u1, v1, u2, v2 float64
	if hasUV {
		u0, v0 = float64(p.uvs[i0][0]), float64(p.uvs[i0][1])
		u1, v1 = float64(p.uvs[i1][0]), float64(p.uvs[i1][1])
		u2, v2 = float64(p.uvs[i2][0]), float64(p.uvs[i2][1])
	}
	var m0, m1, m2 mathutil.Vec3
	if p.decal != nil {
		m0, m1, m2 = mathutil.V3(p.verts[i0]), mathutil.V3(p.verts[i1]), mathutil.V3(p.verts[i2])
	}

	// Bounding box
	w, h := fb.Width, fb.Height
	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, w-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, h-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	exposure := lc.Exposure
	invGamma := lc.InvGamma

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * w
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			cr, cg, cb := p.base[0], p.base[1], p.base[2]
			if hasUV {
				u := w0*u0 + w1*u1 + w2*u2
				v := w0*v0 + w1*v1 + w2*v2
				tr, tg, tb, ta := SampleTexture(p.uvTex, u, v)
				cr, cg, cb = blend(cr, tr, ta), blend(cg, tg, ta), blend(cb, tb, ta)
			}
			if p.decal != nil {
				pos := mathutil.Vec3{
					w0*m0[0] + w1*m1[0] + w2*m2[0],
					w0*m0[1] + w1*m1[1] + w2*m2[1],
					w0*m0[2] + w1*m1[2] + w2*m2[2],
				}
				if u, v, ok := p.decal.Project(pos); ok {
					tr, tg, tb, ta := SampleTextureClamp(p.decalTex, u, v)
					cr, cg, cb = blend(cr, tr, ta), blend(cg, tg, ta), blend(cb, tb, ta)
				}
			}

			diff := w0*p.diff[i0] + w1*p.diff[i1] + w2*p.diff[i2]
			spec := w0*p.spec[i0] + w1*p.spec[i1] + w2*p.spec[i2]

			// sRGB decode → linear (LUT), shade, tone map, encode
			lr := (srgbToLinear[cr]*diff + p.specTint[0]*spec) * exposure
			lg := (srgbToLinear[cg]*diff + p.specTint[1]*spec) * exposure
			lb := (srgbToLinear[cb]*diff + p.specTint[2]*spec) * exposure

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = clamp255(math.Pow(ACESTonemap(lr), invGamma) * 255)
			fb.Color[pxIdx+1] = clamp255(math.Pow(ACESTonemap(lg), invGamma) * 255)
			fb.Color[pxIdx+2] = clamp255(math.Pow(ACESTonemap(lb), invGamma) * 255)
			fb.Color[pxIdx+3] = 255
		}
	}
}

// blend composites src over dst with coverage a.
func blend(dst, src, a uint8) uint8 {
	return uint8((uint32(src)*uint32(a) + uint32(dst)*(255-uint32(a)) + 127) / 255)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
