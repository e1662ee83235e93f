package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample reduces a supersampled frame to w×h with premultiplied-alpha
// aware CatmullRom filtering, which avoids dark halos along the
// transparent silhouette. img must be tightly packed with origin 0,0.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}

	// Premultiply alpha
	premul := image.NewRGBA(b)
	for i := 0; i < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		premul.Pix[i] = uint8((uint32(img.Pix[i])*a + 127) / 255)
		premul.Pix[i+1] = uint8((uint32(img.Pix[i+1])*a + 127) / 255)
		premul.Pix[i+2] = uint8((uint32(img.Pix[i+2])*a + 127) / 255)
		premul.Pix[i+3] = uint8(a)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	// Unpremultiply alpha
	out := image.NewNRGBA(dst.Bounds())
	for i := 0; i < len(dst.Pix); i += 4 {
		a := float64(dst.Pix[i+3])
		if a > 1 {
			inv := 255.0 / a
			out.Pix[i] = clamp255(float64(dst.Pix[i]) * inv)
			out.Pix[i+1] = clamp255(float64(dst.Pix[i+1]) * inv)
			out.Pix[i+2] = clamp255(float64(dst.Pix[i+2]) * inv)
		}
		out.Pix[i+3] = dst.Pix[i+3]
	}
	return out
}
