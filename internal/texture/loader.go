package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// ErrDecode is returned when uploaded bytes cannot be decoded as an image.
var ErrDecode = errors.New("texture: cannot decode image")

// decoders maps upload MIME types to their decoder. The tga package
// registers an empty magic with the image package, so image.Decode would
// hand every upload to it; decoding goes through this table instead.
var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/png":   png.Decode,
	"image/jpeg":  jpeg.Decode,
	"image/gif":   gif.Decode,
	"image/webp":  webp.Decode,
	"image/x-tga": tga.Decode,
}

// fallbackOrder is tried when the MIME type is empty or unknown. TGA has
// no magic number and accepts almost anything, so it goes last.
var fallbackOrder = []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/x-tga"}

// Decode decodes an uploaded image and returns it as NRGBA.
func Decode(data []byte, mime string) (*image.NRGBA, error) {
	img, err := decode(data, mime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return toNRGBA(img), nil
}

func decode(data []byte, mime string) (image.Image, error) {
	if dec, ok := decoders[mime]; ok {
		return dec(bytes.NewReader(data))
	}
	var firstErr error
	for _, m := range fallbackOrder {
		img, err := decoders[m](bytes.NewReader(data))
		if err == nil {
			return img, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// toNRGBA converts any image to NRGBA format with bounds starting at 0,0.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha; draw then force opaque
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
