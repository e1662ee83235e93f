package capture

import (
	"bytes"
	"fmt"
	"image"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
)

// Encoder turns a frame into bytes.
type Encoder interface {
	Encode(img *image.NRGBA) (EncodedImage, error)
}

// PNG encodes lossless PNG.
type PNG struct{}

func (PNG) Encode(img *image.NRGBA) (EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return EncodedImage{}, fmt.Errorf("capture: encode png: %w", err)
	}
	return EncodedImage{Format: "png", MIME: "image/png", Data: buf.Bytes()}, nil
}

// WebP encodes lossless WebP.
type WebP struct{}

func (WebP) Encode(img *image.NRGBA) (EncodedImage, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return EncodedImage{}, fmt.Errorf("capture: encode webp: %w", err)
	}
	return EncodedImage{Format: "webp", MIME: "image/webp", Data: buf.Bytes()}, nil
}

// EncoderFor returns the encoder for a format name. Unknown formats get PNG.
func EncoderFor(format string) Encoder {
	if format == "webp" {
		return WebP{}
	}
	return PNG{}
}
