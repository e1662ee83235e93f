package design

import (
	"errors"
	"fmt"
	"io"

	"github.com/h2non/filetype"
)

// DefaultMaxUploadBytes is the upload ceiling (10 MiB).
const DefaultMaxUploadBytes = 10 * 1024 * 1024

var (
	// ErrOversizedInput is returned for uploads above the size ceiling.
	ErrOversizedInput = errors.New("design: upload exceeds size limit")
	// ErrUnsupportedType is returned for uploads that are not raster images.
	ErrUnsupportedType = errors.New("design: upload is not a supported image")
)

// supportedMIME lists the image types the texture synthesizer can decode.
var supportedMIME = map[string]bool{
	"image/png":   true,
	"image/jpeg":  true,
	"image/gif":   true,
	"image/webp":  true,
	"image/x-tga": true,
}

// CheckUpload reads an upload, enforcing limit before any decode work.
// declared is the size reported by the transport (-1 when unknown); a
// declared size above limit is rejected without reading. The returned MIME
// type is sniffed from the content, not taken from the client.
func CheckUpload(r io.Reader, declared, limit int64) ([]byte, string, error) {
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	if declared > limit {
		return nil, "", fmt.Errorf("%w: %d > %d bytes", ErrOversizedInput, declared, limit)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("design: read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrOversizedInput, limit)
	}

	mime, err := SniffImage(data)
	if err != nil {
		return nil, "", err
	}
	return data, mime, nil
}

// SniffImage returns the MIME type of an encoded image.
func SniffImage(data []byte) (string, error) {
	if isTGA(data) {
		return "image/x-tga", nil
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", ErrUnsupportedType
	}
	if !supportedMIME[kind.MIME.Value] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, kind.MIME.Value)
	}
	return kind.MIME.Value, nil
}

// isTGA recognizes uncompressed and RLE true-color/grayscale TGA headers,
// which carry no magic number.
func isTGA(data []byte) bool {
	if len(data) < 18 {
		return false
	}
	colorMapType := data[1]
	imageType := data[2]
	depth := data[16]
	if colorMapType > 1 {
		return false
	}
	switch imageType {
	case 2, 3, 10, 11:
	default:
		return false
	}
	switch depth {
	case 8, 16, 24, 32:
	default:
		return false
	}
	w := int(data[12]) | int(data[13])<<8
	h := int(data[14]) | int(data[15])<<8
	return w > 0 && h > 0
}
