package httpapi

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mockup-renderer/internal/capture"
	"mockup-renderer/internal/design"
	"mockup-renderer/internal/logging"
	"mockup-renderer/internal/preview"
	"mockup-renderer/internal/texture"
)

// formMemory is how much of a multipart form is kept in memory; larger
// parts spill to temporary files.
const formMemory = 1 << 20

// Config holds what the mockup controller shares across requests.
type Config struct {
	Viewer         preview.Options
	Product        string
	MaxUploadBytes int64
	Timeout        time.Duration
}

// MockupController handles HTTP requests for mockup renders
type MockupController struct {
	cfg Config
	now func() time.Time
}

// NewMockupController creates a new MockupController
func NewMockupController(cfg Config) *MockupController {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = design.DefaultMaxUploadBytes
	}
	if cfg.Product == "" {
		cfg.Product = "caneca"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &MockupController{cfg: cfg, now: time.Now}
}

// Create handles POST /api/mockups
// The form carries either an "image" file or a "text" field, plus optional
// placement and style fields. The response is the encoded frame, or its
// data URL when the client accepts text/plain.
func (c *MockupController) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Bodies up to twice the limit are read so an oversized file is reported
	// by its part size; anything larger is cut off here.
	r.Body = http.MaxBytesReader(w, r.Body, 2*c.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || errors.Is(err, multipart.ErrMessageTooLarge) {
			http.Error(w, design.ErrOversizedInput.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("Invalid multipart form: %v", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := c.parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), c.cfg.Timeout)
	defer cancel()

	out, err := c.render(ctx, req)
	if err != nil {
		logging.Logger().Warn("mockup failed", "err", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	name := capture.Filename(c.cfg.Product, c.now(), out.Format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(out.DataURL()))
		return
	}
	w.Header().Set("Content-Type", out.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Write(out.Data)
}

// mockupRequest is a validated form.
type mockupRequest struct {
	image     []byte
	mime      string
	text      string
	style     design.TextStyle
	placement map[string]float64
	format    string
}

// errBadRequest marks client input errors that are not upload errors.
var errBadRequest = errors.New("bad request")

func (c *MockupController) parseRequest(r *http.Request) (mockupRequest, error) {
	req := mockupRequest{
		style:     design.DefaultTextStyle(),
		placement: map[string]float64{},
		format:    r.FormValue("format"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		req.image, req.mime, err = design.CheckUpload(file, header.Size, c.cfg.MaxUploadBytes)
		if err != nil {
			return req, err
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		return req, fmt.Errorf("%w: image: %v", errBadRequest, err)
	}

	req.text = r.FormValue("text")
	if req.image != nil && req.text != "" {
		return req, fmt.Errorf("%w: send either image or text, not both", errBadRequest)
	}

	if v := r.FormValue("color"); v != "" {
		col, err := design.ParseHexColor(v)
		if err != nil {
			return req, fmt.Errorf("%w: color: %v", errBadRequest, err)
		}
		req.style.Color = col
	}
	if v := r.FormValue("font"); v != "" {
		req.style.FontFamily = v
	}
	for _, key := range []string{"x", "y", "size", "rotation", "font_size"} {
		v := r.FormValue(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("%w: %s: %v", errBadRequest, key, err)
		}
		if key == "font_size" {
			req.style.SizePx = f
			continue
		}
		req.placement[key] = f
	}

	switch req.format {
	case "", "png", "webp":
	default:
		return req, fmt.Errorf("%w: unknown format %q", errBadRequest, req.format)
	}
	return req, nil
}

func (c *MockupController) render(ctx context.Context, req mockupRequest) (capture.EncodedImage, error) {
	opts := c.cfg.Viewer
	if req.format != "" {
		opts.Encoder = capture.EncoderFor(req.format)
	}
	v, err := preview.New(opts)
	if err != nil {
		return capture.EncodedImage{}, err
	}
	defer v.Close()

	if err := v.Mount(ctx); err != nil {
		return capture.EncodedImage{}, fmt.Errorf("%w: %v", capture.ErrRendererNotReady, err)
	}

	switch {
	case req.image != nil:
		v.SetImage(req.image, req.mime)
	case req.text != "":
		v.SetText(req.text)
		v.SetTextStyle(req.style)
	}
	if len(req.placement) > 0 {
		v.SetPlacement(applyPlacement(v.Placement(), req.placement))
	}

	if err := v.Wait(ctx, v.ParametersChanged()); err != nil {
		return capture.EncodedImage{}, err
	}
	if err := v.LastError(); err != nil {
		return capture.EncodedImage{}, err
	}
	return v.ExportHandle().Capture()
}

// applyPlacement overrides the fields present in the form.
func applyPlacement(p design.Placement, fields map[string]float64) design.Placement {
	for key, f := range fields {
		switch key {
		case "x":
			p.PositionX = f
		case "y":
			p.PositionY = f
		case "size":
			p.ScalePercent = f
		case "rotation":
			p.RotationDegrees = f
		}
	}
	return p
}

func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, design.ErrOversizedInput), errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, design.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, texture.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, capture.ErrRendererNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
