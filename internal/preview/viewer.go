// Package preview drives the mockup pipeline for one product preview:
// design edits become textures, textures are bound to the model, and the
// renderer produces frames on demand.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"mockup-renderer/internal/capture"
	"mockup-renderer/internal/decal"
	"mockup-renderer/internal/design"
	"mockup-renderer/internal/logging"
	"mockup-renderer/internal/material"
	"mockup-renderer/internal/model"
	"mockup-renderer/internal/raster"
	"mockup-renderer/internal/texture"
)

// Options configures a Viewer. Zero fields get defaults.
type Options struct {
	Provider    *model.Provider
	ModelPath   string
	SurfaceName string

	Producer     texture.Producer
	BaseMaterial model.Material
	Mapping      model.Mapping
	Calibration  decal.Calibration

	RenderSize  int
	Supersample int
	Camera      raster.Camera
	Background  color.NRGBA

	Encoder capture.Encoder
}

func (o *Options) setDefaults() {
	if o.Provider == nil {
		o.Provider = model.NewProvider()
	}
	if o.ModelPath == "" {
		o.ModelPath = model.Builtin
	}
	if o.BaseMaterial == (model.Material{}) {
		o.BaseMaterial = model.DefaultMaterial()
	}
	if o.Calibration == (decal.Calibration{}) {
		o.Calibration = decal.DefaultCalibration()
	}
	if o.Camera == (raster.Camera{}) {
		o.Camera = raster.DefaultCamera()
	}
	if o.Encoder == nil {
		o.Encoder = capture.PNG{}
	}
}

// Viewer owns the state of one preview. All methods are safe for
// concurrent use.
type Viewer struct {
	opts    Options
	manager *texture.Manager

	mu       sync.Mutex
	editor   *design.Editor
	binder   *material.Binder
	renderer *raster.Renderer
	model    *model.Model // the viewer's own clone
	surface  *model.Surface
	texture  *texture.Texture
	lastErr  error
	camera   raster.Camera

	handle        *capture.Handle
	notified      *capture.Handle
	onExportReady func(*capture.Handle)
}

// New creates an unmounted viewer.
func New(opts Options) (*Viewer, error) {
	opts.setDefaults()
	if opts.Producer == nil {
		fonts, err := texture.NewFontBook(nil)
		if err != nil {
			return nil, err
		}
		opts.Producer = texture.NewSynthesizer(texture.DefaultSize, fonts)
	}
	v := &Viewer{
		opts:    opts,
		manager: texture.NewManager(opts.Producer),
		editor:  design.NewEditor(),
		binder:  material.NewBinder(opts.BaseMaterial, opts.Mapping),
		camera:  opts.Camera,
	}
	v.manager.OnCommit(v.commit)
	return v, nil
}

// Mount loads the model and starts a renderer lifecycle. A model without a
// paintable surface still mounts; it just renders undecorated.
func (v *Viewer) Mount(ctx context.Context) error {
	var res model.Result
	select {
	case res = <-v.opts.Provider.LoadAsync(ctx, v.opts.ModelPath):
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.Err != nil {
		return fmt.Errorf("preview: mount: %w", res.Err)
	}

	v.mu.Lock()
	if v.handle != nil {
		v.unmountLocked()
	}
	v.model = res.Model.Clone()
	surface, err := model.FindSurface(v.model, v.opts.SurfaceName)
	if err != nil {
		logging.Logger().Warn("model has no paintable surface", "model", v.opts.ModelPath, "err", err)
	}
	v.surface = surface
	v.renderer = raster.NewRenderer(v.opts.RenderSize, v.opts.Supersample)
	v.handle = capture.NewHandle(v, v.opts.Encoder)
	v.rebindLocked()
	notify := v.takeNotifyLocked()
	v.mu.Unlock()

	notify()
	logging.Logger().Info("preview mounted", "model", v.opts.ModelPath, "surface", surfaceName(surface))
	return nil
}

// Unmount ends the renderer lifecycle. The export handle is invalidated;
// the design and its texture are kept for a later Mount.
func (v *Viewer) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.unmountLocked()
}

func (v *Viewer) unmountLocked() {
	v.handle.Invalidate()
	v.handle = nil
	v.binder.Reset()
	v.model = nil
	v.surface = nil
	v.renderer = nil
}

// Close unmounts and releases the live texture.
func (v *Viewer) Close() {
	v.Unmount()
	v.manager.Close()
}

// OnExportReady registers fn to receive each export handle once. If a
// handle is already live, fn receives it right away.
func (v *Viewer) OnExportReady(fn func(*capture.Handle)) {
	v.mu.Lock()
	v.onExportReady = fn
	v.notified = nil
	notify := v.takeNotifyLocked()
	v.mu.Unlock()
	notify()
}

func (v *Viewer) takeNotifyLocked() func() {
	fn, h := v.onExportReady, v.handle
	if fn == nil || h == nil || v.notified == h {
		return func() {}
	}
	v.notified = h
	return func() { fn(h) }
}

// ExportHandle returns the handle of the current lifecycle, or nil when
// unmounted.
func (v *Viewer) ExportHandle() *capture.Handle {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.handle
}

// SetImage makes an uploaded image the design. Call ParametersChanged to
// synthesize it.
func (v *Viewer) SetImage(data []byte, mime string) {
	v.mu.Lock()
	v.editor.SetImage(data, mime)
	v.mu.Unlock()
}

// SetText makes text the design. Call ParametersChanged to synthesize it.
func (v *Viewer) SetText(content string) {
	v.mu.Lock()
	v.editor.SetText(content)
	v.mu.Unlock()
}

// SetTextStyle changes the text style. Call ParametersChanged to apply it.
func (v *Viewer) SetTextStyle(s design.TextStyle) {
	v.mu.Lock()
	v.editor.SetTextStyle(s)
	v.mu.Unlock()
}

// ClearDesign removes the design content.
func (v *Viewer) ClearDesign() {
	v.mu.Lock()
	v.editor.Clear()
	v.mu.Unlock()
}

// Reset restores default placements and text style and clears the text.
func (v *Viewer) Reset() {
	v.mu.Lock()
	v.editor.Reset()
	v.rebindLocked()
	v.mu.Unlock()
}

// SetPlacement moves the design. Placement does not change the texture,
// so the decal is updated immediately.
func (v *Viewer) SetPlacement(p design.Placement) {
	v.mu.Lock()
	v.editor.SetPlacement(p)
	v.rebindLocked()
	v.mu.Unlock()
}

// Placement returns the placement of the active design kind.
func (v *Viewer) Placement() design.Placement {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editor.Placement()
}

// SetCamera changes the orbit camera.
func (v *Viewer) SetCamera(cam raster.Camera) {
	v.mu.Lock()
	v.camera = cam
	v.mu.Unlock()
}

// ParametersChanged synthesizes the current design. Image designs decode
// in the background; use Wait to block until the request settles.
func (v *Viewer) ParametersChanged() texture.RequestID {
	v.mu.Lock()
	in := v.editor.Input()
	v.mu.Unlock()
	return v.manager.Request(in)
}

// Wait blocks until request id has been committed or superseded.
func (v *Viewer) Wait(ctx context.Context, id texture.RequestID) error {
	err := v.manager.Wait(ctx, id)
	if errors.Is(err, texture.ErrSuperseded) {
		return nil
	}
	return err
}

func (v *Viewer) commit(tex *texture.Texture, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.texture = tex
	v.lastErr = err
	v.rebindLocked()
}

func (v *Viewer) rebindLocked() {
	if v.model == nil {
		return
	}
	d := decal.Attach(v.texture, v.editor.Placement(), v.opts.Calibration)
	v.binder.Bind(v.model, v.surface, v.texture, d)
}

// LastError returns the error of the last committed synthesis.
func (v *Viewer) LastError() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Texture returns the committed texture, or nil.
func (v *Viewer) Texture() *texture.Texture {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.texture
}

// Ready reports whether a model is mounted.
func (v *Viewer) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renderer != nil && v.model != nil
}

// RenderNow renders the current state and returns the frame.
func (v *Viewer) RenderNow() (*image.NRGBA, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.renderer == nil || v.model == nil {
		return nil, capture.ErrRendererNotReady
	}
	scene := raster.Scene{Model: v.model, Background: v.opts.Background}
	if err := v.renderer.Render(scene, v.camera); err != nil {
		return nil, err
	}
	return v.renderer.Frame(), nil
}

// Surface returns the paintable surface of the mounted model, or nil.
func (v *Viewer) Surface() *model.Surface {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.surface
}

// SurfaceMaterial returns the material currently on the paintable
// surface. ok is false when nothing is mounted or there is no surface.
func (v *Viewer) SurfaceMaterial() (mat model.Material, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	mesh := v.surface.MeshOf(v.model)
	if mesh == nil {
		return model.Material{}, false
	}
	return mesh.Material, true
}

func surfaceName(s *model.Surface) string {
	if s == nil {
		return ""
	}
	return s.Name
}
