package preview

import (
	"fmt"

	"mockup-renderer/internal/capture"
	"mockup-renderer/internal/config"
	"mockup-renderer/internal/decal"
	"mockup-renderer/internal/design"
	"mockup-renderer/internal/logging"
	"mockup-renderer/internal/mathutil"
	"mockup-renderer/internal/model"
	"mockup-renderer/internal/raster"
	"mockup-renderer/internal/texture"
)

// OptionsFromConfig builds viewer options from a resolved config. The
// provider and the font book behind the synthesizer are shared by every
// viewer created from the result.
func OptionsFromConfig(cfg config.Config, provider *model.Provider) (Options, error) {
	base := model.DefaultMaterial()
	if cfg.BaseColor != "" {
		c, err := design.ParseHexColor(cfg.BaseColor)
		if err != nil {
			return Options{}, fmt.Errorf("preview: base color: %w", err)
		}
		base.BaseColor = c
	}
	if cfg.Roughness != nil {
		base.Roughness = *cfg.Roughness
	}
	base.Metalness = cfg.Metalness

	mapping := model.MappingDecal
	switch cfg.Mapping {
	case "", config.MappingDecal:
	case config.MappingUV:
		mapping = model.MappingUV
	default:
		return Options{}, fmt.Errorf("preview: unknown mapping %q", cfg.Mapping)
	}
	base.Mapping = mapping

	index := texture.BuildFontIndex(cfg.FontDir)
	fonts, err := texture.NewFontBook(index)
	if err != nil {
		return Options{}, err
	}
	logging.Logger().Debug("fonts indexed", "dir", cfg.FontDir, "count", index.Len())

	cam := raster.DefaultCamera()
	cam.Yaw = mathutil.Deg2Rad(cfg.CameraYaw)

	return Options{
		Provider:     provider,
		ModelPath:    cfg.ModelPath,
		SurfaceName:  cfg.SurfaceName,
		Producer:     texture.NewSynthesizer(cfg.TextureSize, fonts),
		BaseMaterial: base,
		Mapping:      mapping,
		Calibration:  decal.FromConfig(cfg.Calibration),
		RenderSize:   cfg.RenderSize,
		Supersample:  cfg.Supersample,
		Camera:       cam,
		Encoder:      capture.EncoderFor(cfg.Format),
	}, nil
}
