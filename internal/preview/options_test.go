package preview

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockup-renderer/internal/capture"
	"mockup-renderer/internal/config"
	"mockup-renderer/internal/model"
)

func TestOptionsFromConfig(t *testing.T) {
	var cfg config.Config
	cfg.Resolve(config.Flags{})
	cfg.BaseColor = "#102030"
	cfg.Mapping = config.MappingUV
	cfg.Format = config.FormatWebP
	cfg.CameraYaw = 180

	provider := model.NewProvider()
	opts, err := OptionsFromConfig(cfg, provider)
	require.NoError(t, err)

	assert.Same(t, provider, opts.Provider)
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, opts.BaseMaterial.BaseColor)
	assert.Equal(t, 0.7, opts.BaseMaterial.Roughness)
	assert.Equal(t, model.MappingUV, opts.Mapping)
	assert.IsType(t, capture.WebP{}, opts.Encoder)
	assert.InDelta(t, 3.14159, opts.Camera.Yaw, 1e-4)
	assert.NotNil(t, opts.Producer)
}

func TestOptionsFromConfigRejectsBadValues(t *testing.T) {
	var cfg config.Config
	cfg.Resolve(config.Flags{})

	bad := cfg
	bad.BaseColor = "white"
	_, err := OptionsFromConfig(bad, nil)
	assert.Error(t, err)

	bad = cfg
	bad.Mapping = "spherical"
	_, err = OptionsFromConfig(bad, nil)
	assert.Error(t, err)
}
