package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	base := t.TempDir()
	cfg := Config{BaseDir: base}
	cfg.Resolve(Flags{})

	assert.Equal(t, BuiltinMug, cfg.ModelPath)
	assert.Equal(t, filepath.Join(base, "renders"), cfg.OutputDir)
	assert.Equal(t, "caneca", cfg.Product)
	assert.Equal(t, 512, cfg.TextureSize)
	assert.Equal(t, 512, cfg.RenderSize)
	assert.Equal(t, 2, cfg.Supersample)
	assert.Equal(t, FormatPNG, cfg.Format)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	require.NotNil(t, cfg.Roughness)
	assert.InDelta(t, 0.7, *cfg.Roughness, 1e-12)
	assert.Equal(t, MappingDecal, cfg.Mapping)
}

func TestResolveFlagsOverride(t *testing.T) {
	base := t.TempDir()
	cfg := Config{BaseDir: base, Format: "png", ModelPath: "models/mug.obj"}
	cfg.Resolve(Flags{Format: "WEBP", Size: 256, OutputDir: "/tmp/out"})

	assert.Equal(t, FormatWebP, cfg.Format)
	assert.Equal(t, 256, cfg.RenderSize)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, filepath.Join(base, "models", "mug.obj"), cfg.ModelPath)
}

func TestResolveKeepsExplicitZeroRoughness(t *testing.T) {
	zero := 0.0
	cfg := Config{BaseDir: t.TempDir(), Roughness: &zero}
	cfg.Resolve(Flags{})
	assert.Zero(t, *cfg.Roughness)
}

func TestLoadJSONAndTOML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "mockup.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"product":"copo","texture_size":1024,"calibration":{"unit_scale":0.2}}`), 0o644))
	cfg, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "copo", cfg.Product)
	assert.Equal(t, 1024, cfg.TextureSize)
	assert.InDelta(t, 0.2, cfg.Calibration.UnitScale, 1e-12)

	tomlPath := filepath.Join(dir, "mockup.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("product = \"garrafa\"\nmapping = \"uv\"\n\n[calibration]\naxis = [0.0, 0.0, 1.0]\n"), 0o644))
	cfg, err = Load(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "garrafa", cfg.Product)
	assert.Equal(t, MappingUV, cfg.Mapping)
	assert.Equal(t, [3]float64{0, 0, 1}, cfg.Calibration.Axis)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("MOCKUP_PRODUCT=copo\nMOCKUP_RENDER_SIZE=300\nMOCKUP_ROUGHNESS=0.4\nOTHER=1\n"), 0o644))
	t.Setenv("MOCKUP_RENDER_SIZE", "640")

	var cfg Config
	require.NoError(t, cfg.LoadEnv(envPath))
	assert.Equal(t, "copo", cfg.Product)
	assert.Equal(t, 640, cfg.RenderSize, "process env wins over the file")
	require.NotNil(t, cfg.Roughness)
	assert.InDelta(t, 0.4, *cfg.Roughness, 1e-12)

	require.NoError(t, cfg.LoadEnv(filepath.Join(dir, "none.env")))

	t.Setenv("MOCKUP_WORKERS", "many")
	assert.Error(t, cfg.LoadEnv(""))
}
