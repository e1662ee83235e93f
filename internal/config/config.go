package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// BuiltinMug names the procedural mug model shipped with the renderer.
const BuiltinMug = "builtin:mug"

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir" toml:"base_dir"`
	ModelPath string `json:"model" toml:"model"`
	FontDir   string `json:"font_dir" toml:"font_dir"`
	OutputDir string `json:"output_dir" toml:"output_dir"`

	// Product
	Product     string   `json:"product" toml:"product"`
	SurfaceName string   `json:"surface" toml:"surface"`
	BaseColor   string   `json:"base_color" toml:"base_color"`
	Roughness   *float64 `json:"roughness,omitempty" toml:"roughness,omitempty"`
	Metalness   float64  `json:"metalness" toml:"metalness"`
	Mapping     string   `json:"mapping" toml:"mapping"`

	Calibration Calibration `json:"calibration" toml:"calibration"`

	// Render settings
	TextureSize int     `json:"texture_size" toml:"texture_size"`
	RenderSize  int     `json:"render_size" toml:"render_size"`
	Supersample int     `json:"supersample" toml:"supersample"`
	CameraYaw   float64 `json:"camera_yaw" toml:"camera_yaw"`
	Format      string  `json:"format" toml:"format"`
	Workers     int     `json:"workers" toml:"workers"`

	// Server
	Listen         string `json:"listen" toml:"listen"`
	MaxUploadBytes int64  `json:"max_upload_bytes" toml:"max_upload_bytes"`
}

// Calibration overrides the decal calibration of the model. Zero fields
// keep the reference values tuned for the built-in mug.
type Calibration struct {
	HorizontalSpan float64    `json:"horizontal_span" toml:"horizontal_span"`
	VerticalSpan   float64    `json:"vertical_span" toml:"vertical_span"`
	VerticalBias   float64    `json:"vertical_bias" toml:"vertical_bias"`
	ForwardOffset  float64    `json:"forward_offset" toml:"forward_offset"`
	UnitScale      float64    `json:"unit_scale" toml:"unit_scale"`
	Axis           [3]float64 `json:"axis" toml:"axis"`
}

// Mapping modes.
const (
	MappingDecal = "decal"
	MappingUV    = "uv"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Load reads a config file and returns Config. Files ending in .toml are
// parsed as TOML, everything else as JSON.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// envPrefix is the prefix of environment overrides, e.g. MOCKUP_MODEL.
const envPrefix = "MOCKUP_"

// LoadEnv overlays MOCKUP_* variables from the dotenv file at path and
// from the process environment, which wins over the file. A missing file
// is not an error.
func (c *Config) LoadEnv(path string) error {
	vars := map[string]string{}
	if path != "" {
		m, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: read env %s: %w", path, err)
		}
		for k, v := range m {
			vars[k] = v
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, envPrefix) {
			vars[k] = v
		}
	}

	for k, v := range vars {
		if !strings.HasPrefix(k, envPrefix) || v == "" {
			continue
		}
		if err := c.setEnv(strings.TrimPrefix(k, envPrefix), v); err != nil {
			return fmt.Errorf("config: env %s: %w", k, err)
		}
	}
	return nil
}

func (c *Config) setEnv(key, v string) error {
	var err error
	switch key {
	case "BASE_DIR":
		c.BaseDir = v
	case "MODEL":
		c.ModelPath = v
	case "FONT_DIR":
		c.FontDir = v
	case "OUTPUT_DIR":
		c.OutputDir = v
	case "PRODUCT":
		c.Product = v
	case "SURFACE":
		c.SurfaceName = v
	case "BASE_COLOR":
		c.BaseColor = v
	case "MAPPING":
		c.Mapping = v
	case "FORMAT":
		c.Format = v
	case "LISTEN":
		c.Listen = v
	case "ROUGHNESS":
		var f float64
		f, err = strconv.ParseFloat(v, 64)
		c.Roughness = &f
	case "METALNESS":
		c.Metalness, err = strconv.ParseFloat(v, 64)
	case "CAMERA_YAW":
		c.CameraYaw, err = strconv.ParseFloat(v, 64)
	case "TEXTURE_SIZE":
		c.TextureSize, err = strconv.Atoi(v)
	case "RENDER_SIZE":
		c.RenderSize, err = strconv.Atoi(v)
	case "SUPERSAMPLE":
		c.Supersample, err = strconv.Atoi(v)
	case "WORKERS":
		c.Workers, err = strconv.Atoi(v)
	case "MAX_UPLOAD_BYTES":
		c.MaxUploadBytes, err = strconv.ParseInt(v, 10, 64)
	}
	return err
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.ModelPath != "" {
		c.ModelPath = flags.ModelPath
	}
	if flags.FontDir != "" {
		c.FontDir = flags.FontDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	if c.ModelPath == "" {
		c.ModelPath = BuiltinMug
	} else if c.ModelPath != BuiltinMug && !filepath.IsAbs(c.ModelPath) {
		c.ModelPath = filepath.Join(c.BaseDir, c.ModelPath)
	}
	if c.FontDir == "" {
		c.FontDir = detectFontDir(c.BaseDir)
	} else if !filepath.IsAbs(c.FontDir) {
		c.FontDir = filepath.Join(c.BaseDir, c.FontDir)
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "renders")
	} else if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
	}

	// Product defaults
	if c.Product == "" {
		c.Product = "caneca"
	}
	if c.SurfaceName == "" {
		c.SurfaceName = "body"
	}
	if c.BaseColor == "" {
		c.BaseColor = "#ffffff"
	}
	if c.Roughness == nil {
		r := 0.7
		c.Roughness = &r
	}
	if c.Mapping != MappingUV {
		c.Mapping = MappingDecal
	}

	// Defaults for render settings
	if c.TextureSize <= 0 {
		c.TextureSize = 512
	}
	if c.RenderSize <= 0 {
		c.RenderSize = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format != FormatWebP {
		c.Format = FormatPNG
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 * 1024 * 1024
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	ModelPath string
	FontDir   string
	OutputDir string
	Format    string
	Size      int
	Workers   int
	Listen    string
}

// detectFontDir looks for a fonts directory next to the executable or
// under the base dir. An empty result means only the built-in face is used.
func detectFontDir(baseDir string) string {
	var candidates []string
	if exe, _ := os.Executable(); exe != "" {
		dir := filepath.Dir(exe)
		candidates = append(candidates, filepath.Join(dir, "fonts"), filepath.Join(dir, "assets", "fonts"))
	}
	candidates = append(candidates,
		filepath.Join(baseDir, "fonts"),
		filepath.Join(baseDir, "assets", "fonts"),
	)
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && st.IsDir() {
			return c
		}
	}
	return ""
}
