package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"mockup-renderer/internal/capture"
	"mockup-renderer/internal/config"
	"mockup-renderer/internal/design"
	"mockup-renderer/internal/logging"
	"mockup-renderer/internal/model"
	"mockup-renderer/internal/preview"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run renders one mockup. Returning instead of exiting lets the deferred
// cleanup run on every error path.
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// CLI flags
	configFile := fs.String("config", "", "Path to config.json or config.toml")
	envFile := fs.String("env", ".env", "Path to .env file with MOCKUP_* overrides")
	modelPath := fs.String("model", "", "Model file (.obj) or builtin:mug (default)")
	fontDir := fs.String("fonts", "", "Font directory (default: auto-detect)")
	outputDir := fs.String("output", "", "Output directory (default: renders)")
	outFile := fs.String("o", "", "Output file (default: mockup_<product>_<date>.<ext> in the output directory)")
	format := fs.String("format", "", "Output format: png or webp")
	size := fs.Int("size", 0, "Output size in pixels (default: 512)")

	imagePath := fs.String("image", "", "Design image to apply")
	text := fs.String("text", "", "Design text to apply (ignored with -image)")
	textColor := fs.String("color", "#000000", "Text color")
	font := fs.String("font", "Poppins", "Text font family")
	fontSize := fs.Float64("font-size", 0, "Text size in texture pixels (default: 48)")

	x := fs.Float64("x", -1, "Horizontal position 0-100 (default: 50)")
	y := fs.Float64("y", -1, "Vertical position 0-100 (default: 50 image, 70 text)")
	scale := fs.Float64("scale", 0, "Design scale percent 20-150 (default: 70)")
	rotation := fs.Float64("rotation", 0, "Design rotation in degrees")
	yaw := fs.Float64("yaw", 0, "Extra camera yaw in degrees")
	verbose := fs.Bool("v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logging.Init(stderr, *verbose)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	if err := cfg.LoadEnv(*envFile); err != nil {
		return fmt.Errorf("loading env: %w", err)
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		ModelPath: *modelPath,
		FontDir:   *fontDir,
		OutputDir: *outputDir,
		Format:    *format,
		Size:      *size,
	})
	cfg.CameraYaw += *yaw

	opts, err := preview.OptionsFromConfig(cfg, model.NewProvider())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	v, err := preview.New(opts)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.Mount(ctx); err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	if s := v.Surface(); s == nil {
		fmt.Fprintf(stderr, "Warning: %s has no paintable surface, rendering undecorated\n", cfg.ModelPath)
	}

	// Design
	switch {
	case *imagePath != "":
		f, err := os.Open(*imagePath)
		if err != nil {
			return err
		}
		declared := int64(-1)
		if st, err := f.Stat(); err == nil {
			declared = st.Size()
		}
		data, mime, err := design.CheckUpload(f, declared, cfg.MaxUploadBytes)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", *imagePath, err)
		}
		v.SetImage(data, mime)
	case *text != "":
		col, err := design.ParseHexColor(*textColor)
		if err != nil {
			return err
		}
		v.SetText(*text)
		v.SetTextStyle(design.TextStyle{Color: col, FontFamily: *font, SizePx: *fontSize})
	}

	p := v.Placement()
	if *x >= 0 {
		p.PositionX = *x
	}
	if *y >= 0 {
		p.PositionY = *y
	}
	if *scale > 0 {
		p.ScalePercent = *scale
	}
	p.RotationDegrees = *rotation
	v.SetPlacement(p)

	if err := v.Wait(ctx, v.ParametersChanged()); err != nil {
		return err
	}
	if err := v.LastError(); err != nil {
		return err
	}

	out, err := v.ExportHandle().Capture()
	if err != nil {
		return fmt.Errorf("capturing frame: %w", err)
	}

	path := *outFile
	if path == "" {
		path = filepath.Join(cfg.OutputDir, capture.Filename(cfg.Product, time.Now(), out.Format))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.WriteFile(path, out.Data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "Mockup: %s (%d bytes)\n", path, len(out.Data))
	return nil
}
