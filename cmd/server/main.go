package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mockup-renderer/internal/config"
	"mockup-renderer/internal/httpapi"
	"mockup-renderer/internal/logging"
	"mockup-renderer/internal/model"
	"mockup-renderer/internal/preview"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json or config.toml")
	envFile := flag.String("env", ".env", "Path to .env file with MOCKUP_* overrides")
	listen := flag.String("listen", "", "Listen address (default: :8080)")
	modelPath := flag.String("model", "", "Model file (.obj) or builtin:mug (default)")
	fontDir := flag.String("fonts", "", "Font directory (default: auto-detect)")
	format := flag.String("format", "", "Default output format: png or webp")
	size := flag.Int("size", 0, "Output size in pixels (default: 512)")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	logging.Init(os.Stderr, *verbose)
	log := logging.Logger()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.LoadEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading env: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		ModelPath: *modelPath,
		FontDir:   *fontDir,
		Format:    *format,
		Size:      *size,
		Listen:    *listen,
	})

	provider := model.NewProvider()
	opts, err := preview.OptionsFromConfig(cfg, provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the model cache so the first request does not pay for loading,
	// then reload it whenever the file changes.
	if _, err := provider.Load(ctx, cfg.ModelPath); err != nil {
		log.Warn("model not loaded", "path", cfg.ModelPath, "err", err)
	}
	if cfg.ModelPath != model.Builtin {
		go func() {
			err := provider.Watch(ctx, []string{cfg.ModelPath}, func(path string) {
				if _, err := provider.Load(ctx, path); err != nil {
					log.Warn("model reload failed", "path", path, "err", err)
				}
			})
			if err != nil {
				log.Warn("model watcher stopped", "err", err)
			}
		}()
	}

	mockups := httpapi.NewMockupController(httpapi.Config{
		Viewer:         opts,
		Product:        cfg.Product,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.NewRouter(mockups),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("server starting", "addr", cfg.Listen, "model", cfg.ModelPath)
	fmt.Printf("Mockup endpoint: POST http://localhost%s/api/mockups\n", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		os.Exit(1)
	}
}
