package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"mockup-renderer/internal/batch"
	"mockup-renderer/internal/config"
	"mockup-renderer/internal/logging"
	"mockup-renderer/internal/model"
	"mockup-renderer/internal/preview"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json or config.toml")
	envFile := flag.String("env", ".env", "Path to .env file with MOCKUP_* overrides")
	jobsFile := flag.String("jobs", "jobs.json", "Path to the job list")
	testN := flag.Int("test", 0, "Render only first N jobs for testing")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	modelPath := flag.String("model", "", "Model file (.obj) or builtin:mug (default)")
	fontDir := flag.String("fonts", "", "Font directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	format := flag.String("format", "", "Output format: png or webp")
	size := flag.Int("size", 0, "Output size in pixels (default: 512)")
	timeout := flag.Duration("timeout", time.Minute, "Per-job timeout")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	logging.Init(os.Stderr, *verbose)

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
		OutputDir: *outputDir,
		Format:    *format,
		Size:      *size,
		Workers:   *workers,
	})

	jobs, err := batch.LoadJobs(*jobsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading jobs: %v\n", err)
		os.Exit(1)
	}

	// Limit for testing
	if *testN > 0 && *testN < len(jobs) {
		jobs = jobs[:*testN]
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs to render.")
		os.Exit(0)
	}

	opts, err := preview.OptionsFromConfig(cfg, model.NewProvider())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Mockup batch renderer → %s\n", cfg.Format)
	fmt.Printf("Model: %s\n", cfg.ModelPath)
	fmt.Printf("Jobs: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	// Run batch
	results := batch.Run(ctx, batch.Config{
		OutputDir:      cfg.OutputDir,
		Viewer:         opts,
		Workers:        cfg.Workers,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Timeout:        *timeout,
	}, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
