package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"mockup-renderer/internal/capture"
	"mockup-renderer/internal/design"
	"mockup-renderer/internal/logging"
	"mockup-renderer/internal/mathutil"
	"mockup-renderer/internal/preview"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir      string
	Viewer         preview.Options // shared provider and producer, per-job everything else
	Workers        int
	MaxUploadBytes int64
	Timeout        time.Duration // per job, 0 for none
}

// Result holds the outcome of processing one job.
type Result struct {
	Name    string
	File    string
	Bytes   int
	Success bool
	Error   string
}

// Run processes all jobs using a worker pool.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f mockups/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(ctx, cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(ctx context.Context, cfg Config, job Job) Result {
	res := Result{Name: job.Name}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	out, err := renderJob(ctx, cfg, job)
	if err != nil {
		res.Error = err.Error()
		logging.Logger().Warn("job failed", "job", job.Name, "err", err)
		return res
	}

	outPath := filepath.Join(cfg.OutputDir, job.Name+out.Ext())
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	if err := os.WriteFile(outPath, out.Data, 0644); err != nil {
		res.Error = err.Error()
		return res
	}

	res.File = filepath.Base(outPath)
	res.Bytes = len(out.Data)
	res.Success = true
	return res
}

func renderJob(ctx context.Context, cfg Config, job Job) (capture.EncodedImage, error) {
	opts := cfg.Viewer
	if job.Yaw != 0 {
		opts.Camera.Yaw += mathutil.Deg2Rad(job.Yaw)
	}
	v, err := preview.New(opts)
	if err != nil {
		return capture.EncodedImage{}, err
	}
	defer v.Close()

	if err := v.Mount(ctx); err != nil {
		return capture.EncodedImage{}, err
	}

	switch {
	case job.Image != "":
		f, err := os.Open(job.Image)
		if err != nil {
			return capture.EncodedImage{}, fmt.Errorf("batch: open %s: %w", job.Image, err)
		}
		size := int64(-1)
		if st, err := f.Stat(); err == nil {
			size = st.Size()
		}
		data, mime, err := design.CheckUpload(f, size, cfg.MaxUploadBytes)
		f.Close()
		if err != nil {
			return capture.EncodedImage{}, fmt.Errorf("batch: %s: %w", job.Image, err)
		}
		v.SetImage(data, mime)
	case job.Text != "":
		style, err := job.Style()
		if err != nil {
			return capture.EncodedImage{}, err
		}
		v.SetText(job.Text)
		v.SetTextStyle(style)
	}
	if job.Placement != nil {
		v.SetPlacement(*job.Placement)
	}

	if err := v.Wait(ctx, v.ParametersChanged()); err != nil {
		return capture.EncodedImage{}, err
	}
	if err := v.LastError(); err != nil {
		return capture.EncodedImage{}, err
	}
	return v.ExportHandle().Capture()
}
