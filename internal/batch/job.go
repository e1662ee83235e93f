package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mockup-renderer/internal/design"
)

// Job describes one mockup to render.
type Job struct {
	Name      string            `json:"name"`
	Image     string            `json:"image,omitempty"` // relative to the job file
	Text      string            `json:"text,omitempty"`
	Color     string            `json:"color,omitempty"`
	Font      string            `json:"font,omitempty"`
	FontSize  float64           `json:"font_size,omitempty"`
	Placement *design.Placement `json:"placement,omitempty"`
	Yaw       float64           `json:"yaw,omitempty"` // degrees
}

// LoadJobs reads a JSON array of jobs. Image paths are resolved against
// the job file's directory and unnamed jobs get sequential names.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", path, err)
	}
	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("batch: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range jobs {
		j := &jobs[i]
		if j.Name == "" {
			j.Name = fmt.Sprintf("job%03d", i+1)
		}
		if j.Image != "" && !filepath.IsAbs(j.Image) {
			j.Image = filepath.Join(dir, j.Image)
		}
		if j.Image != "" && j.Text != "" {
			return nil, fmt.Errorf("batch: job %s: image and text are exclusive", j.Name)
		}
	}
	return jobs, nil
}

// Style returns the job's text style. Fields left empty keep the editor
// defaults.
func (j Job) Style() (design.TextStyle, error) {
	style := design.DefaultTextStyle()
	if j.Color != "" {
		c, err := design.ParseHexColor(j.Color)
		if err != nil {
			return style, err
		}
		style.Color = c
	}
	if j.Font != "" {
		style.FontFamily = j.Font
	}
	if j.FontSize > 0 {
		style.SizePx = j.FontSize
	}
	return style, nil
}
