package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one rendered mockup in the output manifest.
type ManifestEntry struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Bytes int    `json:"bytes"`
}

// WriteManifest writes the successful results to path as JSON.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Name:  r.Name,
			Image: r.File,
			Bytes: r.Bytes,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
