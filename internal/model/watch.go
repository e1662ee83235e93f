package model

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"mockup-renderer/internal/logging"
)

// Watch invalidates cached models when their files change on disk. It
// watches the parent directories so editors that replace files atomically
// are seen. onChange, if set, runs after each invalidation. Watch blocks
// until ctx is done.
func (p *Provider) Watch(ctx context.Context, paths []string, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("model: create watcher: %w", err)
	}
	defer watcher.Close()

	tracked := make(map[string]string) // cleaned path → path as loaded
	dirs := make(map[string]bool)
	for _, path := range paths {
		if path == Builtin {
			continue
		}
		tracked[filepath.Clean(path)] = path
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("model: watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			path, ok := tracked[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			p.Invalidate(path)
			logging.Logger().Info("model changed on disk", "path", path, "op", event.Op.String())
			if onChange != nil {
				onChange(path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Logger().Warn("model watcher error", "err", err)
		}
	}
}
