package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"wantbot/internal/logging"
)

// Watch re-loads the config whenever the file at path changes and calls
// onChange with the result. It blocks until ctx ends. Only hot-reloadable
// tunables (pacer spacing, catalog timeout) should be applied from
// onChange; everything else needs a restart.
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files rather than write in
	// place, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				logging.Boot("config reload failed: %v", err)
				continue
			}
			logging.Boot("config reloaded from %s", path)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Boot("config watch error: %v", err)
		}
	}
}
