package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchLag coalesces the burst of events editors produce for one save.
const watchLag = 100 * time.Millisecond

// Watch calls fn with the reloaded configuration each time the file at path
// changes, until ctx is done. The parent directory is watched so the file
// survives editors that replace it with a rename. A file that fails to load
// is logged and skipped; fn only sees valid configurations.
func Watch(ctx context.Context, path string, log *slog.Logger, fn func(Config)) error {
	if log == nil {
		log = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}

	timer := time.NewTimer(watchLag)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(watchLag)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", "path", abs, "error", err)
		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				log.Warn("config reload failed", "path", abs, "error", err)
				continue
			}
			log.Debug("config reloaded", "path", abs)
			fn(cfg)
		}
	}
}
