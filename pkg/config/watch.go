package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/datavault/internal/logger"
)

// Watch watches the configuration file at path and invokes onChange with the
// freshly loaded configuration every time the file is rewritten. Reload
// errors are logged and the previous configuration stays in effect.
//
// The returned stop function closes the watcher. Watch returns immediately;
// events are handled on a background goroutine.
func Watch(path string, onChange func(*Config)) (stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory, not the file: editors and config reloaders
	// typically replace the file, which drops a watch on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config directory %q: %w", dir, err)
	}

	target := filepath.Clean(path)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				cfg, err := Load(path)
				if err != nil {
					logger.Warn("config reload failed, keeping previous configuration",
						logger.Err(err))
					continue
				}

				logger.Info("configuration reloaded", logger.Path(path))
				onChange(cfg)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", logger.Err(err))
			}
		}
	}()

	return watcher.Close, nil
}
