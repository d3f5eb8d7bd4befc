package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
)

// Watch reloads the configuration file whenever it is written and sends
// every valid result on the returned channel. Invalid edits are logged and
// skipped so a half-saved file never reaches the application. The channel is
// closed when ctx is done.
func Watch(ctx context.Context, path string, log *zap.Logger) (<-chan *Config, error) {
	if log == nil {
		log = zap.NewNop()
	}

	expandedPath, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	expandedPath = filepath.Clean(expandedPath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// editors often replace the file instead of writing it, so watch the
	// directory and filter by name
	dir := filepath.Dir(expandedPath)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("unable to watch %s: %w", dir, err)
	}

	out := make(chan *Config)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != expandedPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				cfg, err := Load(expandedPath)
				if err != nil {
					log.Warn("ignoring invalid configuration change", zap.String("path", expandedPath), zap.Error(err))
					continue
				}
				log.Info("configuration reloaded", zap.String("path", expandedPath))

				select {
				case out <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("configuration watcher error", zap.Error(err))
			}
		}
	}()

	return out, nil
}
