package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yshengliao/antoree/routes"
	"go.uber.org/zap"
)

// reloadDelay coalesces the burst of events editors emit on save
const reloadDelay = 100 * time.Millisecond

// Watch reloads the route table file on every change and hands the merged
// registry (defaults plus file) to onChange. A file that fails to parse is
// logged and ignored so the last good table stays active. Watch blocks
// until ctx is done.
func Watch(ctx context.Context, path string, logger *zap.Logger, onChange func(routes.Registry)) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors often replace the file instead of
	// writing it in place.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDelay)
			} else {
				timer.Reset(reloadDelay)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			registry, err := routes.LoadWithDefaults(abs)
			if err != nil {
				logger.Warn("route table reload failed", zap.String("file", abs), zap.Error(err))
				continue
			}
			logger.Info("route table reloaded", zap.String("file", abs))
			onChange(registry)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
