// ABOUTME: Reloads the fake service fixture when its file changes
// ABOUTME: Watches the containing directory so editor save-by-rename is seen

package fakefaq

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchFixture reloads path into s whenever the file is written or
// replaced, until ctx is done. A fixture that fails to parse is logged and
// the previous one stays in service.
func WatchFixture(ctx context.Context, s *Server, path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "fixture-watcher")

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving fixture path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				f, err := LoadFixture(abs)
				if err != nil {
					logger.Warn("fixture reload failed, keeping previous", "path", abs, "error", err)
					continue
				}
				s.SetFixture(f)
				logger.Info("fixture reloaded", "path", abs, "faqs", len(f.FAQs))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", "error", err)
			}
		}
	}()

	return nil
}
