package validate

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long to wait after a file event before reloading,
// so editors that write in multiple steps trigger a single reload.
const watchDebounce = 100 * time.Millisecond

// Watch watches the rules file for changes and reloads it. The watch
// runs until the context is cancelled. A failed reload keeps the
// previous rules active and is logged, never fatal.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("rules source has no file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files by
	// rename, which drops a file-level watch.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	s.logger.Info("watching rules file", "path", s.path)

	go s.watchLoop(ctx, watcher)
	return nil
}

func (s *Source) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounce *time.Timer
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				if err := s.Reload(); err != nil {
					s.logger.Error("rules reload failed, keeping previous rules",
						"path", s.path,
						"error", err,
					)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("rules watcher error", "error", err)
		}
	}
}
