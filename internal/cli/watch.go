package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

// watchFile calls onChange after path is written or recreated, until ctx
// is done. The parent directory is watched so that editors replacing the
// file by rename are still seen. Calls to onChange never overlap.
func watchFile(ctx context.Context, logger *log.Logger, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Clean(event.Name) != abs {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
				onChange()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "err", err)
		}
	}
}
