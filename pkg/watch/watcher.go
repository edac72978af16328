// Package watch flags a scanned directory tree as stale when the files
// underneath it change, so the interface can offer a refresh.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches event bursts (editor saves touch several paths)
// into a single notification.
const DefaultDebounce = 500 * time.Millisecond

// Watcher posts a signal on its channel when anything under the watched
// root changes. It is best-effort: failures to watch individual
// subdirectories are logged and ignored.
type Watcher struct {
	logger   *zap.Logger
	debounce time.Duration
}

// New returns a Watcher with the default debounce window.
func New(logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{logger: logger, debounce: DefaultDebounce}
}

// Watch registers root and all its subdirectories and forwards debounced
// change signals to changed until ctx is cancelled. The channel is closed
// on return. Newly created directories are added to the watch as they
// appear.
func (w *Watcher) Watch(ctx context.Context, root string, changed chan<- struct{}) error {
	defer close(changed)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w.addRecursive(fsw, root)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addRecursive(fsw, ev.Name)
				}
			}
			w.logger.Debug("Filesystem change detected",
				zap.String("path", ev.Name),
				zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case changed <- struct{}{}:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

// addRecursive registers dir and every subdirectory beneath it.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != dir {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		w.logger.Warn("Failed to register watch tree", zap.String("root", dir), zap.Error(err))
	}
}
