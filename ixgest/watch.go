package ixgest

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/logger"
)

// DefaultDebounce collapses the burst of events a single save produces.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called after the input tables changed.
type ChangeFunc func(ctx context.Context) error

// Watcher reports changes to a fixed set of input files. It watches their
// parent directories so editors that replace files on save are still seen.
type Watcher struct {
	files          map[string]bool
	watcher        *fsnotify.Watcher
	debouncePeriod time.Duration
	logger         *zap.SugaredLogger
}

// NewWatcher watches the given files.
func NewWatcher(files []string, debounce time.Duration, log *zap.SugaredLogger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		files:          make(map[string]bool, len(files)),
		watcher:        fw,
		debouncePeriod: debounce,
		logger:         log,
	}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "resolve %s", f)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Run blocks until ctx is done, calling onChange once per debounced burst
// of changes. A failing onChange is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	defer w.watcher.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debugw("Input change detected",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debouncePeriod)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debouncePeriod)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.logger.Infow("Input tables changed, re-running")
			if err := onChange(ctx); err != nil {
				w.logger.Errorw("Re-run after input change failed", logger.FieldError, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Input watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
