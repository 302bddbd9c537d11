// Package watch turns file system events in a library directory into
// debounced reindex calls.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Watcher observes the regular files directly inside one directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	log      Logger
}

func New(dir string, debounce time.Duration, log Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{dir: dir, debounce: debounce, log: log}
}

// Run blocks until ctx is done, calling onChange once per burst of relevant
// events. Errors from onChange are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

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

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !Relevant(ev) {
				continue
			}
			w.log.Debugf("Change detected: %s %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("Watcher error: %v", err)

		case <-fire:
			fire = nil
			if err := onChange(ctx); err != nil {
				w.log.Warnf("Reindex after change failed: %v", err)
			}
		}
	}
}

// Relevant reports whether ev touches a song file rather than a hidden or
// temporary file (the reserved index and metadata directories are hidden).
func Relevant(ev fsnotify.Event) bool {
	base := filepath.Base(ev.Name)
	if base == "" || strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
