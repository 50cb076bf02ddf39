package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period the watcher waits for before
// rescanning. Editors produce bursts of writes and renames per save; one
// rescan at the end of the burst covers all of them.
const DefaultDebounce = 250 * time.Millisecond

// Watcher rescans the manager's plugin directory when script files change,
// so plugins dropped into or deleted from the directory show up without a
// restart.
type Watcher struct {
	manager  *Manager
	log      zerolog.Logger
	debounce time.Duration

	fw   *fsnotify.Watcher
	done chan struct{}
	once sync.Once
}

// NewWatcher starts watching the manager's plugin directory. The directory
// is created when absent; watching requires it to exist.
func NewWatcher(m *Manager, debounce time.Duration, log zerolog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if err := os.MkdirAll(m.Dir(), 0o755); err != nil {
		return nil, fmt.Errorf("create plugin dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create plugin watcher: %w", err)
	}
	if err := fw.Add(m.Dir()); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", m.Dir(), err)
	}

	w := &Watcher{
		manager:  m,
		log:      log,
		debounce: debounce,
		fw:       fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.fw.Close()
}

func (w *Watcher) loop() {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !relevantEvent(ev) {
				continue
			}
			w.log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).
				Msg("plugin file changed")
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			if err := w.manager.Rescan(); err != nil {
				w.log.Warn().Err(err).Msg("rescan after file change failed")
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("plugin watcher error")

		case <-w.done:
			return
		}
	}
}

// relevantEvent reports whether a file system event concerns a plugin
// script. Chmod noise and unrelated files are ignored.
func relevantEvent(ev fsnotify.Event) bool {
	name := filepath.Base(ev.Name)
	if !strings.HasSuffix(name, Ext) || strings.HasPrefix(name, ".") {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
