// Package ui renders the plugin browser: a full-screen list of every
// plugin with its enabled state, an info panel for the selection, and a
// read-only view of a plugin's settings surface.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/keel/internal/plugin"
)

// Browser is the interactive plugin list.
//
//	up/down, j/k   move the selection
//	enter, space   toggle the selected plugin
//	e              open the plugin's settings surface
//	r              rescan the plugin directory
//	q, esc         close the surface view, then quit
type Browser struct {
	mgr    *plugin.Manager
	screen tcell.Screen
	log    zerolog.Logger

	infos    []plugin.Info
	scanErrs []error
	selected int
	surface  *plugin.SettingsSurface
	status   string
	quit     bool
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithScreen substitutes the tcell screen, used by tests to render into a
// simulation screen.
func WithScreen(screen tcell.Screen) BrowserOption {
	return func(b *Browser) {
		b.screen = screen
	}
}

// WithBrowserLogger sets the browser logger.
func WithBrowserLogger(log zerolog.Logger) BrowserOption {
	return func(b *Browser) {
		b.log = log
	}
}

// NewBrowser creates a browser over the manager.
func NewBrowser(mgr *plugin.Manager, opts ...BrowserOption) *Browser {
	b := &Browser{mgr: mgr, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run owns the terminal until the user quits. Manager events arriving from
// other goroutines, the file watcher in particular, repaint the list.
func (b *Browser) Run() error {
	if b.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("create screen: %w", err)
		}
		b.screen = screen
	}
	if err := b.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer b.screen.Fini()

	unsub := b.mgr.Subscribe(func(plugin.Event) {
		// Wake the poll loop; reload happens on the UI goroutine.
		b.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer unsub()

	b.reload()
	for !b.quit {
		b.draw()
		ev := b.screen.PollEvent()
		if ev == nil {
			return nil
		}
		b.handle(ev)
	}
	return nil
}

// reload re-reads the listing and clamps the selection.
func (b *Browser) reload() {
	b.infos = b.mgr.List()
	b.scanErrs = b.mgr.ScanErrors()
	if b.selected >= len(b.infos) {
		b.selected = len(b.infos) - 1
	}
	if b.selected < 0 {
		b.selected = 0
	}
}

// stopRequest rides an interrupt event into the poll loop.
type stopRequest struct{}

// Stop asks a running browser to quit from another goroutine, typically on
// a termination signal. The browser must have been built with WithScreen.
func (b *Browser) Stop() {
	b.screen.PostEvent(tcell.NewEventInterrupt(stopRequest{}))
}

func (b *Browser) handle(ev tcell.Event) {
	switch tev := ev.(type) {
	case *tcell.EventInterrupt:
		if _, ok := tev.Data().(stopRequest); ok {
			b.quit = true
			return
		}
		b.reload()
	case *tcell.EventResize:
		b.screen.Sync()
	case *tcell.EventKey:
		b.handleKey(tev)
	}
}

func (b *Browser) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		b.quit = true
		return
	}

	// The surface view swallows navigation; any close key returns to the
	// list.
	if b.surface != nil {
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Rune() == 'q':
			b.surface = nil
			b.status = ""
		}
		return
	}

	switch {
	case ev.Key() == tcell.KeyEscape, ev.Rune() == 'q':
		b.quit = true
	case ev.Key() == tcell.KeyUp, ev.Rune() == 'k':
		if b.selected > 0 {
			b.selected--
		}
	case ev.Key() == tcell.KeyDown, ev.Rune() == 'j':
		if b.selected < len(b.infos)-1 {
			b.selected++
		}
	case ev.Key() == tcell.KeyEnter, ev.Rune() == ' ':
		b.toggleSelected()
	case ev.Rune() == 'e':
		b.editSelected()
	case ev.Rune() == 'r':
		if err := b.mgr.Rescan(); err != nil {
			b.status = err.Error()
		} else {
			b.status = "rescanned"
		}
		b.reload()
	}
}

func (b *Browser) selectedInfo() (plugin.Info, bool) {
	if b.selected < 0 || b.selected >= len(b.infos) {
		return plugin.Info{}, false
	}
	return b.infos[b.selected], true
}

func (b *Browser) toggleSelected() {
	info, ok := b.selectedInfo()
	if !ok {
		return
	}
	on, err := b.mgr.Toggle(info.Identifier)
	switch {
	case err != nil:
		b.status = fmt.Sprintf("%s: %v", info.Identifier, err)
	case on:
		b.status = info.Identifier + " enabled"
	default:
		b.status = info.Identifier + " disabled"
	}
	b.reload()
}

func (b *Browser) editSelected() {
	info, ok := b.selectedInfo()
	if !ok {
		return
	}
	surface, err := b.mgr.EditSurface(info.Identifier)
	if err != nil || surface == nil {
		// Failed or absent edit hooks read the same to the user.
		b.status = info.Identifier + ": no settings available"
		b.reload()
		return
	}
	b.surface = surface
	b.status = ""
}
