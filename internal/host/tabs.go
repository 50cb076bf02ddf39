package host

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/keel/internal/plugin/api"
)

// ErrUnknownTab is returned when a tab id does not exist.
var ErrUnknownTab = errors.New("unknown tab")

// Tabs is an in-memory tab manager. Opening a path that is already open
// focuses the existing tab instead of duplicating it.
type Tabs struct {
	mu     sync.Mutex
	open   []api.Tab
	active string
}

// NewTabs creates an empty tab list.
func NewTabs() *Tabs {
	return &Tabs{}
}

// Open opens path in a tab and focuses it.
func (t *Tabs) Open(path string) (api.Tab, error) {
	clean := filepath.Clean(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, tab := range t.open {
		if tab.Path == clean {
			t.active = tab.ID
			return tab, nil
		}
	}

	tab := api.Tab{
		ID:    uuid.New().String(),
		Path:  clean,
		Title: filepath.Base(clean),
	}
	t.open = append(t.open, tab)
	t.active = tab.ID
	return tab, nil
}

// Active returns the focused tab, if any.
func (t *Tabs) Active() (api.Tab, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, tab := range t.open {
		if tab.ID == t.active {
			return tab, true
		}
	}
	return api.Tab{}, false
}

// Tabs lists open tabs in the order they were opened.
func (t *Tabs) Tabs() []api.Tab {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]api.Tab, len(t.open))
	copy(out, t.open)
	return out
}

// Close closes a tab. Closing the focused tab moves focus to the last
// remaining tab.
func (t *Tabs) Close(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, tab := range t.open {
		if tab.ID != id {
			continue
		}
		t.open = append(t.open[:i], t.open[i+1:]...)
		if t.active == id {
			t.active = ""
			if len(t.open) > 0 {
				t.active = t.open[len(t.open)-1].ID
			}
		}
		return nil
	}
	return ErrUnknownTab
}
