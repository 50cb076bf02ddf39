package plugin

import (
	"sync"

	"github.com/rs/zerolog"
)

// EventKind identifies a lifecycle transition announced by the manager.
type EventKind int

const (
	EventDiscovered EventKind = iota
	EventLoaded
	EventEnabled
	EventDisabled
	EventRemoved
	EventFailed
)

// String returns the lower-case event name.
func (k EventKind) String() string {
	switch k {
	case EventDiscovered:
		return "discovered"
	case EventLoaded:
		return "loaded"
	case EventEnabled:
		return "enabled"
	case EventDisabled:
		return "disabled"
	case EventRemoved:
		return "removed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event describes one lifecycle transition. Err is set for EventFailed and
// carries the recorded DiscoveryError, LoadError, or HookError.
type Event struct {
	Kind       EventKind
	Identifier string
	Err        error
}

// Handler receives manager events. Handlers run synchronously on the
// goroutine performing the transition, so they must not call back into
// lifecycle operations for the same plugin. A panicking handler is
// recovered and logged so it cannot take down the host.
type Handler func(Event)

// handlerSet is the manager's subscriber registry.
type handlerSet struct {
	mu   sync.Mutex
	next int
	fns  map[int]Handler
}

// add registers fn and returns a function that unregisters it.
func (h *handlerSet) add(fn Handler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fns == nil {
		h.fns = make(map[int]Handler)
	}
	id := h.next
	h.next++
	h.fns[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.fns, id)
	}
}

// emit delivers ev to every registered handler, recovering panics.
func (h *handlerSet) emit(log zerolog.Logger, ev Event) {
	h.mu.Lock()
	fns := make([]Handler, 0, len(h.fns))
	for _, fn := range h.fns {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("event", ev.Kind.String()).
						Str("plugin", ev.Identifier).
						Interface("panic", r).
						Msg("event handler panicked")
				}
			}()
			fn(ev)
		}()
	}
}
