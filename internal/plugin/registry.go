package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Registration describes a native plugin compiled into the editor. Native
// plugins move through the same lifecycle as script plugins but have no
// backing file: they claim their identifier before any scan and survive
// every rescan.
type Registration struct {
	Identifier  string
	DisplayName string
	Description string
	Version     string
	Author      string
	Construct   Constructor
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]Registration)
)

// Register adds a native plugin to the process-wide registry. It is meant
// to be called from init functions and panics on an invalid identifier, a
// nil constructor, or a duplicate registration.
func Register(r Registration) {
	if !ValidIdentifier(r.Identifier) {
		panic(fmt.Sprintf("plugin: register %q: %v", r.Identifier, ErrInvalidIdentifier))
	}
	if r.Construct == nil {
		panic(fmt.Sprintf("plugin: register %q: nil constructor", r.Identifier))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[r.Identifier]; dup {
		panic(fmt.Sprintf("plugin: register %q: %v", r.Identifier, ErrIdentifierTaken))
	}
	registry[r.Identifier] = r
}

// Registered returns the process-wide registrations in identifier order.
func Registered() []Registration {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]Registration, 0, len(registry))
	for _, r := range registry {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// descriptor converts a registration into the descriptor the manager
// tracks for it.
func (r Registration) descriptor() Descriptor {
	return Descriptor{
		Identifier:  r.Identifier,
		ClassName:   DeriveClassName(r.Identifier),
		Builtin:     true,
		DisplayName: r.DisplayName,
		Description: r.Description,
		Version:     r.Version,
		Author:      r.Author,
	}
}
