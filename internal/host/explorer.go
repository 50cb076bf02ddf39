package host

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/keel/internal/plugin/api"
)

// Explorer lists directories under a fixed root, the way a file tree
// sidebar does: directories first, then files, both in name order.
type Explorer struct {
	root string
	log  zerolog.Logger
	gen  atomic.Int64
}

// NewExplorer creates an explorer rooted at root.
func NewExplorer(root string, log zerolog.Logger) *Explorer {
	return &Explorer{root: filepath.Clean(root), log: log}
}

// Root returns the explorer root.
func (e *Explorer) Root() string {
	return e.root
}

// List returns the entries directly under dir. A relative dir is resolved
// against the root; paths resolving outside the root are rejected so the
// tree the UI shows stays consistent.
func (e *Explorer) List(dir string) ([]api.ExplorerEntry, error) {
	target := dir
	if target == "" {
		target = e.root
	} else if !filepath.IsAbs(target) {
		target = filepath.Join(e.root, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(e.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("list %q: outside explorer root %q", dir, e.root)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", dir, err)
	}

	out := make([]api.ExplorerEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, api.ExplorerEntry{
			Name: entry.Name(),
			Path: filepath.Join(target, entry.Name()),
			Dir:  entry.IsDir(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dir != out[j].Dir {
			return out[i].Dir
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Refresh bumps the tree generation. Listings read the file system live,
// so there is nothing to invalidate; the generation lets interested
// callers notice that a refresh was requested.
func (e *Explorer) Refresh() {
	n := e.gen.Add(1)
	e.log.Debug().Int64("generation", n).Msg("explorer refresh requested")
}

// Generation returns the number of refreshes requested so far.
func (e *Explorer) Generation() int64 {
	return e.gen.Load()
}

// NewSurface bundles the reference implementations into a capability
// surface rooted at root. The Plugins field is left nil; the plugin
// manager installs its own back-reference per plugin.
func NewSurface(root string, log zerolog.Logger) api.Surface {
	return api.Surface{
		Tabs:     NewTabs(),
		Terminal: NewTerminal(WithWorkDir(root), WithTerminalLogger(log)),
		Explorer: NewExplorer(root, log),
	}
}
