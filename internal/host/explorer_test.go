package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func seedTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"src", "docs"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	for _, file := range []string{"README.md", "go.mod", filepath.Join("src", "main.go")} {
		if err := os.WriteFile(filepath.Join(root, file), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func TestExplorerListsDirsFirst(t *testing.T) {
	root := seedTree(t)
	e := NewExplorer(root, zerolog.Nop())

	entries, err := e.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name
	}
	want := []string{"docs", "src", "README.md", "go.mod"}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("entries = %v, want %v", names, want)
		}
	}
	if !entries[0].Dir || entries[2].Dir {
		t.Error("directory flags wrong")
	}
}

func TestExplorerListsRelativeSubdir(t *testing.T) {
	root := seedTree(t)
	e := NewExplorer(root, zerolog.Nop())

	entries, err := e.List("src")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "main.go" {
		t.Errorf("entries = %+v", entries)
	}
	if entries[0].Path != filepath.Join(root, "src", "main.go") {
		t.Errorf("path = %q", entries[0].Path)
	}
}

func TestExplorerRejectsEscape(t *testing.T) {
	e := NewExplorer(seedTree(t), zerolog.Nop())

	if _, err := e.List(".."); err == nil {
		t.Error("listing above the root succeeded")
	}
	if _, err := e.List(filepath.Join("..", "elsewhere")); err == nil {
		t.Error("relative escape succeeded")
	}
}

func TestExplorerMissingDir(t *testing.T) {
	e := NewExplorer(seedTree(t), zerolog.Nop())
	if _, err := e.List("absent"); err == nil {
		t.Error("missing directory listed without error")
	}
}

func TestExplorerRefreshGeneration(t *testing.T) {
	e := NewExplorer(seedTree(t), zerolog.Nop())
	e.Refresh()
	e.Refresh()
	if got := e.Generation(); got != 2 {
		t.Errorf("generation = %d, want 2", got)
	}
}

func TestNewSurfaceIsComplete(t *testing.T) {
	s := NewSurface(seedTree(t), zerolog.Nop())
	if s.Tabs == nil || s.Terminal == nil || s.Explorer == nil {
		t.Error("surface missing a capability")
	}
	if s.Plugins != nil {
		t.Error("surface pre-filled the manager back-reference")
	}
}
