package host

import (
	"errors"
	"testing"
)

func TestTabsOpenAndFocus(t *testing.T) {
	tabs := NewTabs()

	a, err := tabs.Open("/src/main.go")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if a.Title != "main.go" {
		t.Errorf("title = %q, want main.go", a.Title)
	}
	b, err := tabs.Open("/src/util.go")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	active, ok := tabs.Active()
	if !ok || active.ID != b.ID {
		t.Errorf("active = %+v, want the last opened tab", active)
	}
	if got := tabs.Tabs(); len(got) != 2 || got[0].ID != a.ID {
		t.Errorf("tabs = %+v", got)
	}
}

func TestTabsOpenDeduplicates(t *testing.T) {
	tabs := NewTabs()
	a, _ := tabs.Open("/src/main.go")
	tabs.Open("/src/util.go")

	again, err := tabs.Open("/src/main.go")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.ID != a.ID {
		t.Error("reopening duplicated the tab")
	}
	if active, _ := tabs.Active(); active.ID != a.ID {
		t.Error("reopening did not focus the existing tab")
	}
	if got := tabs.Tabs(); len(got) != 2 {
		t.Errorf("tabs = %d, want 2", len(got))
	}
}

func TestTabsClose(t *testing.T) {
	tabs := NewTabs()
	a, _ := tabs.Open("/src/a.go")
	b, _ := tabs.Open("/src/b.go")

	if err := tabs.Close(b.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if active, ok := tabs.Active(); !ok || active.ID != a.ID {
		t.Errorf("active after close = %+v, want the remaining tab", active)
	}

	if err := tabs.Close("no-such-tab"); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("close unknown = %v, want ErrUnknownTab", err)
	}
}

func TestTabsEmptyActive(t *testing.T) {
	tabs := NewTabs()
	if _, ok := tabs.Active(); ok {
		t.Error("empty tab list reports an active tab")
	}
}
