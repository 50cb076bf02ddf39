package api

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	glua "github.com/dshills/keel/internal/plugin/lua"
)

type fakeTabs struct {
	opened []string
	tabs   []Tab
}

func (f *fakeTabs) Open(path string) (Tab, error) {
	f.opened = append(f.opened, path)
	tab := Tab{ID: "t1", Path: path, Title: path}
	f.tabs = append(f.tabs, tab)
	return tab, nil
}

func (f *fakeTabs) Active() (Tab, bool) {
	if len(f.tabs) == 0 {
		return Tab{}, false
	}
	return f.tabs[len(f.tabs)-1], true
}

func (f *fakeTabs) Tabs() []Tab { return f.tabs }

func (f *fakeTabs) Close(id string) error {
	for i, t := range f.tabs {
		if t.ID == id {
			f.tabs = append(f.tabs[:i], f.tabs[i+1:]...)
			return nil
		}
	}
	return errors.New("no such tab")
}

type fakeSettings struct {
	values map[string]any
	failed bool
}

func (f *fakeSettings) Get(key string, def any) any {
	if v, ok := f.values[key]; ok {
		return v
	}
	return def
}

func (f *fakeSettings) Set(key string, value any) error {
	if f.failed {
		return errors.New("disk full")
	}
	f.values[key] = value
	return nil
}

func (f *fakeSettings) All() map[string]any {
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

type fakeManager struct {
	rows     []PluginSummary
	enabled  []string
	disabled []string
	opened   int
}

func (f *fakeManager) List() []PluginSummary { return f.rows }

func (f *fakeManager) Enable(id string) error {
	f.enabled = append(f.enabled, id)
	return nil
}

func (f *fakeManager) Disable(id string) error {
	f.disabled = append(f.disabled, id)
	return nil
}

func (f *fakeManager) OpenList() { f.opened++ }

func newTestState(t *testing.T, surface Surface, settings SettingsAccess) *glua.State {
	t.Helper()
	st := glua.NewState()
	t.Cleanup(func() { st.Close() })
	Install(st.LuaState(), surface, settings, zerolog.Nop())
	return st
}

func TestTabsModule(t *testing.T) {
	tabs := &fakeTabs{}
	st := newTestState(t, Surface{Tabs: tabs}, NullSettings())

	code := `
keel.tabs.open("/tmp/a.txt")
active = keel.tabs.active()
count = #keel.tabs.list()
`
	if err := st.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if len(tabs.opened) != 1 || tabs.opened[0] != "/tmp/a.txt" {
		t.Errorf("opened = %v, want [/tmp/a.txt]", tabs.opened)
	}

	active, ok := st.GlobalTable("active")
	if !ok {
		t.Fatal("active should be a table")
	}
	if path, _ := glua.TableString(active, "path"); path != "/tmp/a.txt" {
		t.Errorf("active.path = %q, want /tmp/a.txt", path)
	}
	if got := glua.ToGo(st.Global("count")); got != int64(1) {
		t.Errorf("count = %v, want 1", got)
	}
}

func TestSettingsModule(t *testing.T) {
	settings := &fakeSettings{values: map[string]any{"greeting": "hi"}}
	st := newTestState(t, NullSurface(), settings)

	code := `
have = keel.settings.get("greeting", "fallback")
missing = keel.settings.get("absent", "fallback")
keel.settings.set("volume", 7)
`
	if err := st.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if got := glua.ToGo(st.Global("have")); got != "hi" {
		t.Errorf("have = %v, want hi", got)
	}
	if got := glua.ToGo(st.Global("missing")); got != "fallback" {
		t.Errorf("missing = %v, want fallback", got)
	}
	if settings.values["volume"] != int64(7) {
		t.Errorf("volume = %v, want 7", settings.values["volume"])
	}
}

func TestSettingsSetFailureRaises(t *testing.T) {
	settings := &fakeSettings{values: map[string]any{}, failed: true}
	st := newTestState(t, NullSurface(), settings)

	code := `ok, err = pcall(function() keel.settings.set("k", "v") end)`
	if err := st.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := glua.ToGo(st.Global("ok")); got != false {
		t.Error("failed set should raise inside lua")
	}
}

func TestPluginsModule(t *testing.T) {
	mgr := &fakeManager{rows: []PluginSummary{
		{Identifier: "alpha", DisplayName: "Alpha", Enabled: true},
		{Identifier: "beta", DisplayName: "Beta", Failed: true},
	}}
	st := newTestState(t, Surface{Plugins: mgr}, NullSettings())

	code := `
rows = keel.plugins.list()
first = rows[1].identifier
second_failed = rows[2].failed
keel.plugins.enable("beta")
keel.plugins.disable("alpha")
keel.plugins.open_list()
`
	if err := st.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if got := glua.ToGo(st.Global("first")); got != "alpha" {
		t.Errorf("first = %v, want alpha", got)
	}
	if got := glua.ToGo(st.Global("second_failed")); got != true {
		t.Errorf("second_failed = %v, want true", got)
	}
	if len(mgr.enabled) != 1 || mgr.enabled[0] != "beta" {
		t.Errorf("enabled = %v, want [beta]", mgr.enabled)
	}
	if len(mgr.disabled) != 1 || mgr.disabled[0] != "alpha" {
		t.Errorf("disabled = %v, want [alpha]", mgr.disabled)
	}
	if mgr.opened != 1 {
		t.Errorf("opened = %d, want 1", mgr.opened)
	}
}

func TestNilAccessorRaises(t *testing.T) {
	st := newTestState(t, Surface{}, NullSettings())

	code := `ok = pcall(function() return keel.tabs.list() end)`
	if err := st.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := glua.ToGo(st.Global("ok")); got != false {
		t.Error("call through a nil accessor should raise")
	}
}

func TestInstallInspectionTolerant(t *testing.T) {
	st := glua.NewState()
	defer st.Close()
	InstallInspection(st.LuaState())

	// Reads succeed with empty results; writes are dropped.
	code := `
keel.log.info("inspecting")
n = #keel.plugins.list()
keel.settings.set("k", "v")
v = keel.settings.get("k", "default")
`
	if err := st.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := glua.ToGo(st.Global("n")); got != int64(0) {
		t.Errorf("n = %v, want 0", got)
	}
	if got := glua.ToGo(st.Global("v")); got != "default" {
		t.Errorf("v = %v, want default (writes dropped)", got)
	}
}

func TestExplorerModule(t *testing.T) {
	st := newTestState(t, NullSurface(), NullSettings())

	code := `
root = keel.explorer.root()
entries = keel.explorer.list(".")
keel.explorer.refresh()
`
	if err := st.DoString(code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := glua.ToGo(st.Global("root")); got != "" {
		t.Errorf("root = %v, want empty", got)
	}
	if _, ok := st.GlobalTable("entries"); !ok {
		t.Error("entries should be a table")
	}
}
