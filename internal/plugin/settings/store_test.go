package settings

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestSetGet(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Set("foo_bar", "greeting", "hello"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got := s.Get("foo_bar", "greeting", "default")
	if got != "hello" {
		t.Errorf("Get() = %v, want hello", got)
	}
}

func TestGetMissingRecordReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	got := s.Get("absent", "key", "fallback")
	if got != "fallback" {
		t.Errorf("Get() = %v, want fallback", got)
	}

	// A read must not create the record file.
	if _, err := os.Stat(filepath.Join(dir, "absent.toml")); !os.IsNotExist(err) {
		t.Error("Get() on a missing record must not create a file")
	}
}

func TestGetMissingKeyReturnsDefault(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Set("foo_bar", "known", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := s.Get("foo_bar", "unknown", "d"); got != "d" {
		t.Errorf("Get(unknown) = %v, want d", got)
	}
}

func TestIsolationAcrossIdentifiers(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Set("alpha", "k", "from alpha"); err != nil {
		t.Fatalf("Set(alpha) error = %v", err)
	}
	if err := s.Set("beta", "k", "from beta"); err != nil {
		t.Fatalf("Set(beta) error = %v", err)
	}

	if got := s.Get("alpha", "k", ""); got != "from alpha" {
		t.Errorf("alpha k = %v, want from alpha", got)
	}
	if got := s.Get("beta", "k", ""); got != "from beta" {
		t.Errorf("beta k = %v, want from beta", got)
	}
}

func TestSetPreservesOtherKeys(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Set("p", "first", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("p", "second", "2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := s.Get("p", "first", ""); got != "1" {
		t.Errorf("first = %v, want 1", got)
	}
	if got := s.Get("p", "second", ""); got != "2" {
		t.Errorf("second = %v, want 2", got)
	}
}

func TestEnabledFlag(t *testing.T) {
	s := NewStore(t.TempDir())

	if s.Enabled("p") {
		t.Error("Enabled() on missing record = true, want false")
	}

	if err := s.SetEnabled("p", true); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if !s.Enabled("p") {
		t.Error("Enabled() = false after SetEnabled(true)")
	}

	if err := s.SetEnabled("p", false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if s.Enabled("p") {
		t.Error("Enabled() = true after SetEnabled(false)")
	}
}

func TestEnabledSurvivesSettingsWrites(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.SetEnabled("p", true); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if err := s.Set("p", "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if !s.Enabled("p") {
		t.Error("enabled flag lost by a settings write")
	}
	if got := s.Get("p", "k", ""); got != "v" {
		t.Errorf("k = %v, want v", got)
	}
}

func TestCorruptRecordTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "p.toml")
	if err := os.WriteFile(path, []byte("this is { not toml ["), 0o644); err != nil {
		t.Fatalf("write corrupt record: %v", err)
	}

	var reported *CorruptError
	s := NewStore(dir, WithCorruptHandler(func(ce *CorruptError) {
		reported = ce
	}))

	if got := s.Get("p", "k", "d"); got != "d" {
		t.Errorf("Get() on corrupt record = %v, want default", got)
	}
	if reported == nil {
		t.Fatal("corrupt handler was not invoked")
	}
	if reported.Identifier != "p" {
		t.Errorf("Identifier = %q, want p", reported.Identifier)
	}

	// Writing after corruption replaces the broken record.
	if err := s.Set("p", "k", "v"); err != nil {
		t.Fatalf("Set() after corruption error = %v", err)
	}
	if got := s.Get("p", "k", ""); got != "v" {
		t.Errorf("Get() after rewrite = %v, want v", got)
	}
}

func TestUnknownKeysRoundTrip(t *testing.T) {
	dir := t.TempDir()

	record := `enabled = true
future_field = "keep me"

[settings]
known = "old"
mystery = 9
`
	if err := os.WriteFile(filepath.Join(dir, "p.toml"), []byte(record), 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}

	s := NewStore(dir)
	if err := s.Set("p", "known", "new"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "p.toml"))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var rec map[string]any
	if err := toml.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode rewritten record: %v", err)
	}

	if rec["future_field"] != "keep me" {
		t.Errorf("future_field = %v, want preserved", rec["future_field"])
	}
	if rec["enabled"] != true {
		t.Errorf("enabled = %v, want true", rec["enabled"])
	}
	tbl, ok := rec["settings"].(map[string]any)
	if !ok {
		t.Fatal("settings table missing after rewrite")
	}
	if tbl["mystery"] != int64(9) {
		t.Errorf("mystery = %v, want 9", tbl["mystery"])
	}
	if tbl["known"] != "new" {
		t.Errorf("known = %v, want new", tbl["known"])
	}
}

func TestClearEnabledRetainsSettings(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if err := s.SetEnabled("p", true); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if err := s.Set("p", "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := s.ClearEnabled("p"); err != nil {
		t.Fatalf("ClearEnabled() error = %v", err)
	}

	if s.Enabled("p") {
		t.Error("enabled flag survived ClearEnabled")
	}
	if got := s.Get("p", "k", ""); got != "v" {
		t.Errorf("settings lost by ClearEnabled: k = %v, want v", got)
	}
}

func TestClearEnabledRemovesBareRecord(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if err := s.SetEnabled("p", true); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if err := s.ClearEnabled("p"); err != nil {
		t.Fatalf("ClearEnabled() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "p.toml")); !os.IsNotExist(err) {
		t.Error("record holding only the enabled flag should be deleted")
	}
}

func TestClearEnabledMissingRecord(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.ClearEnabled("never_seen"); err != nil {
		t.Errorf("ClearEnabled() on missing record error = %v, want nil", err)
	}
}

func TestTypedGetters(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Set("p", "s", "text"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("p", "n", int64(5)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("p", "b", true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("p", "f", 1.5); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got := s.GetString("p", "s", "d"); got != "text" {
		t.Errorf("GetString = %q, want text", got)
	}
	if got := s.GetString("p", "n", "d"); got != "d" {
		t.Errorf("GetString on int = %q, want default", got)
	}
	if got := s.GetInt("p", "n", 0); got != 5 {
		t.Errorf("GetInt = %d, want 5", got)
	}
	if got := s.GetInt("p", "s", 7); got != 7 {
		t.Errorf("GetInt on string = %d, want default", got)
	}
	if got := s.GetBool("p", "b", false); got != true {
		t.Errorf("GetBool = %v, want true", got)
	}
	if got := s.GetFloat("p", "f", 0); got != 1.5 {
		t.Errorf("GetFloat = %v, want 1.5", got)
	}
	if got := s.GetFloat("p", "n", 0); got != 5.0 {
		t.Errorf("GetFloat on int = %v, want 5", got)
	}
}

func TestSettingsSnapshot(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Set("p", "a", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	snap := s.Settings("p")
	if snap["a"] != "1" {
		t.Errorf("Settings()[a] = %v, want 1", snap["a"])
	}

	// Mutating the snapshot must not touch the store.
	snap["a"] = "poisoned"
	if got := s.Get("p", "a", ""); got != "1" {
		t.Errorf("store mutated through snapshot: a = %v, want 1", got)
	}
}

func TestConcurrentWrites(t *testing.T) {
	s := NewStore(t.TempDir())

	var wg sync.WaitGroup
	ids := []string{"one", "two", "three"}
	for _, id := range ids {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id string, i int) {
				defer wg.Done()
				if err := s.Set(id, "counter", int64(i)); err != nil {
					t.Errorf("Set(%s) error = %v", id, err)
				}
				s.Get(id, "counter", int64(-1))
			}(id, i)
		}
	}
	wg.Wait()

	for _, id := range ids {
		v := s.GetInt(id, "counter", -1)
		if v < 0 || v > 9 {
			t.Errorf("counter for %s = %d, want a written value", id, v)
		}
	}
}
