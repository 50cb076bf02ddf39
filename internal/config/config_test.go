package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestInitializeDefaults(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	if err := Initialize(nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	cfg := Get()

	if cfg.Plugin.Dir != filepath.Join(base, "keel", "plugins") {
		t.Errorf("plugin dir = %q", cfg.Plugin.Dir)
	}
	if cfg.Settings.Dir != filepath.Join(base, "keel", "settings") {
		t.Errorf("settings dir = %q", cfg.Settings.Dir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if !cfg.Plugin.Watch {
		t.Error("watch not on by default")
	}
}

func TestInitializeReadsConfigFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir := filepath.Join(base, "keel")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := "[log]\nlevel = \"debug\"\n\n[plugin]\ndir = \"/srv/keel/plugins\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := Initialize(nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	cfg := Get()

	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Plugin.Dir != "/srv/keel/plugins" {
		t.Errorf("plugin dir = %q", cfg.Plugin.Dir)
	}
	// Untouched keys keep their defaults.
	if cfg.Settings.Dir != filepath.Join(dir, "settings") {
		t.Errorf("settings dir = %q", cfg.Settings.Dir)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KEEL_LOG_LEVEL", "warn")

	if err := Initialize(nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got := Get().Log.Level; got != "warn" {
		t.Errorf("log level = %q, want warn", got)
	}
}

func TestFlagsOverrideEverything(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KEEL_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("plugin-dir", "", "")
	if err := flags.Parse([]string{"--log-level=debug", "--plugin-dir=/tmp/p"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := Initialize(flags); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	cfg := Get()
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Plugin.Dir != "/tmp/p" {
		t.Errorf("plugin dir = %q, want /tmp/p", cfg.Plugin.Dir)
	}
}
