// Package config loads keel configuration from the config file, the
// environment, and command-line flags, in ascending precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration settings.
type Config struct {
	// Workspace is the directory the explorer and terminal operate in.
	Workspace string

	Plugin struct {
		// Dir is the plugin script directory.
		Dir string
		// Watch keeps the plugin directory under a file watcher during
		// interactive sessions.
		Watch bool
	}

	Settings struct {
		// Dir is the per-plugin settings record directory.
		Dir string
	}

	Log struct {
		// Level is the minimum level to emit (debug, info, warn, error).
		Level string
		// Format selects human or json output. Empty picks human on a
		// terminal and json otherwise.
		Format string
	}
}

var (
	configData Config
	v          *viper.Viper
)

// BaseDir returns the keel configuration root, honoring XDG_CONFIG_HOME.
func BaseDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "keel")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keel"
	}
	return filepath.Join(home, ".config", "keel")
}

// Initialize sets up the configuration system. flags, when non-nil, binds
// the standard command-line flags over file and environment values.
func Initialize(flags *pflag.FlagSet) error {
	v = viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath(BaseDir())

	setDefaults()

	v.SetEnvPrefix("KEEL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if flags != nil {
		binds := map[string]string{
			"workspace":    "workspace",
			"plugin.dir":   "plugin-dir",
			"plugin.watch": "watch",
			"settings.dir": "settings-dir",
			"log.level":    "log-level",
			"log.format":   "log-format",
		}
		for key, name := range binds {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("bind flag %q: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config file: %w", err)
		}
		// No config file is fine; defaults, env, and flags apply.
	}

	if err := v.Unmarshal(&configData); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// setDefaults sets default values for all configuration options.
func setDefaults() {
	base := BaseDir()
	v.SetDefault("workspace", ".")
	v.SetDefault("plugin.dir", filepath.Join(base, "plugins"))
	v.SetDefault("plugin.watch", true)
	v.SetDefault("settings.dir", filepath.Join(base, "settings"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
}

// Get returns the loaded configuration. Initialize must have run.
func Get() Config {
	return configData
}
