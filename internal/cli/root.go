// Package cli provides the keel command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/keel/internal/config"
	"github.com/dshills/keel/internal/logging"
)

// NewRootCommand creates and returns the root command with all subcommands.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "keel",
		Short: "Plugin host for the keel editor",
		Long: `Keel manages editor plugins: Lua scripts dropped into the plugin
directory plus built-in plugins compiled into the binary. Plugins are
enabled and disabled per user, and the choice sticks across sessions.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Initialize(cmd.Root().PersistentFlags()); err != nil {
				return fmt.Errorf("initialize configuration: %w", err)
			}
			cfg := config.Get()
			logging.Init(cfg.Log.Level, cfg.Log.Format != "json")
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("workspace", "", "workspace directory for tabs, terminal, and explorer")
	flags.String("plugin-dir", "", "plugin script directory")
	flags.String("settings-dir", "", "plugin settings directory")
	flags.Bool("watch", true, "watch the plugin directory during browse sessions")
	flags.String("log-level", "info", "logging level (debug, info, warn, error)")
	flags.String("log-format", "", "logging format (human, json)")

	root.AddCommand(
		newBrowseCommand(),
		newListCommand(),
		newInfoCommand(),
		newEnableCommand(),
		newDisableCommand(),
		newToggleCommand(),
		newSettingsCommand(),
	)

	return root
}
