package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/keel/internal/plugin"
)

// newEnableCommand creates the enable command.
func newEnableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <plugin>",
		Short: "Enable a plugin",
		Long:  `Enable a plugin, running its enable hook, and remember the choice for future sessions. A failing hook leaves the plugin off.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Logger.Level(zerolog.Disabled)
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			return enablePlugin(mgr, cmd.OutOrStdout(), args[0])
		},
	}
}

// newDisableCommand creates the disable command.
func newDisableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <plugin>",
		Short: "Disable a plugin",
		Long:  `Disable a plugin so it no longer starts with the editor.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Logger.Level(zerolog.Disabled)
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()
			return disablePlugin(mgr, cmd.OutOrStdout(), args[0])
		},
	}
}

// newToggleCommand creates the toggle command.
func newToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <plugin>",
		Short: "Flip a plugin between enabled and disabled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Logger.Level(zerolog.Disabled)
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			id := args[0]
			if mgr.Settings().Enabled(id) {
				return disablePlugin(mgr, cmd.OutOrStdout(), id)
			}
			return enablePlugin(mgr, cmd.OutOrStdout(), id)
		},
	}
}

func enablePlugin(mgr *plugin.Manager, out io.Writer, id string) error {
	if err := mgr.Enable(id); err != nil {
		return fmt.Errorf("enable %s: %w", id, err)
	}
	_, _ = fmt.Fprintf(out, "%s enabled\n", id)
	return nil
}

// disablePlugin clears the sticky enabled flag. The disable hook only runs
// when the plugin is enabled in this process, which a one-shot command
// normally never sees.
func disablePlugin(mgr *plugin.Manager, out io.Writer, id string) error {
	if _, err := mgr.Get(id); err != nil {
		return err
	}
	if mgr.IsEnabled(id) {
		if err := mgr.Disable(id); err != nil {
			return fmt.Errorf("disable %s: %w", id, err)
		}
	} else if err := mgr.Settings().SetEnabled(id, false); err != nil {
		return fmt.Errorf("disable %s: %w", id, err)
	}
	_, _ = fmt.Fprintf(out, "%s disabled\n", id)
	return nil
}
