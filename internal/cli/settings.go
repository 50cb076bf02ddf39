package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// newSettingsCommand creates the settings command group.
func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change plugin settings",
		Long:  `Read and write the per-plugin settings records. Values written here are the same ones plugins read through their settings access.`,
	}
	cmd.AddCommand(
		newSettingsShowCommand(),
		newSettingsGetCommand(),
		newSettingsSetCommand(),
	)
	return cmd
}

func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <plugin>",
		Short: "Print every setting for a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Logger.Level(zerolog.Disabled)
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			if _, err := mgr.Get(args[0]); err != nil {
				return err
			}
			all := mgr.Settings().Settings(args[0])
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", k, all[k])
			}
			return nil
		},
	}
}

func newSettingsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <plugin> <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Logger.Level(zerolog.Disabled)
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			id, key := args[0], args[1]
			if _, err := mgr.Get(id); err != nil {
				return err
			}
			value := mgr.Settings().Get(id, key, nil)
			if value == nil {
				return fmt.Errorf("%s has no setting %q", id, key)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
			return nil
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <plugin> <key> <value>",
		Short: "Write one setting",
		Long:  `Write one setting for a plugin. Values that read as integers, floats, or booleans are stored typed; everything else is stored as a string.`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Logger.Level(zerolog.Disabled)
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			id, key := args[0], args[1]
			if _, err := mgr.Get(id); err != nil {
				return err
			}
			value := parseSettingValue(args[2])
			if err := mgr.Settings().Set(id, key, value); err != nil {
				return fmt.Errorf("write setting: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %v\n", id, key, value)
			return nil
		},
	}
}

// parseSettingValue types a command-line value. Integers beat floats beat
// booleans so "1" stays numeric.
func parseSettingValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
