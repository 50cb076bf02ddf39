package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// newListCommand creates the list command.
func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plugins",
		Long:  `List every plugin in the plugin directory plus the built-in plugins, with the sticky enabled flag and any discovery problem.`,
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	// Disable logging for CLI output commands.
	log.Logger = log.Logger.Level(zerolog.Disabled)

	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "Plugin\tName\tEnabled\tVersion\tNotes")
	_, _ = fmt.Fprintln(w, "------\t----\t-------\t-------\t-----")

	for _, info := range mgr.List() {
		enabled := "no"
		if mgr.Settings().Enabled(info.Identifier) {
			enabled = "yes"
		}
		notes := ""
		switch {
		case info.LastError != nil:
			notes = info.LastError.Error()
		case info.Builtin:
			notes = "built-in"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			info.Identifier,
			info.DisplayName,
			enabled,
			info.Version,
			notes)
	}
	for _, serr := range mgr.ScanErrors() {
		_, _ = fmt.Fprintf(w, "\t\t\t\t%s\n", serr)
	}
	return w.Flush()
}
