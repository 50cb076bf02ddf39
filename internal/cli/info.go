package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// newInfoCommand creates the info command.
func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <plugin>",
		Short: "Show one plugin's metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	log.Logger = log.Logger.Level(zerolog.Disabled)

	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	info, err := mgr.Get(args[0])
	if err != nil {
		return err
	}

	source := info.Path
	if info.Builtin {
		source = "built into the editor"
	}
	enabled := "no"
	if mgr.Settings().Enabled(info.Identifier) {
		enabled = "yes"
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Plugin:\t%s\n", info.DisplayName)
	_, _ = fmt.Fprintf(w, "Identifier:\t%s\n", info.Identifier)
	if info.Version != "" {
		_, _ = fmt.Fprintf(w, "Version:\t%s\n", info.Version)
	}
	if info.Author != "" {
		_, _ = fmt.Fprintf(w, "Author:\t%s\n", info.Author)
	}
	_, _ = fmt.Fprintf(w, "Source:\t%s\n", source)
	if len(info.Hooks) > 0 {
		_, _ = fmt.Fprintf(w, "Hooks:\t%s\n", strings.Join(info.Hooks, ", "))
	}
	_, _ = fmt.Fprintf(w, "Enabled:\t%s\n", enabled)
	if info.Description != "" {
		_, _ = fmt.Fprintf(w, "About:\t%s\n", info.Description)
	}
	if info.LastError != nil {
		_, _ = fmt.Fprintf(w, "Error:\t%s\n", info.LastError)
	}
	return w.Flush()
}
