package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/keel/internal/config"
	"github.com/dshills/keel/internal/logging"
	"github.com/dshills/keel/internal/plugin"
	"github.com/dshills/keel/internal/ui"
)

// newBrowseCommand creates the browse command.
func newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive plugin browser",
		Long: `Open the full-screen plugin browser. Plugins enabled in earlier
sessions start automatically, and the plugin directory is watched for
edits while the browser is open.`,
		Args: cobra.NoArgs,
		RunE: runBrowse,
	}
}

func runBrowse(_ *cobra.Command, _ []string) error {
	cfg := config.Get()

	// The browser owns the terminal, so logs go to a file.
	logFile, err := logging.InitFile(cfg.Log.Level, filepath.Join(config.BaseDir(), "keel.log"))
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	if err := mgr.EnablePersisted(); err != nil {
		log.Warn().Err(err).Msg("some plugins failed to start")
	}

	if cfg.Plugin.Watch {
		watcher, werr := plugin.NewWatcher(mgr, 0, logging.Component("watch"))
		if werr != nil {
			log.Warn().Err(werr).Msg("plugin directory watch unavailable")
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	browser := ui.NewBrowser(mgr,
		ui.WithScreen(screen),
		ui.WithBrowserLogger(logging.Component("ui")),
	)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		<-signals
		browser.Stop()
	}()

	return browser.Run()
}
