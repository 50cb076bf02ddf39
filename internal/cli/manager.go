package cli

import (
	"fmt"

	"github.com/dshills/keel/internal/config"
	"github.com/dshills/keel/internal/host"
	"github.com/dshills/keel/internal/logging"
	"github.com/dshills/keel/internal/plugin"
)

// openManager builds a plugin manager from the loaded configuration and runs
// the initial directory scan.
func openManager() (*plugin.Manager, error) {
	cfg := config.Get()

	surface := host.NewSurface(cfg.Workspace, logging.Component("host"))
	mgr := plugin.NewManager(cfg.Plugin.Dir, cfg.Settings.Dir,
		plugin.WithLogger(logging.Component("plugin")),
		plugin.WithSurface(surface),
	)
	if err := mgr.Rescan(); err != nil {
		mgr.Close()
		return nil, fmt.Errorf("scan plugin directory: %w", err)
	}
	return mgr, nil
}
