package plugin

import (
	"github.com/rs/zerolog"

	"github.com/dshills/keel/internal/plugin/api"
)

// Instance is a live plugin. The manager holds at most one instance per
// record and serializes lifecycle calls per identifier, so implementations
// do not need their own locking against the manager.
type Instance interface {
	// Enable runs the plugin's activation hook.
	Enable() error

	// Disable runs the plugin's deactivation hook.
	Disable() error

	// Edit asks the plugin for its settings surface. Returning (nil, nil)
	// means the plugin offers none.
	Edit() (any, error)

	// Close releases the instance's resources. The instance is not used
	// again afterwards.
	Close() error
}

// Env carries everything a plugin receives at construction: the editor
// capability surface, a settings view scoped to its own identifier, and a
// logger tagged with the identifier.
type Env struct {
	Surface  api.Surface
	Settings api.SettingsAccess
	Log      zerolog.Logger
}

// Constructor builds a native plugin instance. Construction failures are
// recorded as load errors, exactly like a script that fails to execute.
type Constructor func(env Env) (Instance, error)

// Funcs adapts plain functions to Instance. Nil fields are no-ops; a nil
// EditFunc reports no settings surface.
type Funcs struct {
	EnableFunc  func() error
	DisableFunc func() error
	EditFunc    func() (any, error)
	CloseFunc   func() error
}

func (f *Funcs) Enable() error {
	if f.EnableFunc == nil {
		return nil
	}
	return f.EnableFunc()
}

func (f *Funcs) Disable() error {
	if f.DisableFunc == nil {
		return nil
	}
	return f.DisableFunc()
}

func (f *Funcs) Edit() (any, error) {
	if f.EditFunc == nil {
		return nil, nil
	}
	return f.EditFunc()
}

func (f *Funcs) Close() error {
	if f.CloseFunc == nil {
		return nil
	}
	return f.CloseFunc()
}
