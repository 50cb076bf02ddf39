// Package api defines the capability surface handed to every plugin.
//
// The surface is the complete list of host subsystems a plugin may reach:
// the tab manager, the terminal integration, the file explorer, and a
// back-reference to the plugin manager. The host application implements
// these interfaces; the plugin core passes them through without interpreting
// them. Inside the interpreter the surface appears as the `keel` global with
// one submodule per access interface, plus `keel.settings` scoped to the
// plugin's own namespace and `keel.log` for diagnostics.
package api

// Tab describes one open editor tab.
type Tab struct {
	ID    string
	Path  string
	Title string
}

// TabAccess exposes the host's tab manager.
type TabAccess interface {
	// Open opens path in a tab, focusing it, and returns the tab.
	Open(path string) (Tab, error)
	// Active returns the focused tab, if any.
	Active() (Tab, bool)
	// Tabs lists open tabs in display order.
	Tabs() []Tab
	// Close closes the tab with the given id.
	Close(id string) error
}

// TerminalSession describes one terminal session.
type TerminalSession struct {
	ID       string
	Command  string
	Output   string
	Done     bool
	ExitCode int
}

// TerminalAccess exposes the host's terminal integration.
type TerminalAccess interface {
	// Run starts command in a new session and returns the session id.
	Run(command string) (string, error)
	// Session returns a session by id.
	Session(id string) (TerminalSession, bool)
	// Sessions lists sessions in creation order.
	Sessions() []TerminalSession
}

// ExplorerEntry describes one row of the file explorer.
type ExplorerEntry struct {
	Name string
	Path string
	Dir  bool
}

// ExplorerAccess exposes the host's file explorer.
type ExplorerAccess interface {
	// Root returns the explorer's root directory.
	Root() string
	// List returns the entries directly under dir, which may be relative
	// to the root.
	List(dir string) ([]ExplorerEntry, error)
	// Refresh asks the explorer to re-read its tree.
	Refresh()
}

// PluginSummary is one row of the manager's listing as seen by plugins.
type PluginSummary struct {
	Identifier  string
	DisplayName string
	Enabled     bool
	Failed      bool
}

// ManagerAccess is the back-reference into the plugin manager. It exists so
// a settings surface can list plugins and reopen the plugin list; lifecycle
// calls naming the calling plugin itself are rejected by the manager.
type ManagerAccess interface {
	// List returns the ordered plugin listing.
	List() []PluginSummary
	// Enable enables another plugin.
	Enable(id string) error
	// Disable disables another plugin.
	Disable(id string) error
	// OpenList asks the host UI to open or reopen the plugin list.
	OpenList()
}

// SettingsAccess is a plugin-scoped view of the settings store. Only the
// owning plugin's namespace is reachable through it.
type SettingsAccess interface {
	// Get returns the stored value for key, or def when absent.
	Get(key string, def any) any
	// Set stores and persists one key.
	Set(key string, value any) error
	// All returns a copy of the plugin's settings table.
	All() map[string]any
}

// Surface bundles the host references granted to a plugin at construction.
type Surface struct {
	Tabs     TabAccess
	Terminal TerminalAccess
	Explorer ExplorerAccess
	Plugins  ManagerAccess
}
