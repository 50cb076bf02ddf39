package api

// NullSurface returns a surface whose accessors succeed and do nothing.
// Used when inspecting scripts and in tests that exercise plugins without a
// host application: a script's top-level host calls run inert instead of
// failing it.
func NullSurface() Surface {
	return Surface{
		Tabs:     nullTabs{},
		Terminal: nullTerminal{},
		Explorer: nullExplorer{},
		Plugins:  nullManager{},
	}
}

// NullSettings returns a settings view that reads defaults and drops writes.
func NullSettings() SettingsAccess {
	return nullSettings{}
}

type nullTabs struct{}

func (nullTabs) Open(string) (Tab, error) { return Tab{}, nil }
func (nullTabs) Active() (Tab, bool)      { return Tab{}, false }
func (nullTabs) Tabs() []Tab              { return nil }
func (nullTabs) Close(string) error       { return nil }

type nullTerminal struct{}

func (nullTerminal) Run(string) (string, error)             { return "", nil }
func (nullTerminal) Session(string) (TerminalSession, bool) { return TerminalSession{}, false }
func (nullTerminal) Sessions() []TerminalSession            { return nil }

type nullExplorer struct{}

func (nullExplorer) Root() string                         { return "" }
func (nullExplorer) List(string) ([]ExplorerEntry, error) { return nil, nil }
func (nullExplorer) Refresh()                             {}

type nullManager struct{}

func (nullManager) List() []PluginSummary { return nil }
func (nullManager) Enable(string) error   { return nil }
func (nullManager) Disable(string) error  { return nil }
func (nullManager) OpenList()             {}

type nullSettings struct{}

func (nullSettings) Get(_ string, def any) any { return def }
func (nullSettings) Set(string, any) error     { return nil }
func (nullSettings) All() map[string]any       { return map[string]any{} }
