package api

import (
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// GlobalName is the name of the table plugins use to reach the host.
const GlobalName = "keel"

// Install builds the `keel` global in L from the given surface and the
// plugin's own settings view. A nil accessor on the surface installs a
// module whose calls raise, so a misconfigured host fails loudly instead of
// silently returning nothing.
func Install(L *lua.LState, surface Surface, settings SettingsAccess, log zerolog.Logger) {
	root := L.NewTable()

	root.RawSetString("tabs", L.SetFuncs(L.NewTable(), tabsFuncs(surface.Tabs)))
	root.RawSetString("terminal", L.SetFuncs(L.NewTable(), terminalFuncs(surface.Terminal)))
	root.RawSetString("explorer", L.SetFuncs(L.NewTable(), explorerFuncs(surface.Explorer)))
	root.RawSetString("plugins", L.SetFuncs(L.NewTable(), pluginsFuncs(surface.Plugins)))
	root.RawSetString("settings", L.SetFuncs(L.NewTable(), settingsFuncs(settings)))
	root.RawSetString("log", L.SetFuncs(L.NewTable(), logFuncs(log)))

	L.SetGlobal(GlobalName, root)
}

// InstallInspection installs the same shape with null implementations, for
// executing a script only to inspect its plugin table. Top-level calls into
// the host succeed and do nothing.
func InstallInspection(L *lua.LState) {
	Install(L, NullSurface(), NullSettings(), zerolog.Nop())
}

// raiseUnavailable reports a capability the host did not supply.
func raiseUnavailable(L *lua.LState, what string) int {
	L.RaiseError("%s access not supplied by host", what)
	return 0
}

func logFuncs(log zerolog.Logger) map[string]lua.LGFunction {
	emit := func(level zerolog.Level) lua.LGFunction {
		return func(L *lua.LState) int {
			log.WithLevel(level).Msg(L.CheckString(1))
			return 0
		}
	}
	return map[string]lua.LGFunction{
		"debug": emit(zerolog.DebugLevel),
		"info":  emit(zerolog.InfoLevel),
		"warn":  emit(zerolog.WarnLevel),
		"error": emit(zerolog.ErrorLevel),
	}
}
