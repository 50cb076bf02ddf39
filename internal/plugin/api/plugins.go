package api

import (
	lua "github.com/yuin/gopher-lua"
)

// pluginsFuncs exposes ManagerAccess as the keel.plugins module:
//
//	keel.plugins.list() -> {{identifier=, display_name=, enabled=, failed=}, ...}
//	keel.plugins.enable(id)
//	keel.plugins.disable(id)
//	keel.plugins.open_list()
func pluginsFuncs(mgr ManagerAccess) map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"list": func(L *lua.LState) int {
			if mgr == nil {
				return raiseUnavailable(L, "plugin manager")
			}
			out := L.NewTable()
			for i, s := range mgr.List() {
				row := L.NewTable()
				row.RawSetString("identifier", lua.LString(s.Identifier))
				row.RawSetString("display_name", lua.LString(s.DisplayName))
				row.RawSetString("enabled", lua.LBool(s.Enabled))
				row.RawSetString("failed", lua.LBool(s.Failed))
				out.RawSetInt(i+1, row)
			}
			L.Push(out)
			return 1
		},
		"enable": func(L *lua.LState) int {
			if mgr == nil {
				return raiseUnavailable(L, "plugin manager")
			}
			if err := mgr.Enable(L.CheckString(1)); err != nil {
				L.RaiseError("enable plugin: %s", err.Error())
			}
			return 0
		},
		"disable": func(L *lua.LState) int {
			if mgr == nil {
				return raiseUnavailable(L, "plugin manager")
			}
			if err := mgr.Disable(L.CheckString(1)); err != nil {
				L.RaiseError("disable plugin: %s", err.Error())
			}
			return 0
		},
		"open_list": func(L *lua.LState) int {
			if mgr == nil {
				return raiseUnavailable(L, "plugin manager")
			}
			mgr.OpenList()
			return 0
		},
	}
}
