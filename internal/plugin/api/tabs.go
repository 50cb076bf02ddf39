package api

import (
	lua "github.com/yuin/gopher-lua"
)

func tabToLua(L *lua.LState, tab Tab) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(tab.ID))
	t.RawSetString("path", lua.LString(tab.Path))
	t.RawSetString("title", lua.LString(tab.Title))
	return t
}

// tabsFuncs exposes TabAccess as the keel.tabs module:
//
//	keel.tabs.open(path) -> tab
//	keel.tabs.active() -> tab | nil
//	keel.tabs.list() -> {tab, ...}
//	keel.tabs.close(id)
func tabsFuncs(tabs TabAccess) map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"open": func(L *lua.LState) int {
			if tabs == nil {
				return raiseUnavailable(L, "tab")
			}
			tab, err := tabs.Open(L.CheckString(1))
			if err != nil {
				L.RaiseError("open tab: %s", err.Error())
				return 0
			}
			L.Push(tabToLua(L, tab))
			return 1
		},
		"active": func(L *lua.LState) int {
			if tabs == nil {
				return raiseUnavailable(L, "tab")
			}
			tab, ok := tabs.Active()
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(tabToLua(L, tab))
			return 1
		},
		"list": func(L *lua.LState) int {
			if tabs == nil {
				return raiseUnavailable(L, "tab")
			}
			out := L.NewTable()
			for i, tab := range tabs.Tabs() {
				out.RawSetInt(i+1, tabToLua(L, tab))
			}
			L.Push(out)
			return 1
		},
		"close": func(L *lua.LState) int {
			if tabs == nil {
				return raiseUnavailable(L, "tab")
			}
			if err := tabs.Close(L.CheckString(1)); err != nil {
				L.RaiseError("close tab: %s", err.Error())
			}
			return 0
		},
	}
}
