package api

import (
	glua "github.com/dshills/keel/internal/plugin/lua"
	lua "github.com/yuin/gopher-lua"
)

// settingsFuncs exposes the plugin's own settings view as keel.settings:
//
//	keel.settings.get(key, default) -> value
//	keel.settings.set(key, value)
//	keel.settings.all() -> table
//
// The view is bound to the owning plugin's identifier; no other namespace is
// reachable.
func settingsFuncs(settings SettingsAccess) map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"get": func(L *lua.LState) int {
			if settings == nil {
				return raiseUnavailable(L, "settings")
			}
			key := L.CheckString(1)
			def := L.Get(2)

			v := settings.Get(key, nil)
			if v == nil {
				// Hand the caller's default back untouched.
				L.Push(def)
				return 1
			}
			L.Push(glua.ToLua(L, v))
			return 1
		},
		"set": func(L *lua.LState) int {
			if settings == nil {
				return raiseUnavailable(L, "settings")
			}
			key := L.CheckString(1)
			value := glua.ToGo(L.Get(2))
			if err := settings.Set(key, value); err != nil {
				L.RaiseError("persist setting %q: %s", key, err.Error())
			}
			return 0
		},
		"all": func(L *lua.LState) int {
			if settings == nil {
				return raiseUnavailable(L, "settings")
			}
			L.Push(glua.ToLua(L, settings.All()))
			return 1
		},
	}
}
