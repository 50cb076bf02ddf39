package api

import (
	lua "github.com/yuin/gopher-lua"
)

// explorerFuncs exposes ExplorerAccess as the keel.explorer module:
//
//	keel.explorer.root() -> path
//	keel.explorer.list(dir) -> {{name=, path=, dir=}, ...}
//	keel.explorer.refresh()
func explorerFuncs(explorer ExplorerAccess) map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"root": func(L *lua.LState) int {
			if explorer == nil {
				return raiseUnavailable(L, "explorer")
			}
			L.Push(lua.LString(explorer.Root()))
			return 1
		},
		"list": func(L *lua.LState) int {
			if explorer == nil {
				return raiseUnavailable(L, "explorer")
			}
			entries, err := explorer.List(L.OptString(1, ""))
			if err != nil {
				L.RaiseError("list explorer entries: %s", err.Error())
				return 0
			}
			out := L.NewTable()
			for i, e := range entries {
				row := L.NewTable()
				row.RawSetString("name", lua.LString(e.Name))
				row.RawSetString("path", lua.LString(e.Path))
				row.RawSetString("dir", lua.LBool(e.Dir))
				out.RawSetInt(i+1, row)
			}
			L.Push(out)
			return 1
		},
		"refresh": func(L *lua.LState) int {
			if explorer == nil {
				return raiseUnavailable(L, "explorer")
			}
			explorer.Refresh()
			return 0
		},
	}
}
