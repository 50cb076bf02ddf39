package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Hook field names a plugin table may define. Construction is the implicit
// fourth hook: executing the file's top level.
const (
	HookEnable  = "on_enable"
	HookDisable = "on_disable"
	HookEdit    = "on_edit"
)

// HookNames lists the optional hook fields in invocation order.
var HookNames = []string{HookEnable, HookDisable, HookEdit}

// Meta is the metadata a plugin table declares about itself.
type Meta struct {
	DisplayName string
	Description string
	Version     string
	Author      string
	Hooks       []string
}

// Inspect executes the script at path in a throwaway interpreter and checks
// that it defines a global table named className whose hook fields, when
// present, are functions. prepare, when non-nil, runs before the script to
// install whatever globals plugins expect at top level. The interpreter is
// discarded; callers construct a fresh state to actually load the plugin.
func Inspect(path, className string, prepare func(L *lua.LState)) (Meta, error) {
	st := NewState()
	defer st.Close()

	if prepare != nil {
		prepare(st.LuaState())
	}

	if err := st.DoFile(path); err != nil {
		return Meta{}, fmt.Errorf("execute: %w", err)
	}

	gv := st.Global(className)
	if gv == lua.LNil {
		return Meta{}, fmt.Errorf("script defines no global %q", className)
	}
	tbl, ok := gv.(*lua.LTable)
	if !ok {
		return Meta{}, fmt.Errorf("global %q is not a table (got %s)", className, gv.Type())
	}

	meta := Meta{}
	for _, hook := range HookNames {
		hv := tbl.RawGetString(hook)
		if hv == lua.LNil {
			continue
		}
		if _, isFn := hv.(*lua.LFunction); !isFn {
			return Meta{}, fmt.Errorf("hook %q: %w (got %s)", hook, ErrNotFunction, hv.Type())
		}
		meta.Hooks = append(meta.Hooks, hook)
	}

	meta.DisplayName, _ = TableString(tbl, "display_name")
	meta.Description, _ = TableString(tbl, "description")
	meta.Version, _ = TableString(tbl, "version")
	meta.Author, _ = TableString(tbl, "author")

	return meta, nil
}
