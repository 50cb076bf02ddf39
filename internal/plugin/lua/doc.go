// Package lua wraps the gopher-lua runtime for plugin execution.
//
// Each plugin owns one State: a dedicated interpreter with the full Lua
// standard library open. Plugins run with host privileges; there is no
// sandbox, quota, or timeout in this layer. The trust model is documented
// at the plugin package level.
//
// # State
//
// The State type serializes access to a single interpreter:
//
//	state := lua.NewState()
//	defer state.Close()
//
//	if err := state.DoFile("foo_bar.lua"); err != nil {
//	    return err
//	}
//
// # Conversion
//
// ToGo and ToLua convert between Lua values and plain Go values
// (bool, int64, float64, string, []any, map[string]any):
//
//	lv := lua.ToLua(L, map[string]any{"greeting": "hello"})
//	gv := lua.ToGo(lv)
//
// # Inspection
//
// Inspect executes a script in a throwaway interpreter and validates that
// it defines a plugin table of the expected name with well-typed hook
// fields, returning the metadata the table declares.
package lua
