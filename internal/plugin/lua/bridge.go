package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ToGo converts a Lua value to a plain Go value: bool, int64, float64,
// string, []any, map[string]any, or nil. Functions and circular table
// references convert to nil.
func ToGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	if lv == nil {
		return nil
	}

	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // break circular reference
		}
		visited[v] = true
		return tableToGo(v, visited)
	case *lua.LNilType:
		return nil
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo converts a Lua table to a Go slice when its keys form a
// contiguous 1..n array, otherwise to a string-keyed map.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	maxN := 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			n := int(kn)
			if float64(n) == float64(kn) && n > 0 {
				if n > maxN {
					maxN = n
				}
				return
			}
		}
		isArray = false
	})
	if count != maxN {
		isArray = false
	}

	if isArray && maxN > 0 {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = toGoVisited(v, visited)
	})
	return m
}

// ToLua converts a plain Go value to a Lua value owned by L.
func ToLua(L *lua.LState, v any) lua.LValue {
	if v == nil {
		return lua.LNil
	}

	switch val := v.(type) {
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case []any:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, ToLua(L, item))
		}
		return t
	case []string:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, lua.LString(item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, ToLua(L, item))
		}
		return t
	case map[string]string:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, lua.LString(item))
		}
		return t
	case lua.LValue:
		return val
	default:
		ud := L.NewUserData()
		ud.Value = v
		return ud
	}
}

// TableString returns a string field of a Lua table.
func TableString(t *lua.LTable, key string) (string, bool) {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

// TableFunc returns a function field of a Lua table.
func TableFunc(t *lua.LTable, key string) (*lua.LFunction, bool) {
	if f, ok := t.RawGetString(key).(*lua.LFunction); ok {
		return f, true
	}
	return nil, false
}

// TableTable returns a table field of a Lua table.
func TableTable(t *lua.LTable, key string) (*lua.LTable, bool) {
	if inner, ok := t.RawGetString(key).(*lua.LTable); ok {
		return inner, true
	}
	return nil, false
}
