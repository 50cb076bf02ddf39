package api

import (
	lua "github.com/yuin/gopher-lua"
)

func sessionToLua(L *lua.LState, s TerminalSession) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(s.ID))
	t.RawSetString("command", lua.LString(s.Command))
	t.RawSetString("output", lua.LString(s.Output))
	t.RawSetString("done", lua.LBool(s.Done))
	t.RawSetString("exit_code", lua.LNumber(s.ExitCode))
	return t
}

// terminalFuncs exposes TerminalAccess as the keel.terminal module:
//
//	keel.terminal.run(command) -> session id
//	keel.terminal.session(id) -> session | nil
//	keel.terminal.sessions() -> {session, ...}
func terminalFuncs(term TerminalAccess) map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"run": func(L *lua.LState) int {
			if term == nil {
				return raiseUnavailable(L, "terminal")
			}
			id, err := term.Run(L.CheckString(1))
			if err != nil {
				L.RaiseError("run command: %s", err.Error())
				return 0
			}
			L.Push(lua.LString(id))
			return 1
		},
		"session": func(L *lua.LState) int {
			if term == nil {
				return raiseUnavailable(L, "terminal")
			}
			s, ok := term.Session(L.CheckString(1))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(sessionToLua(L, s))
			return 1
		},
		"sessions": func(L *lua.LState) int {
			if term == nil {
				return raiseUnavailable(L, "terminal")
			}
			out := L.NewTable()
			for i, s := range term.Sessions() {
				out.RawSetInt(i+1, sessionToLua(L, s))
			}
			L.Push(out)
			return 1
		},
	}
}
