package lua

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a gopher-lua interpreter owned by a single plugin.
//
// IMPORTANT: gopher-lua's LState is not goroutine-safe. The mutex serializes
// access from Go code; Lua execution itself is single-threaded. Callbacks
// registered through RegisterModule run inside an already-held lock, so they
// must not call back into the same State.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	closed bool
}

// NewState creates a Lua state with the full standard library open. Plugins
// execute with host privileges; nothing is withheld.
func NewState() *State {
	return &State{L: lua.NewState()}
}

// DoFile executes a Lua file. The call blocks until completion or error.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.doWithRecovery(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua chunk. The call blocks until completion or error.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// doWithRecovery executes a function with panic recovery. gopher-lua raises
// Go panics for some runtime faults; a plugin fault must surface as an error.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Global returns a global variable value.
func (s *State) Global(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}

	return s.L.GetGlobal(name)
}

// GlobalTable returns the global of the given name if it is a table.
func (s *State) GlobalTable(name string) (*lua.LTable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false
	}

	t, ok := s.L.GetGlobal(name).(*lua.LTable)
	return t, ok
}

// SetGlobal assigns a global in the interpreter.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.L.SetGlobal(name, value)
}

// CallField calls tbl[field] as a method, passing tbl itself as the first
// argument. Returns an empty slice (not nil) when the function returns no
// values.
func (s *State) CallField(tbl *lua.LTable, field string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fnVal := tbl.RawGetString(field)
	if fnVal == lua.LNil {
		return nil, fmt.Errorf("field %q not found", field)
	}
	fn, ok := fnVal.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("field %q: %w (got %s)", field, ErrNotFunction, fnVal.Type())
	}

	// Record stack top before pushing anything so only values produced by
	// this call are collected.
	stackTop := s.L.GetTop()

	s.L.Push(fn)
	s.L.Push(tbl)
	for _, arg := range args {
		s.L.Push(arg)
	}

	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("lua panic: %v", r)
			}
		}()
		callErr = s.L.PCall(len(args)+1, lua.MultRet, nil)
	}()

	if callErr != nil {
		// PCall unwinds its own arguments on failure; nothing to pop.
		return nil, callErr
	}

	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)

	return results, nil
}

// Field returns tbl[field] without invoking metamethods.
func (s *State) Field(tbl *lua.LTable, field string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}

	return tbl.RawGetString(field)
}

// HasField reports whether tbl[field] is a callable function.
func (s *State) HasField(tbl *lua.LTable, field string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	_, ok := tbl.RawGetString(field).(*lua.LFunction)
	return ok
}

// RegisterModule installs a table of Go functions as a global module.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
}

// LuaState exposes the raw gopher-lua state.
//
// WARNING: direct access bypasses the mutex. The caller owns synchronization.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// IsClosed reports whether Close has run.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the interpreter. After Close every other method returns
// ErrStateClosed or a zero value.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
