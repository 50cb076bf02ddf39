package plugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keel/internal/plugin/api"
	glua "github.com/dshills/keel/internal/plugin/lua"
)

// luaInstance runs one script plugin inside a dedicated interpreter. The
// script's top level already ran by the time the instance exists; lifecycle
// methods dispatch to the optional hooks on the plugin table.
type luaInstance struct {
	identifier string
	class      *lua.LTable
	state      *glua.State
}

// newLuaInstance executes the script at desc.Path and binds its plugin
// table. The keel global is installed before execution so top-level code
// can reach the host.
func newLuaInstance(desc Descriptor, env Env) (*luaInstance, error) {
	st := glua.NewState()
	// No other goroutine can hold the state during construction.
	api.Install(st.LuaState(), env.Surface, env.Settings, env.Log)

	if err := st.DoFile(desc.Path); err != nil {
		st.Close()
		return nil, err
	}

	class, ok := st.GlobalTable(desc.ClassName)
	if !ok {
		st.Close()
		return nil, fmt.Errorf("script does not define table %q", desc.ClassName)
	}

	return &luaInstance{
		identifier: desc.Identifier,
		class:      class,
		state:      st,
	}, nil
}

func (p *luaInstance) Enable() error  { return p.callHook(glua.HookEnable) }
func (p *luaInstance) Disable() error { return p.callHook(glua.HookDisable) }

// Edit invokes on_edit and converts its first result to a Go value. A
// missing hook or a nil result reports no settings surface.
func (p *luaInstance) Edit() (any, error) {
	if p.state.Field(p.class, glua.HookEdit) == lua.LNil {
		return nil, nil
	}
	results, err := p.state.CallField(p.class, glua.HookEdit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 || results[0] == lua.LNil {
		return nil, nil
	}
	return glua.ToGo(results[0]), nil
}

func (p *luaInstance) Close() error {
	return p.state.Close()
}

// callHook invokes an optional lifecycle hook. An absent hook is a no-op;
// a present but non-callable one is an error.
func (p *luaInstance) callHook(hook string) error {
	if p.state.Field(p.class, hook) == lua.LNil {
		return nil
	}
	if _, err := p.state.CallField(p.class, hook); err != nil {
		return err
	}
	return nil
}
