// debug_script.go - Lua scripting for the Machine Monitor (step hooks and command scripts)

package main

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// newMachineLua creates a Lua state exposing machine access:
//
//	reg(name) -> value        setreg(name, value)
//	peek(addr [, size])       poke(addr, value [, size])
//	halt()
func newMachineLua(m *Machine) *lua.LState {
	L := lua.NewState()
	L.SetGlobal("reg", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		v, ok := m.Regs.RegisterValue(name)
		if !ok {
			L.ArgError(1, "unknown register "+name)
			return 0
		}
		L.Push(lua.LNumber(v))
		return 1
	}))
	L.SetGlobal("setreg", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		v := uint32(L.CheckInt64(2))
		if !m.Regs.SetRegister(name, v) {
			L.ArgError(1, "unknown register "+name)
		}
		return 0
	}))
	L.SetGlobal("peek", L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckInt64(1))
		size := L.OptInt(2, 4)
		v, ok := m.Mem.ReadWithFault(addr, size)
		if !ok {
			L.RaiseError("peek: bad access of %d bytes at $%08X", size, addr)
			return 0
		}
		L.Push(lua.LNumber(v))
		return 1
	}))
	L.SetGlobal("poke", L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckInt64(1))
		v := uint32(L.CheckInt64(2))
		size := L.OptInt(3, 4)
		if !m.Mem.Write(addr, size, v) {
			L.RaiseError("poke: bad access of %d bytes at $%08X", size, addr)
		}
		return 0
	}))
	L.SetGlobal("halt", L.NewFunction(func(L *lua.LState) int {
		m.Halt()
		return 0
	}))
	return L
}

// LuaStepHook runs a global step() function once per instruction. step may
// return false to halt the machine; any other result keeps it running.
type LuaStepHook struct {
	L    *lua.LState
	step *lua.LFunction
}

// LoadLuaStepHook executes the script at path and binds its step function.
func LoadLuaStepHook(m *Machine, path string) (*LuaStepHook, error) {
	L := newMachineLua(m)
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading step script: %w", err)
	}
	fn, ok := L.GetGlobal("step").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("step script %s does not define step()", path)
	}
	return &LuaStepHook{L: L, step: fn}, nil
}

func (h *LuaStepHook) Step(m *Machine) (bool, error) {
	if err := h.L.CallByParam(lua.P{Fn: h.step, NRet: 1, Protect: true}); err != nil {
		return false, err
	}
	ret := h.L.Get(-1)
	h.L.Pop(1)
	return ret != lua.LFalse && !m.Halted(), nil
}

func (h *LuaStepHook) Close() { h.L.Close() }

// runScriptLocked executes a monitor script. On top of the machine API it
// exposes eval(expr), watch(expr), unwatch(id) and cmd(line). Caller holds
// m.mu.
func (m *MachineMonitor) runScriptLocked(path string) error {
	L := newMachineLua(m.machine)
	defer L.Close()

	L.SetGlobal("eval", L.NewFunction(func(L *lua.LState) int {
		v, err := m.evaluateLocked(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LNumber(v))
		return 1
	}))
	L.SetGlobal("watch", L.NewFunction(func(L *lua.LState) int {
		id, err := m.addWatchpoint(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LNumber(id))
		return 1
	}))
	L.SetGlobal("unwatch", L.NewFunction(func(L *lua.LState) int {
		if err := m.watches.Delete(L.CheckInt(1)); err != nil {
			L.Push(lua.LString(err.Error()))
			return 1
		}
		return 0
	}))
	L.SetGlobal("cmd", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(m.executeLocked(L.CheckString(1))))
		return 1
	}))
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.Get(i).String())
		}
		m.appendOutput(strings.Join(parts, "\t"), colorWhite)
		return 0
	}))

	return L.DoFile(path)
}
