package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lua")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Step hooks
// ---------------------------------------------------------------------------

func TestLuaStepHookDrivesMachine(t *testing.T) {
	path := writeScript(t, `
function step()
  setreg("a0", reg("a0") + 1)
  setreg("pc", reg("pc") + 4)
  if reg("a0") >= 3 then
    return false
  end
  return true
end
`)
	mon, machine := newTestMonitor()
	hook, err := LoadLuaStepHook(machine, path)
	if err != nil {
		t.Fatalf("LoadLuaStepHook: %v", err)
	}
	defer hook.Close()
	machine.SetStepHook(hook)

	mon.ExecuteCommand("c")
	if mon.State() != MonitorHalted {
		t.Fatalf("State() = %v, want halted", mon.State())
	}
	if machine.Steps() != 3 {
		t.Errorf("Steps() = %d, want 3", machine.Steps())
	}
	if machine.Regs.PC() != PMEM_BASE+12 {
		t.Errorf("pc = $%08X, want $%08X", machine.Regs.PC(), PMEM_BASE+12)
	}
}

func TestLuaStepHookHaltAndMemory(t *testing.T) {
	path := writeScript(t, `
function step()
  local n = peek(0x80000100) + 1
  poke(0x80000100, n)
  if n == 4 then halt() end
end
`)
	mon, machine := newTestMonitor()
	hook, err := LoadLuaStepHook(machine, path)
	if err != nil {
		t.Fatalf("LoadLuaStepHook: %v", err)
	}
	defer hook.Close()
	machine.SetStepHook(hook)

	mon.ExecuteCommand("w *0x80000100")
	mon.ExecuteCommand("si")
	expectOutput(t, mon, "Watchpoint 1: *0x80000100", "  New value = $00000001 (1)")

	mon.ExecuteCommand("d *")
	mon.ExecuteCommand("c")
	if !machine.Halted() {
		t.Fatal("halt() from Lua did not halt the machine")
	}
	if got := machine.Mem.Read(PMEM_BASE+0x100, 4); got != 4 {
		t.Errorf("counter = %d, want 4", got)
	}
}

func TestLuaStepHookRuntimeError(t *testing.T) {
	path := writeScript(t, `
function step()
  return peek(0x10)
end
`)
	mon, machine := newTestMonitor()
	hook, err := LoadLuaStepHook(machine, path)
	if err != nil {
		t.Fatalf("LoadLuaStepHook: %v", err)
	}
	defer hook.Close()
	machine.SetStepHook(hook)

	mon.ExecuteCommand("si")
	expectOutput(t, mon, "Step failed at", "peek: bad access of 4 bytes at $00000010")
	if mon.State() != MonitorHalted {
		t.Errorf("State() = %v, want halted", mon.State())
	}
}

func TestLoadLuaStepHookErrors(t *testing.T) {
	_, machine := newTestMonitor()

	if _, err := LoadLuaStepHook(machine, writeScript(t, "x = 1")); err == nil ||
		!strings.Contains(err.Error(), "does not define step()") {
		t.Errorf("missing step() error = %v", err)
	}
	if _, err := LoadLuaStepHook(machine, writeScript(t, "function step(")); err == nil ||
		!strings.Contains(err.Error(), "loading step script") {
		t.Errorf("syntax error = %v", err)
	}
	if _, err := LoadLuaStepHook(machine, filepath.Join(t.TempDir(), "none.lua")); err == nil {
		t.Error("missing file accepted")
	}
}

// ---------------------------------------------------------------------------
// Monitor scripts
// ---------------------------------------------------------------------------

func TestCommandScript(t *testing.T) {
	path := writeScript(t, `
local id = watch("$a0")
print("id", id)
print("v", eval("$a0 + 41"))
poke(0x80000000, 0x1234)
print("peek", peek(0x80000000))
cmd("r a0 7")
local v, err = eval("$nope")
print(err)
local bad, werr = watch("1 +")
print(werr)
`)
	mon, machine := newTestMonitor()
	if mon.ExecuteCommand("script " + path) {
		t.Fatal("script asked to exit")
	}
	expectOutput(t, mon,
		"id\t1",
		"v\t41",
		"peek\t4660",
		"a0 = $00000007",
		"unknown register: $nope",
		"empty expression",
	)
	if v, _ := machine.Regs.RegisterValue("a0"); v != 7 {
		t.Errorf("a0 = %d, want 7", v)
	}
	if mon.watches.Len() != 1 {
		t.Errorf("watchpoints = %d, want 1", mon.watches.Len())
	}
}

func TestCommandScriptUnwatchAndQuit(t *testing.T) {
	path := writeScript(t, `
local id = watch("$sp")
unwatch(id)
print(unwatch(id))
cmd("q")
`)
	mon, _ := newTestMonitor()
	if !mon.ExecuteCommand("script " + path) {
		t.Error("cmd(\"q\") in a script did not exit")
	}
	expectOutput(t, mon, "watchpoint 1: watchpoint not active")
	if mon.watches.Len() != 0 {
		t.Errorf("watchpoints = %d, want 0", mon.watches.Len())
	}
}

func TestCommandScriptFailure(t *testing.T) {
	mon, _ := newTestMonitor()
	mon.ExecuteCommand("script " + writeScript(t, "reg('nope')"))
	expectOutput(t, mon, "Script failed:", "unknown register nope")

	mon.ExecuteCommand("script")
	expectOutput(t, mon, "Usage: script <file.lua>")
}
