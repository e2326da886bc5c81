// debug_monitor.go - Machine Monitor core (command state, scrollback, stepping)

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"io"
	"sync"
)

// MonitorState tracks what the monitored machine is doing.
type MonitorState int

const (
	MonitorStopped MonitorState = iota
	MonitorRunning
	MonitorHalted
	MonitorQuit
)

func (s MonitorState) String() string {
	switch s {
	case MonitorStopped:
		return "stopped"
	case MonitorRunning:
		return "running"
	case MonitorHalted:
		return "halted"
	case MonitorQuit:
		return "quit"
	}
	return "unknown"
}

// OutputLine holds styled text for the monitor scrollback buffer.
type OutputLine struct {
	Text  string
	Color uint32 // RGBA packed
}

// MachineMonitor is the core debugger state machine.
type MachineMonitor struct {
	mu    sync.Mutex
	state MonitorState

	machine *Machine
	eval    *Evaluator
	watches *WatchpointPool

	outputLines  []OutputLine
	maxOutput    int
	scrollOffset int
	onOutput     func(OutputLine)
	logOut       io.Writer

	inputLine  []byte
	cursorPos  int
	history    []string
	historyIdx int

	maxSteps   uint64
	onWatchHit func([]WatchpointHit)

	prevRegs map[string]uint64 // for change highlighting
}

// NewMachineMonitor creates a monitor bound to a machine.
func NewMachineMonitor(machine *Machine) *MachineMonitor {
	m := &MachineMonitor{
		state:     MonitorStopped,
		machine:   machine,
		eval:      NewEvaluator(machine.Regs, machine.Mem),
		watches:   NewWatchpointPool(),
		maxOutput: 500,
		maxSteps:  1 << 24,
		prevRegs:  make(map[string]uint64),
	}
	m.saveCurrentRegs()
	return m
}

// SetOutputCallback registers fn to receive every line appended to the
// scrollback. fn runs with the monitor locked and must not call back in.
func (m *MachineMonitor) SetOutputCallback(fn func(OutputLine)) {
	m.mu.Lock()
	m.onOutput = fn
	m.mu.Unlock()
}

// AttachOutput replays the current scrollback into fn and then registers it
// as the output callback, so a late front end still sees earlier lines.
func (m *MachineMonitor) AttachOutput(fn func(OutputLine)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range m.outputLines {
		fn(line)
	}
	m.onOutput = fn
}

// SetLogWriter tees scrollback text into w (nil disables).
func (m *MachineMonitor) SetLogWriter(w io.Writer) {
	m.mu.Lock()
	m.logOut = w
	m.mu.Unlock()
}

// SetWatchHitCallback registers fn to run whenever a step reports changed
// watchpoints.
func (m *MachineMonitor) SetWatchHitCallback(fn func([]WatchpointHit)) {
	m.mu.Lock()
	m.onWatchHit = fn
	m.mu.Unlock()
}

// SetMaxSteps bounds a single continue command.
func (m *MachineMonitor) SetMaxSteps(n uint64) {
	m.mu.Lock()
	m.maxSteps = n
	m.mu.Unlock()
}

// State returns the current monitor state.
func (m *MachineMonitor) State() MonitorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Output returns a copy of the scrollback.
func (m *MachineMonitor) Output() []OutputLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OutputLine(nil), m.outputLines...)
}

// appendOutput adds a line to the scrollback buffer.
func (m *MachineMonitor) appendOutput(text string, color uint32) {
	line := OutputLine{Text: text, Color: color}
	m.outputLines = append(m.outputLines, line)
	if len(m.outputLines) > m.maxOutput {
		m.outputLines = m.outputLines[len(m.outputLines)-m.maxOutput:]
	}
	if m.logOut != nil {
		fmt.Fprintln(m.logOut, text)
	}
	if m.onOutput != nil {
		m.onOutput(line)
	}
}

// saveCurrentRegs snapshots the registers for change detection.
func (m *MachineMonitor) saveCurrentRegs() {
	clear(m.prevRegs)
	for _, r := range m.machine.GetRegisters() {
		m.prevRegs[r.Name] = r.Value
	}
}

// evaluateLocked runs expr through the expression engine and warns when the
// evaluation read outside guest memory. Caller holds m.mu.
func (m *MachineMonitor) evaluateLocked(expr string) (uint32, error) {
	before := m.machine.Mem.Faults()
	v, err := m.eval.Evaluate(expr)
	m.warnFaults(before)
	return v, err
}

// warnFaults reports reads outside guest memory since the fault counter
// stood at before. Those reads yield 0 rather than failing.
func (m *MachineMonitor) warnFaults(before uint64) {
	if n := m.machine.Mem.Faults() - before; n > 0 {
		m.appendOutput(fmt.Sprintf("Warning: %d read(s) outside guest memory returned 0", n), colorYellow)
	}
}

// addWatchpoint evaluates expr once and registers it with that value.
func (m *MachineMonitor) addWatchpoint(expr string) (int, error) {
	v, err := m.evaluateLocked(expr)
	if err != nil {
		return 0, err
	}
	return m.watches.Create(expr, v)
}

// stepLocked executes up to n instructions, scanning watchpoints after each.
// It stops early on a watchpoint hit, a halt, or a step error and returns
// the number of instructions executed. Caller holds m.mu.
func (m *MachineMonitor) stepLocked(n uint64) uint64 {
	if m.machine.Halted() {
		m.state = MonitorHalted
		m.appendOutput("Machine has halted, load a snapshot or restart", colorRed)
		return 0
	}

	m.state = MonitorRunning
	var done uint64
	for done < n {
		if err := m.machine.Step(); err != nil {
			m.state = MonitorHalted
			m.appendOutput(fmt.Sprintf("Step failed at $%08X: %v", m.machine.Regs.PC(), err), colorRed)
			return done
		}
		done++

		before := m.machine.Mem.Faults()
		hits := m.watches.Scan(m.eval)
		m.warnFaults(before)
		if len(hits) > 0 {
			m.reportHits(hits)
			m.state = MonitorStopped
			return done
		}
		if m.machine.Halted() {
			m.state = MonitorHalted
			m.appendOutput(fmt.Sprintf("Machine halted at $%08X after %d step(s)", m.machine.Regs.PC(), m.machine.Steps()), colorYellow)
			return done
		}
	}
	m.state = MonitorStopped
	return done
}

func (m *MachineMonitor) reportHits(hits []WatchpointHit) {
	for _, h := range hits {
		m.appendOutput(fmt.Sprintf("Watchpoint %d: %s", h.ID, h.Expr), colorGreen)
		m.appendOutput(fmt.Sprintf("  Old value = $%08X (%d)", h.OldValue, h.OldValue), colorGreen)
		m.appendOutput(fmt.Sprintf("  New value = $%08X (%d)", h.NewValue, h.NewValue), colorGreen)
	}
	if m.onWatchHit != nil {
		m.onWatchHit(hits)
	}
}

// Color constants (RGBA packed as 0xRRGGBBAA)
const (
	colorWhite  = 0xFFFFFFFF
	colorCyan   = 0x64C8FFFF
	colorYellow = 0xFFFF55FF
	colorRed    = 0xFF5555FF
	colorGreen  = 0x55FF55FF
	colorDim    = 0x5555FFFF
)
