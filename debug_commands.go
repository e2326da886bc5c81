// debug_commands.go - Command parser and handlers for Machine Monitor

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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MonitorCommand is a parsed command with name and arguments.
type MonitorCommand struct {
	Name string
	Args []string
}

// ParseCommand splits a raw input line into a command name and arguments.
func ParseCommand(input string) MonitorCommand {
	input = strings.TrimSpace(input)
	if input == "" {
		return MonitorCommand{}
	}
	parts := strings.Fields(input)
	return MonitorCommand{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
}

// exprArg rejoins the arguments from i on, so expressions may contain spaces.
func (c MonitorCommand) exprArg(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

// ParseCount parses a decimal or 0x-prefixed hex count.
func ParseCount(s string) (uint64, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	return v, err == nil
}

// ExecuteCommand dispatches one input line. Returns true if the monitor
// should exit.
func (m *MachineMonitor) ExecuteCommand(input string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeLocked(input)
}

func (m *MachineMonitor) executeLocked(input string) bool {
	cmd := ParseCommand(input)
	if cmd.Name == "" {
		return false
	}

	// Add to history
	if len(m.history) == 0 || m.history[len(m.history)-1] != input {
		m.history = append(m.history, input)
	}
	m.historyIdx = len(m.history)

	switch cmd.Name {
	case "c":
		return m.cmdContinue(cmd)
	case "q":
		return m.cmdQuit(cmd)
	case "si":
		return m.cmdStep(cmd)
	case "info":
		return m.cmdInfo(cmd)
	case "x":
		return m.cmdExamine(cmd)
	case "p":
		return m.cmdPrint(cmd)
	case "w":
		return m.cmdWatch(cmd)
	case "d":
		return m.cmdDelete(cmd)
	case "r":
		return m.cmdSetRegister(cmd)
	case "ss":
		return m.cmdSaveState(cmd)
	case "sl":
		return m.cmdLoadState(cmd)
	case "dt":
		return m.cmdDiffTest(cmd)
	case "script":
		return m.cmdScript(cmd)
	case "?", "help":
		return m.cmdHelp(cmd)
	default:
		m.appendOutput(fmt.Sprintf("Unknown command: %s", cmd.Name), colorRed)
		return false
	}
}

// reportError prints an evaluation or lexing failure of expr, with a caret
// under the offending column for lexer errors and the offending tokens for
// evaluation errors.
func (m *MachineMonitor) reportError(prefix, expr string, err error) {
	m.appendOutput(fmt.Sprintf("%s: %v", prefix, err), colorRed)
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		for _, line := range strings.Split(lexErr.Caret(), "\n") {
			m.appendOutput("  "+line, colorRed)
		}
		return
	}
	var evalErr *EvalError
	if errors.As(err, &evalErr) && evalErr.Name == "" {
		if near := tokenRangeSource(expr, evalErr.Lo, evalErr.Hi); near != "" {
			m.appendOutput("  near: "+near, colorRed)
		}
	}
}

// tokenRangeSource re-lexes expr and renders tokens lo..hi in source form.
// It returns "" when the range does not fit the token list.
func tokenRangeSource(expr string, lo, hi int) string {
	toks, err := Tokenize(expr)
	if err != nil || lo < 0 || hi < lo || hi >= len(toks) {
		return ""
	}
	parts := make([]string, 0, hi-lo+1)
	for _, t := range toks[lo : hi+1] {
		parts = append(parts, t.Source())
	}
	return strings.Join(parts, " ")
}

func (m *MachineMonitor) cmdContinue(_ MonitorCommand) bool {
	done := m.stepLocked(m.maxSteps)
	if m.state == MonitorStopped && done == m.maxSteps {
		m.appendOutput(fmt.Sprintf("Stopped after %d step(s) without a watchpoint hit", done), colorYellow)
	}
	m.saveCurrentRegs()
	return false
}

func (m *MachineMonitor) cmdQuit(_ MonitorCommand) bool {
	m.state = MonitorQuit
	return true
}

func (m *MachineMonitor) cmdStep(cmd MonitorCommand) bool {
	count := uint64(1)
	if len(cmd.Args) >= 1 {
		v, ok := ParseCount(cmd.Args[0])
		if !ok || v == 0 {
			m.appendOutput(fmt.Sprintf("Invalid step count: %s", cmd.Args[0]), colorRed)
			return false
		}
		count = v
	}

	done := m.stepLocked(count)
	m.appendOutput(fmt.Sprintf("Step: %d instruction(s)", done), colorCyan)

	// Show changed registers
	for _, r := range m.machine.GetRegisters() {
		if prev, ok := m.prevRegs[r.Name]; ok && prev != r.Value {
			m.appendOutput(fmt.Sprintf("  %s: $%08X -> $%08X", r.Name, prev, r.Value), colorGreen)
		}
	}
	m.saveCurrentRegs()
	m.appendOutput(fmt.Sprintf("> $%08X", m.machine.Regs.PC()), colorYellow)
	return false
}

func (m *MachineMonitor) cmdInfo(cmd MonitorCommand) bool {
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: info r | info w", colorRed)
		return false
	}
	switch strings.ToLower(cmd.Args[0]) {
	case "r":
		m.showRegisters()
	case "w":
		m.showWatchpoints()
	default:
		m.appendOutput(fmt.Sprintf("Unknown info subcommand: %s", cmd.Args[0]), colorRed)
	}
	return false
}

func (m *MachineMonitor) showRegisters() {
	regs := m.machine.GetRegisters()
	for i := 0; i < len(regs); i += 4 {
		var sb strings.Builder
		for _, r := range regs[i:min(i+4, len(regs))] {
			fmt.Fprintf(&sb, "%-4s $%08X  ", r.Name, r.Value)
		}
		color := uint32(colorWhite)
		for _, r := range regs[i:min(i+4, len(regs))] {
			if prev, ok := m.prevRegs[r.Name]; ok && prev != r.Value {
				color = colorGreen
			}
		}
		m.appendOutput(strings.TrimRight(sb.String(), " "), color)
	}
}

func (m *MachineMonitor) showWatchpoints() {
	wps := m.watches.List()
	if len(wps) == 0 {
		m.appendOutput("No watchpoints.", colorCyan)
		return
	}
	m.appendOutput(fmt.Sprintf("%-4s %-20s %-12s %-12s", "NO", "EXPR", "Value", "Old-Value"), colorCyan)
	for _, wp := range wps {
		m.appendOutput(fmt.Sprintf("%-4d %-20s $%-11X $%-11X", wp.ID, wp.Expr, wp.Value, wp.OldValue), colorWhite)
	}
}

// maxExamineWords bounds x so one dump cannot flood the scrollback.
const maxExamineWords = 1024

func (m *MachineMonitor) cmdExamine(cmd MonitorCommand) bool {
	if len(cmd.Args) < 2 {
		m.appendOutput("Usage: x <count> <expr>", colorRed)
		return false
	}
	count, ok := ParseCount(cmd.Args[0])
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid count: %s", cmd.Args[0]), colorRed)
		return false
	}
	if count > maxExamineWords {
		m.appendOutput(fmt.Sprintf("Count too large: %d (max %d)", count, maxExamineWords), colorRed)
		return false
	}
	expr := cmd.exprArg(1)
	addr, err := m.evaluateLocked(expr)
	if err != nil {
		m.reportError("Invalid address", expr, err)
		return false
	}

	for i := uint64(0); i < count; i += 4 {
		var sb strings.Builder
		fmt.Fprintf(&sb, "$%08X:", addr)
		for j := i; j < min(i+4, count); j++ {
			v, ok := m.machine.Mem.ReadWithFault(addr, 4)
			if !ok {
				sb.WriteString(" ????????")
			} else {
				fmt.Fprintf(&sb, " %08X", v)
			}
			addr += 4
		}
		m.appendOutput(sb.String(), colorWhite)
	}
	return false
}

func (m *MachineMonitor) cmdPrint(cmd MonitorCommand) bool {
	expr := cmd.exprArg(0)
	if expr == "" {
		m.appendOutput("Usage: p <expr>", colorRed)
		return false
	}
	v, err := m.evaluateLocked(expr)
	if err != nil {
		m.reportError("Bad expression", expr, err)
		return false
	}
	m.appendOutput(fmt.Sprintf("%s = $%08X (%d)", expr, v, v), colorCyan)
	return false
}

func (m *MachineMonitor) cmdWatch(cmd MonitorCommand) bool {
	expr := cmd.exprArg(0)
	if expr == "" {
		m.appendOutput("Usage: w <expr>", colorRed)
		return false
	}
	id, err := m.addWatchpoint(expr)
	if err != nil {
		m.reportError("Cannot watch", expr, err)
		return false
	}
	m.appendOutput(fmt.Sprintf("Watchpoint %d: %s", id, expr), colorCyan)
	return false
}

func (m *MachineMonitor) cmdDelete(cmd MonitorCommand) bool {
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: d <id|*>", colorRed)
		return false
	}

	if cmd.Args[0] == "*" {
		n := m.watches.DeleteAll()
		m.appendOutput(fmt.Sprintf("%d watchpoint(s) deleted", n), colorCyan)
		return false
	}

	id, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		m.appendOutput(fmt.Sprintf("Invalid watchpoint id: %s", cmd.Args[0]), colorRed)
		return false
	}
	if err := m.watches.Delete(id); err != nil {
		m.appendOutput(err.Error(), colorRed)
		return false
	}
	m.appendOutput(fmt.Sprintf("Watchpoint %d deleted", id), colorCyan)
	return false
}

func (m *MachineMonitor) cmdSetRegister(cmd MonitorCommand) bool {
	if len(cmd.Args) < 2 {
		m.appendOutput("Usage: r <name> <expr>", colorRed)
		return false
	}
	name := strings.TrimPrefix(cmd.Args[0], "$")
	expr := cmd.exprArg(1)
	val, err := m.evaluateLocked(expr)
	if err != nil {
		m.reportError("Invalid value", expr, err)
		return false
	}
	if !m.machine.Regs.SetRegister(name, val) {
		m.appendOutput(fmt.Sprintf("Unknown register: %s", name), colorRed)
		return false
	}
	m.appendOutput(fmt.Sprintf("%s = $%08X", strings.ToLower(name), val), colorGreen)
	return false
}

func (m *MachineMonitor) cmdSaveState(cmd MonitorCommand) bool {
	path := "state.rvss"
	if len(cmd.Args) >= 1 {
		path = cmd.Args[0]
	}
	if err := SaveSnapshotToFile(TakeSnapshot(m.machine), path); err != nil {
		m.appendOutput(fmt.Sprintf("Save failed: %v", err), colorRed)
		return false
	}
	m.appendOutput(fmt.Sprintf("State saved to %s", path), colorCyan)
	return false
}

func (m *MachineMonitor) cmdLoadState(cmd MonitorCommand) bool {
	path := "state.rvss"
	if len(cmd.Args) >= 1 {
		path = cmd.Args[0]
	}
	snap, err := LoadSnapshotFromFile(path)
	if err != nil {
		m.appendOutput(fmt.Sprintf("Load failed: %v", err), colorRed)
		return false
	}
	if err := RestoreSnapshot(m.machine, snap); err != nil {
		m.appendOutput(fmt.Sprintf("Load failed: %v", err), colorRed)
		return false
	}
	m.state = MonitorStopped
	m.saveCurrentRegs()
	m.appendOutput(fmt.Sprintf("State loaded from %s", path), colorCyan)
	return false
}

func (m *MachineMonitor) cmdDiffTest(cmd MonitorCommand) bool {
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: dt <reference snapshot>", colorRed)
		return false
	}
	ref, err := LoadSnapshotFromFile(cmd.Args[0])
	if err != nil {
		m.appendOutput(fmt.Sprintf("Cannot load reference: %v", err), colorRed)
		return false
	}

	mismatches := CheckRegs(m.machine.Regs, ref.GPR)
	if len(mismatches) == 0 {
		m.appendOutput("Registers match reference", colorGreen)
		return false
	}
	for _, mm := range mismatches {
		m.appendOutput(mm.String(), colorRed)
	}
	m.appendOutput("REF Registers:", colorYellow)
	for _, line := range FormatRefRegs(ref.GPR) {
		m.appendOutput(line, colorYellow)
	}
	return false
}

func (m *MachineMonitor) cmdScript(cmd MonitorCommand) bool {
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: script <file.lua>", colorRed)
		return false
	}
	if err := m.runScriptLocked(cmd.Args[0]); err != nil {
		m.appendOutput(fmt.Sprintf("Script failed: %v", err), colorRed)
	}
	return m.state == MonitorQuit
}

func (m *MachineMonitor) cmdHelp(_ MonitorCommand) bool {
	helpLines := []string{
		"Machine Monitor Commands:",
		"  c                  Continue until a watchpoint fires or the machine halts",
		"  q                  Quit",
		"  si [N]             Step N instructions (default 1)",
		"  info r             Show registers",
		"  info w             List watchpoints",
		"  x N <expr>         Dump N words starting at <expr>",
		"  p <expr>           Evaluate and print <expr>",
		"  w <expr>           Watch <expr> for changes",
		"  d <id|*>           Delete watchpoint(s)",
		"  r <name> <expr>    Set register",
		"  ss [file]          Save machine state",
		"  sl [file]          Load machine state",
		"  dt <file>          Compare registers against a reference snapshot",
		"  script <file>      Run a Lua monitor script",
		"",
		"Expressions: dec, 0xhex, $reg, + - * / == != ( ), *addr reads a word",
	}
	for _, line := range helpLines {
		m.appendOutput(line, colorCyan)
	}
	return false
}
