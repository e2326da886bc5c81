// debug_interface.go - Machine state and step hook for the Machine Monitor

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
)

var ErrMachineHalted = errors.New("machine halted")

// RegisterInfo describes a single register for display in the monitor.
type RegisterInfo struct {
	Name     string // "ra", "a0", "pc"
	BitWidth int
	Value    uint64
	Group    string // "general", "pc"
}

// StepHook advances the machine by one instruction. It reports false once
// the guest has halted.
type StepHook interface {
	Step(m *Machine) (bool, error)
}

// Machine bundles the register file and physical memory the monitor
// inspects. Instruction semantics live in the step hook; without one a step
// only advances pc by one instruction word.
type Machine struct {
	Regs *Registers
	Mem  *PhysBus

	hook   StepHook
	steps  uint64
	halted bool
}

func NewMachine(regs *Registers, mem *PhysBus) *Machine {
	return &Machine{Regs: regs, Mem: mem}
}

func (m *Machine) CPUName() string { return "RV32" }

func (m *Machine) SetStepHook(h StepHook) { m.hook = h }

func (m *Machine) Halted() bool  { return m.halted }
func (m *Machine) Steps() uint64 { return m.steps }
func (m *Machine) Halt()         { m.halted = true }
func (m *Machine) ClearHalt()    { m.halted = false }

// Step executes one instruction.
func (m *Machine) Step() error {
	if m.halted {
		return ErrMachineHalted
	}
	m.steps++
	if m.hook == nil {
		m.Regs.SetPC(m.Regs.PC() + 4)
		return nil
	}
	running, err := m.hook.Step(m)
	if err != nil {
		m.halted = true
		return fmt.Errorf("step %d: %w", m.steps, err)
	}
	if !running {
		m.halted = true
	}
	return nil
}

// GetRegisters lists the GPRs followed by pc.
func (m *Machine) GetRegisters() []RegisterInfo {
	gpr, pc := m.Regs.Snapshot()
	regs := make([]RegisterInfo, 0, NUM_GPRS+1)
	for i, v := range gpr {
		regs = append(regs, RegisterInfo{Name: rv32RegNames[i], BitWidth: 32, Value: uint64(v), Group: "general"})
	}
	regs = append(regs, RegisterInfo{Name: "pc", BitWidth: 32, Value: uint64(pc), Group: "pc"})
	return regs
}
