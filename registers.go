// registers.go - RV32 general purpose register file

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

/*
registers.go - RV32 Register File

The register file the monitor reads through "$name" operands. Names are
case-insensitive and resolve as follows:

REGISTER NAMES
==============

Index   Numeric   ABI       Notes
---------------------------------------------------------------------------
0       x0        zero, 0   hard-wired to zero, writes ignored
1       x1        ra        return address
2       x2        sp        stack pointer
3       x3        gp        global pointer
4       x4        tp        thread pointer
5-7     x5-x7     t0-t2     temporaries
8       x8        s0, fp    saved / frame pointer
9       x9        s1
10-17   x10-x17   a0-a7     arguments / return values
18-27   x18-x27   s2-s11
28-31   x28-x31   t3-t6
-       -         pc        program counter
*/

package main

import (
	"strconv"
	"strings"
	"sync"
)

const NUM_GPRS = 32

// rv32RegNames lists ABI names by index. Index 0 uses "$0" in reference dumps.
var rv32RegNames = [NUM_GPRS]string{
	"$0", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var rv32RegIndex = buildRegIndex()

func buildRegIndex() map[string]int {
	idx := make(map[string]int, NUM_GPRS*2+3)
	for i, name := range rv32RegNames {
		idx[name] = i
		idx["x"+strconv.Itoa(i)] = i
	}
	idx["zero"] = 0
	idx["0"] = 0
	idx["fp"] = 8
	return idx
}

// Registers is the architectural register state of one RV32 hart.
type Registers struct {
	mu  sync.RWMutex
	gpr [NUM_GPRS]uint32
	pc  uint32
}

func NewRegisters(pc uint32) *Registers {
	return &Registers{pc: pc}
}

// RegisterIndex maps a register name to its GPR index. pc is not a GPR.
func RegisterIndex(name string) (int, bool) {
	i, ok := rv32RegIndex[strings.ToLower(name)]
	return i, ok
}

// RegisterValue implements RegisterFile.
func (r *Registers) RegisterValue(name string) (uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if strings.EqualFold(name, "pc") {
		return r.pc, true
	}
	i, ok := RegisterIndex(name)
	if !ok {
		return 0, false
	}
	return r.gpr[i], true
}

// SetRegister writes a register by name. Writes to x0 succeed and are dropped.
func (r *Registers) SetRegister(name string, value uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if strings.EqualFold(name, "pc") {
		r.pc = value
		return true
	}
	i, ok := RegisterIndex(name)
	if !ok {
		return false
	}
	if i != 0 {
		r.gpr[i] = value
	}
	return true
}

func (r *Registers) GPR(i int) uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gpr[i]
}

func (r *Registers) PC() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pc
}

func (r *Registers) SetPC(pc uint32) {
	r.mu.Lock()
	r.pc = pc
	r.mu.Unlock()
}

// Snapshot returns all GPRs and the pc in one consistent read.
func (r *Registers) Snapshot() (gpr [NUM_GPRS]uint32, pc uint32) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gpr, r.pc
}

// Restore replaces the whole register state. x0 is forced back to zero.
func (r *Registers) Restore(gpr [NUM_GPRS]uint32, pc uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gpr = gpr
	r.gpr[0] = 0
	r.pc = pc
}
