// difftest.go - Register comparison against a reference model

package main

import (
	"fmt"
	"strings"
)

// RegMismatch is one GPR that differs from the reference.
type RegMismatch struct {
	Index int
	Dut   uint32
	Ref   uint32
}

func (mm RegMismatch) String() string {
	return fmt.Sprintf("%-3s: dut $%08X ref $%08X", rv32RegNames[mm.Index], mm.Dut, mm.Ref)
}

// CheckRegs compares all 32 GPRs against ref. pc is not compared; the
// reference is taken at the same retired-instruction boundary.
func CheckRegs(dut *Registers, ref [NUM_GPRS]uint32) []RegMismatch {
	gpr, _ := dut.Snapshot()
	var out []RegMismatch
	for i := range gpr {
		if gpr[i] != ref[i] {
			out = append(out, RegMismatch{Index: i, Dut: gpr[i], Ref: ref[i]})
		}
	}
	return out
}

// FormatRefRegs renders a register vector four per line.
func FormatRefRegs(ref [NUM_GPRS]uint32) []string {
	var lines []string
	var sb strings.Builder
	for i, v := range ref {
		fmt.Fprintf(&sb, "%-3s: %-10d ", rv32RegNames[i], v)
		if (i+1)%4 == 0 {
			lines = append(lines, strings.TrimRight(sb.String(), " "))
			sb.Reset()
		}
	}
	return lines
}
