// memory_bus.go - Guest physical memory for the RV32 monitor

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
memory_bus.go - Guest Physical Memory

This module implements the physical memory the monitor inspects. It is a single
contiguous block mapped at PMEM_BASE, the address a RISC-V guest image is linked
for, and exposes the little-endian 1, 2 and 4 byte accessors the expression
evaluator and the memory-examine command rely on.

Core Features:

    128MB of guest memory allocated as a contiguous block at 0x80000000.
    Little-endian read/write operations for 8, 16 and 32-bit data.
    Out-of-range reads return zero and are counted rather than aborting the monitor.
    Image loading at the base (or any in-range address).
    Thread-safe access implemented with a read/write mutex.

*/

package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

const (
	PMEM_BASE = 0x80000000
	PMEM_SIZE = 128 * 1024 * 1024
)

type PhysBus struct {
	/*
		PhysBus owns guest physical memory. Reads and writes outside
		[base, base+size) never touch the backing slice; reads return 0
		and bump the fault counter so the monitor can warn about them.
	*/

	memory []byte
	base   uint32
	mutex  sync.RWMutex
	faults atomic.Uint64
}

func NewPhysBus() *PhysBus {
	return NewPhysBusSized(PMEM_BASE, PMEM_SIZE)
}

// NewPhysBusSized creates a bus of the given size mapped at base.
func NewPhysBusSized(base uint32, size int) *PhysBus {
	return &PhysBus{
		memory: make([]byte, size),
		base:   base,
	}
}

func (bus *PhysBus) Base() uint32 { return bus.base }
func (bus *PhysBus) Size() int    { return len(bus.memory) }

// offset translates addr into the backing slice, or ok=false if any of the
// size bytes falls outside.
func (bus *PhysBus) offset(addr uint32, size int) (int, bool) {
	if addr < bus.base {
		return 0, false
	}
	off := uint64(addr - bus.base)
	if off+uint64(size) > uint64(len(bus.memory)) {
		return 0, false
	}
	return int(off), true
}

// Read returns size (1, 2 or 4) bytes at addr, zero-extended.
func (bus *PhysBus) Read(addr uint32, size int) uint32 {
	v, ok := bus.ReadWithFault(addr, size)
	if !ok {
		bus.faults.Add(1)
	}
	return v
}

// ReadWithFault is Read with the fault reported instead of counted.
func (bus *PhysBus) ReadWithFault(addr uint32, size int) (uint32, bool) {
	bus.mutex.RLock()
	defer bus.mutex.RUnlock()

	off, ok := bus.offset(addr, size)
	if !ok {
		return 0, false
	}
	switch size {
	case 1:
		return uint32(bus.memory[off]), true
	case 2:
		return uint32(binary.LittleEndian.Uint16(bus.memory[off:])), true
	case 4:
		return binary.LittleEndian.Uint32(bus.memory[off:]), true
	}
	return 0, false
}

// Write stores the low size bytes of value at addr. Returns false if the
// access is out of range.
func (bus *PhysBus) Write(addr uint32, size int, value uint32) bool {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	off, ok := bus.offset(addr, size)
	if !ok {
		return false
	}
	switch size {
	case 1:
		bus.memory[off] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(bus.memory[off:], uint16(value))
	case 4:
		binary.LittleEndian.PutUint32(bus.memory[off:], value)
	default:
		return false
	}
	return true
}

// Faults returns how many out-of-range reads have happened.
func (bus *PhysBus) Faults() uint64 { return bus.faults.Load() }

// Bytes returns a copy of the whole memory block.
func (bus *PhysBus) Bytes() []byte {
	bus.mutex.RLock()
	defer bus.mutex.RUnlock()
	return append([]byte(nil), bus.memory...)
}

// LoadBytes copies data into memory starting at addr.
func (bus *PhysBus) LoadBytes(addr uint32, data []byte) error {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	off, ok := bus.offset(addr, len(data))
	if !ok {
		return fmt.Errorf("%d bytes at $%08X do not fit in memory", len(data), addr)
	}
	copy(bus.memory[off:], data)
	return nil
}

// LoadImage reads a raw binary image from disk into memory at addr.
func (bus *PhysBus) LoadImage(path string, addr uint32) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if err := bus.LoadBytes(addr, data); err != nil {
		return 0, fmt.Errorf("loading %s: %w", path, err)
	}
	return len(data), nil
}

func (bus *PhysBus) Reset() {
	/*
		Reset clears guest memory and the fault counter.
	*/

	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	clear(bus.memory)
	bus.faults.Store(0)
}
