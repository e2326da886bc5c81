// debug_snapshot.go - Machine state snapshot for save/load and difftest references

package main

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	snapshotMagic   = "RVSS"
	snapshotVersion = 1
)

// MachineSnapshot captures registers and memory for save/load.
type MachineSnapshot struct {
	CPUType string
	GPR     [NUM_GPRS]uint32
	PC      uint32
	MemBase uint32
	Memory  []byte // compressed on disk, raw in memory
}

// TakeSnapshot captures the current registers and full memory.
func TakeSnapshot(m *Machine) *MachineSnapshot {
	gpr, pc := m.Regs.Snapshot()
	return &MachineSnapshot{
		CPUType: m.CPUName(),
		GPR:     gpr,
		PC:      pc,
		MemBase: m.Mem.Base(),
		Memory:  m.Mem.Bytes(),
	}
}

// RestoreSnapshot restores registers and memory and clears any halt.
func RestoreSnapshot(m *Machine, snap *MachineSnapshot) error {
	if snap.CPUType != m.CPUName() {
		return fmt.Errorf("snapshot is for %s, machine is %s", snap.CPUType, m.CPUName())
	}
	if len(snap.Memory) > 0 {
		if snap.MemBase != m.Mem.Base() || len(snap.Memory) != m.Mem.Size() {
			return fmt.Errorf("snapshot memory $%08X+%d does not match machine $%08X+%d",
				snap.MemBase, len(snap.Memory), m.Mem.Base(), m.Mem.Size())
		}
		if err := m.Mem.LoadBytes(snap.MemBase, snap.Memory); err != nil {
			return err
		}
	}
	m.Regs.Restore(snap.GPR, snap.PC)
	m.ClearHalt()
	return nil
}

// SaveSnapshotToFile writes a snapshot to disk with gzip compression.
func SaveSnapshotToFile(snap *MachineSnapshot, path string) error {
	var buf bytes.Buffer

	// Magic
	buf.WriteString(snapshotMagic)

	// Version
	binary.Write(&buf, binary.LittleEndian, uint32(snapshotVersion))

	// CPU type
	cpuBytes := []byte(snap.CPUType)
	buf.WriteByte(byte(len(cpuBytes)))
	buf.Write(cpuBytes)

	// Registers
	binary.Write(&buf, binary.LittleEndian, snap.GPR)
	binary.Write(&buf, binary.LittleEndian, snap.PC)

	// Memory: base, uncompressed length, then gzip-compressed data
	binary.Write(&buf, binary.LittleEndian, snap.MemBase)
	binary.Write(&buf, binary.LittleEndian, uint32(len(snap.Memory)))

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(snap.Memory); err != nil {
		return fmt.Errorf("compressing memory: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("closing gzip: %w", err)
	}
	buf.Write(compressed.Bytes())

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// LoadSnapshotFromFile reads and decompresses a snapshot from disk.
func LoadSnapshotFromFile(path string) (*MachineSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(data)

	// Magic
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != snapshotMagic {
		return nil, fmt.Errorf("invalid snapshot magic: %q", string(magic))
	}

	// Version
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", version)
	}

	// CPU type
	cpuTypeLen, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading CPU type length: %w", err)
	}
	cpuType := make([]byte, cpuTypeLen)
	if _, err := io.ReadFull(r, cpuType); err != nil {
		return nil, fmt.Errorf("reading CPU type: %w", err)
	}

	snap := &MachineSnapshot{CPUType: string(cpuType)}

	// Registers
	if err := binary.Read(r, binary.LittleEndian, &snap.GPR); err != nil {
		return nil, fmt.Errorf("reading registers: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &snap.PC); err != nil {
		return nil, fmt.Errorf("reading pc: %w", err)
	}

	// Memory
	if err := binary.Read(r, binary.LittleEndian, &snap.MemBase); err != nil {
		return nil, fmt.Errorf("reading memory base: %w", err)
	}
	var uncompressedLen uint32
	if err := binary.Read(r, binary.LittleEndian, &uncompressedLen); err != nil {
		return nil, fmt.Errorf("reading memory length: %w", err)
	}

	remaining := data[len(data)-r.Len():]
	gz, err := gzip.NewReader(bytes.NewReader(remaining))
	if err != nil {
		return nil, fmt.Errorf("opening gzip reader: %w", err)
	}
	defer gz.Close()

	snap.Memory = make([]byte, uncompressedLen)
	if _, err := io.ReadFull(gz, snap.Memory); err != nil {
		return nil, fmt.Errorf("decompressing memory: %w", err)
	}
	return snap, nil
}
