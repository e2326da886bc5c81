package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// TestPhysBusLittleEndian verifies that multi-byte accesses use RISC-V
// byte order and that narrow reads zero-extend.
func TestPhysBusLittleEndian(t *testing.T) {
	bus := NewPhysBusSized(PMEM_BASE, 0x1000)

	if !bus.Write(PMEM_BASE+0x10, 4, 0x12345678) {
		t.Fatal("Write failed inside memory")
	}
	mem := bus.Bytes()
	if got := binary.LittleEndian.Uint32(mem[0x10:]); got != 0x12345678 {
		t.Fatalf("backing word 0x%08X, expected 0x12345678", got)
	}
	if mem[0x10] != 0x78 {
		t.Errorf("lowest byte 0x%02X, expected 0x78", mem[0x10])
	}

	tests := []struct {
		addr uint32
		size int
		want uint32
	}{
		{PMEM_BASE + 0x10, 1, 0x78},
		{PMEM_BASE + 0x11, 1, 0x56},
		{PMEM_BASE + 0x10, 2, 0x5678},
		{PMEM_BASE + 0x12, 2, 0x1234},
		{PMEM_BASE + 0x10, 4, 0x12345678},
	}
	for _, tt := range tests {
		if got := bus.Read(tt.addr, tt.size); got != tt.want {
			t.Errorf("Read($%08X, %d) = 0x%X, want 0x%X", tt.addr, tt.size, got, tt.want)
		}
	}
	if bus.Faults() != 0 {
		t.Errorf("Faults() = %d after in-range reads", bus.Faults())
	}
}

// TestPhysBusOutOfRange verifies reads outside memory return 0 and count a
// fault, and writes are refused.
func TestPhysBusOutOfRange(t *testing.T) {
	bus := NewPhysBusSized(PMEM_BASE, 0x100)

	addrs := []uint32{0, PMEM_BASE - 4, PMEM_BASE + 0x100, PMEM_BASE + 0xFE, 0xFFFFFFFF}
	for i, addr := range addrs {
		if got := bus.Read(addr, 4); got != 0 {
			t.Errorf("Read($%08X) = 0x%X, want 0", addr, got)
		}
		if got := bus.Faults(); got != uint64(i+1) {
			t.Errorf("Faults() = %d after %d bad reads", got, i+1)
		}
		if bus.Write(addr, 4, 1) {
			t.Errorf("Write($%08X) succeeded outside memory", addr)
		}
	}

	if _, ok := bus.ReadWithFault(PMEM_BASE+0x100, 1); ok {
		t.Error("ReadWithFault reported ok past the end")
	}
	if got := bus.Faults(); got != uint64(len(addrs)) {
		t.Errorf("ReadWithFault changed the fault count to %d", got)
	}
	if bus.Write(PMEM_BASE, 3, 0) {
		t.Error("Write with size 3 succeeded")
	}
}

func TestPhysBusLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.bin")
	if err := os.WriteFile(path, []byte{0x13, 0x05, 0x10, 0x00}, 0644); err != nil {
		t.Fatal(err)
	}

	bus := NewPhysBusSized(PMEM_BASE, 0x100)
	n, err := bus.LoadImage(path, bus.Base())
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if n != 4 {
		t.Errorf("LoadImage loaded %d bytes, want 4", n)
	}
	if got := bus.Read(PMEM_BASE, 4); got != 0x00100513 {
		t.Errorf("first word 0x%08X, want 0x00100513", got)
	}

	if _, err := bus.LoadImage(path, PMEM_BASE+0xFE); err == nil {
		t.Error("LoadImage past the end succeeded")
	}
	if _, err := bus.LoadImage(filepath.Join(dir, "missing.bin"), PMEM_BASE); err == nil {
		t.Error("LoadImage of a missing file succeeded")
	}
}

func TestPhysBusReset(t *testing.T) {
	bus := NewPhysBusSized(PMEM_BASE, 0x100)
	bus.Write(PMEM_BASE, 4, 0xFFFFFFFF)
	bus.Read(0, 4)
	bus.Reset()
	if bus.Read(PMEM_BASE, 4) != 0 {
		t.Error("memory not cleared by Reset")
	}
	if bus.Faults() != 0 {
		t.Errorf("Faults() = %d after Reset", bus.Faults())
	}
}

func TestPhysBusDefaultLayout(t *testing.T) {
	bus := NewPhysBus()
	if bus.Base() != 0x80000000 || bus.Size() != 128*1024*1024 {
		t.Errorf("default bus at $%08X size %d", bus.Base(), bus.Size())
	}
}
