package kernel

import "fmt"

// FlatMemory is a contiguous guest address range backed by host bytes. It
// implements ipc.Memory for static buffer translation; real address-space
// emulation lives with the CPU core, outside this layer.
type FlatMemory struct {
	base uint32
	data []byte
}

func NewFlatMemory(base uint32, size int) *FlatMemory {
	return &FlatMemory{base: base, data: make([]byte, size)}
}

func (m *FlatMemory) Base() uint32 { return m.base }

func (m *FlatMemory) contains(addr uint32, size int) bool {
	return addr >= m.base && int(addr-m.base)+size <= len(m.data)
}

func (m *FlatMemory) ReadBlock(addr uint32, size uint32) ([]byte, error) {
	if !m.contains(addr, int(size)) {
		return nil, fmt.Errorf("read of %d bytes at %#08x: %w", size, addr, ErrOutOfBounds)
	}
	out := make([]byte, size)
	copy(out, m.data[addr-m.base:])
	return out, nil
}

func (m *FlatMemory) WriteBlock(addr uint32, data []byte) error {
	if !m.contains(addr, len(data)) {
		return fmt.Errorf("write of %d bytes at %#08x: %w", len(data), addr, ErrOutOfBounds)
	}
	copy(m.data[addr-m.base:], data)
	return nil
}
