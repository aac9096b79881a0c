package kernel

import (
	"errors"
	"fmt"
)

var ErrOutOfBounds = errors.New("access outside the memory region")

// SharedMemory is a block of emulated memory visible to both guest and host,
// addressed by the guest at Base.
type SharedMemory struct {
	name string
	base uint32
	data []byte
}

func NewSharedMemory(name string, base uint32, size int) *SharedMemory {
	return &SharedMemory{name: name, base: base, data: make([]byte, size)}
}

func (s *SharedMemory) Name() string { return s.name }

// Base is the guest address the block is mapped at.
func (s *SharedMemory) Base() uint32 { return s.base }

func (s *SharedMemory) Size() int { return len(s.data) }

// Bytes exposes the backing store from offset onward. The slice aliases the
// region, so writes through it are guest-visible.
func (s *SharedMemory) Bytes(offset uint32) ([]byte, error) {
	if int(offset) > len(s.data) {
		return nil, fmt.Errorf("offset %#x in %d-byte region: %w", offset, len(s.data), ErrOutOfBounds)
	}
	return s.data[offset:], nil
}

// Load copies data into the region starting at offset.
func (s *SharedMemory) Load(offset uint32, data []byte) error {
	if int(offset)+len(data) > len(s.data) {
		return fmt.Errorf("%d bytes at offset %#x in %d-byte region: %w", len(data), offset, len(s.data), ErrOutOfBounds)
	}
	copy(s.data[offset:], data)
	return nil
}
