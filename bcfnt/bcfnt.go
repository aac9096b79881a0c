// Package bcfnt reads and relocates the shared system font's binary format: a
// CFNT header followed by a chain of tagged sections (FINF, CMAP, CWDH, TGLP).
// The sections embed absolute guest addresses authored against a fixed dump
// base, so the blob must be rebased exactly once to wherever the shared
// memory block actually lands.
package bcfnt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// AuthoredBase is the guest address the distributed font dumps are
	// authored against.
	AuthoredBase = 0x18000000

	// SharedFontOffset is where the font payload starts inside the shared
	// memory block handed to applications.
	SharedFontOffset = 0x80

	headerLen  = 20
	sectionMin = 8 // magic + section size
)

var (
	ErrBadMagic  = errors.New("blob does not start with a CFNT header")
	ErrTruncated = errors.New("blob is shorter than its declared sections")
)

var (
	magicCFNT = []byte("CFNT")
	magicFINF = []byte("FINF")
	magicTGLP = []byte("TGLP")
	magicCWDH = []byte("CWDH")
	magicCMAP = []byte("CMAP")
)

// Header is the CFNT file header.
type Header struct {
	Endianness uint16
	HeaderSize uint16
	Version    uint32
	FileSize   uint32
	NumBlocks  uint32
}

// ParseHeader decodes the CFNT header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerLen {
		return Header{}, ErrTruncated
	}
	if !bytes.Equal(data[:4], magicCFNT) {
		return Header{}, ErrBadMagic
	}
	le := binary.LittleEndian
	return Header{
		Endianness: le.Uint16(data[4:]),
		HeaderSize: le.Uint16(data[6:]),
		Version:    le.Uint32(data[8:]),
		FileSize:   le.Uint32(data[12:]),
		NumBlocks:  le.Uint32(data[16:]),
	}, nil
}

// Relocate rebases every embedded address in the blob by next−previous, in
// place. Calling it a second time with the same bases would double-add the
// delta; the caller owns the once-only guard.
//
// Offsets of the patched fields inside each section:
//
//	FINF: tglp +16, cwdh +20, cmap +24
//	CMAP: next cmap +16
//	CWDH: next cwdh +12
//	TGLP: sheet data +28
func Relocate(data []byte, previous, next uint32) error {
	hdr, err := ParseHeader(data)
	if err != nil {
		return err
	}
	delta := next - previous
	le := binary.LittleEndian

	pos := int(hdr.HeaderSize)
	for block := uint32(0); block < hdr.NumBlocks; block++ {
		if pos+sectionMin > len(data) {
			return fmt.Errorf("section %d at offset %#x: %w", block, pos, ErrTruncated)
		}
		section := data[pos:]
		size := le.Uint32(section[4:])
		if size < sectionMin || pos+int(size) > len(data) {
			return fmt.Errorf("section %d claims %d bytes at offset %#x: %w", block, size, pos, ErrTruncated)
		}

		patch := func(offsets ...int) error {
			for _, off := range offsets {
				if off+4 > int(size) {
					return fmt.Errorf("section %d too small to hold offset field at +%d: %w", block, off, ErrTruncated)
				}
				le.PutUint32(section[off:], le.Uint32(section[off:])+delta)
			}
			return nil
		}
		switch {
		case bytes.Equal(section[:4], magicFINF):
			err = patch(16, 20, 24) // tglp, cwdh, cmap
		case bytes.Equal(section[:4], magicCMAP):
			err = patch(16) // next cmap
		case bytes.Equal(section[:4], magicCWDH):
			err = patch(12) // next cwdh
		case bytes.Equal(section[:4], magicTGLP):
			err = patch(28) // sheet data
		}
		// unrecognized sections are skipped by their declared size
		if err != nil {
			return err
		}

		pos += int(size)
	}
	return nil
}
