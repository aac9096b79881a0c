package ipc

import (
	"encoding/binary"
	"fmt"
)

// Writer builds a command buffer's reply region, accumulating the regular and
// translate word counts that become the rewritten header. Regular parameters
// must all be written before the first translate parameter; the wire layout
// has no way to interleave them, so getting this wrong is a bug in the
// handler, not a recoverable condition.
type Writer struct {
	words []uint32
	pos   int
	mem   Memory

	regular   int
	translate int
}

// NewWriter positions a writer just after the header word.
func NewWriter(b *Buffer, mem Memory) *Writer {
	return &Writer{words: b.Words(), pos: 1, mem: mem}
}

// Write encodes p at the current position.
func (w *Writer) Write(p Param) error {
	switch v := p.(type) {
	case Regular:
		return w.writeRegular(v)
	case Handles:
		return w.writeHandles(v)
	case CallingPID:
		return w.writeWords(descCallingPID, v.PID)
	case StaticBuffer:
		return w.writeStatic(v)
	case MappedBuffer:
		desc, err := encodeMappedDesc(v.Perm, v.Size)
		if err != nil {
			return err
		}
		return w.writeWords(desc, v.Address)
	}
	return fmt.Errorf("unknown parameter %T: %w", p, ErrMalformedDescriptor)
}

func (w *Writer) writeRegular(v Regular) error {
	if w.translate != 0 {
		return fmt.Errorf("regular parameter after %d translate words: %w", w.translate, ErrOrderingViolation)
	}
	n := v.wordLen()
	if err := w.reserve(n); err != nil {
		return err
	}
	b := make([]byte, n*4)
	copy(b, v.Bytes)
	for i := 0; i < n; i++ {
		w.words[w.pos+i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	w.pos += n
	w.regular += n
	return nil
}

func (w *Writer) writeHandles(v Handles) error {
	desc, err := encodeHandleDesc(v.Copy, len(v.Values))
	if err != nil {
		return err
	}
	if err := w.reserve(1 + len(v.Values)); err != nil {
		return err
	}
	w.words[w.pos] = desc
	copy(w.words[w.pos+1:], v.Values)
	w.pos += 1 + len(v.Values)
	w.translate += 1 + len(v.Values)
	return nil
}

func (w *Writer) writeStatic(v StaticBuffer) error {
	desc, err := encodeStaticDesc(v.ID, uint32(len(v.Data)))
	if err != nil {
		return err
	}
	if err := w.reserve(2); err != nil {
		return err
	}
	if len(v.Data) > 0 {
		if w.mem == nil {
			return ErrNoMemory
		}
		if err := w.mem.WriteBlock(v.Address, v.Data); err != nil {
			return fmt.Errorf("static buffer at %#08x: %w", v.Address, err)
		}
	}
	return w.writeWords(desc, v.Address)
}

// writeWords emits a two-word translate parameter.
func (w *Writer) writeWords(desc, payload uint32) error {
	if err := w.reserve(2); err != nil {
		return err
	}
	w.words[w.pos] = desc
	w.words[w.pos+1] = payload
	w.pos += 2
	w.translate += 2
	return nil
}

func (w *Writer) reserve(n int) error {
	if w.pos+n > len(w.words) {
		return fmt.Errorf("%d words at position %d: %w", n, w.pos, ErrBufferExhausted)
	}
	return nil
}

// Lengths reports the regular and translate word counts written so far.
func (w *Writer) Lengths() (regular, translate int) {
	return w.regular, w.translate
}

// Finish rewrites the header with the accumulated lengths and the given
// command id.
func (w *Writer) Finish(commandID uint16) error {
	if w.regular > MaxLength || w.translate > MaxLength {
		return fmt.Errorf("%d regular and %d translate words written: %w", w.regular, w.translate, ErrValueOutOfRange)
	}
	h := Header{CommandID: commandID, Regular: uint8(w.regular), Translate: uint8(w.translate)}
	enc, err := h.Encode()
	if err != nil {
		return err
	}
	w.words[0] = enc
	return nil
}
