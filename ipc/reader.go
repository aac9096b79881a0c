package ipc

import (
	"encoding/binary"
	"fmt"
)

// Reader walks a command buffer's parameter region, consuming words against
// the header's declared regular and translate budgets. The reader trusts the
// signature for what comes next and treats descriptor tag bits as a
// redundant check; a mismatch means the handler and the guest disagree about
// the command's layout, which is a host-side fault, not guest input to
// recover from.
type Reader struct {
	words []uint32
	pos   int
	mem   Memory

	// remaining budgets, in words
	regular   int
	translate int
}

// NewReader positions a reader after the header. It fails up front if the
// declared lengths overrun the buffer, so no later read can step out of
// bounds.
func NewReader(b *Buffer, h Header, mem Memory) (*Reader, error) {
	if 1+int(h.Regular)+int(h.Translate) > BufferWords {
		return nil, fmt.Errorf("header declares %d+%d words: %w", h.Regular, h.Translate, ErrBufferExhausted)
	}
	return &Reader{
		words:     b.Words(),
		pos:       1,
		mem:       mem,
		regular:   int(h.Regular),
		translate: int(h.Translate),
	}, nil
}

// Next decodes the next parameter as type t, consuming its exact word cost
// from the matching budget.
func (r *Reader) Next(t Type) (Param, error) {
	if t.Kind == KindRegular {
		return r.nextRegular(int(t.Words))
	}
	return r.nextTranslate(t.Kind)
}

func (r *Reader) nextRegular(words int) (Param, error) {
	if words > r.regular {
		return nil, fmt.Errorf("regular parameter of %d words, %d left: %w", words, r.regular, ErrBudgetExceeded)
	}
	b := make([]byte, words*4)
	for i := 0; i < words; i++ {
		binary.LittleEndian.PutUint32(b[i*4:], r.words[r.pos+i])
	}
	r.pos += words
	r.regular -= words
	return Regular{Bytes: b}, nil
}

func (r *Reader) nextTranslate(k Kind) (Param, error) {
	// Descriptor plus at least one more word; exact cost checked per kind.
	if r.translate < 2 {
		return nil, fmt.Errorf("%s parameter, %d translate words left: %w", k, r.translate, ErrBudgetExceeded)
	}
	desc := r.words[r.pos]

	var p Param
	var cost int
	switch k {
	case KindHandles:
		copyFlag, count, err := decodeHandleDesc(desc)
		if err != nil {
			return nil, fmt.Errorf("handle descriptor %#08x: %w", desc, err)
		}
		cost = 1 + count
		if cost > r.translate {
			return nil, fmt.Errorf("%d handles, %d translate words left: %w", count, r.translate, ErrBudgetExceeded)
		}
		values := make([]uint32, count)
		copy(values, r.words[r.pos+1:r.pos+cost])
		p = Handles{Copy: copyFlag, Values: values}

	case KindCallingPID:
		if desc != descCallingPID {
			return nil, fmt.Errorf("calling pid descriptor %#08x: %w", desc, ErrMalformedDescriptor)
		}
		cost = 2
		p = CallingPID{PID: r.words[r.pos+1]}

	case KindStaticBuffer:
		id, size, err := decodeStaticDesc(desc)
		if err != nil {
			return nil, fmt.Errorf("static buffer descriptor %#08x: %w", desc, err)
		}
		cost = 2
		addr := r.words[r.pos+1]
		if r.mem == nil {
			return nil, ErrNoMemory
		}
		data, err := r.mem.ReadBlock(addr, size)
		if err != nil {
			return nil, fmt.Errorf("static buffer at %#08x: %w", addr, err)
		}
		p = StaticBuffer{ID: id, Address: addr, Data: data}

	case KindMappedBuffer:
		perm, size, err := decodeMappedDesc(desc)
		if err != nil {
			return nil, fmt.Errorf("mapped buffer descriptor %#08x: %w", desc, err)
		}
		cost = 2
		p = MappedBuffer{Perm: perm, Size: size, Address: r.words[r.pos+1]}

	default:
		return nil, fmt.Errorf("descriptor %#08x: unknown kind %d: %w", desc, k, ErrMalformedDescriptor)
	}

	r.pos += cost
	r.translate -= cost
	return p, nil
}

// Finish asserts both budgets were consumed exactly. A leftover means the
// guest sent words the signature never read.
func (r *Reader) Finish() error {
	if r.regular != 0 || r.translate != 0 {
		return fmt.Errorf("%d regular and %d translate words left: %w", r.regular, r.translate, ErrUnderConsumption)
	}
	return nil
}
