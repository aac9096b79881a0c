package ipc

// BufferWords is the fixed capacity of a command buffer, header included.
const BufferWords = 64

// Memory is the guest address space view the codec needs to translate static
// buffer parameters. Implementations must bounds-check; the codec never
// touches addresses outside what a descriptor declares.
type Memory interface {
	ReadBlock(addr uint32, size uint32) ([]byte, error)
	WriteBlock(addr uint32, data []byte) error
}

// Buffer is one process's command buffer: a fixed array of 32-bit words
// shared between guest and host for the duration of a single synchronous
// call. It is plain reused memory, overwritten in place on return, and
// carries no identity across calls.
type Buffer struct {
	words [BufferWords]uint32
}

// NewBuffer returns a zeroed command buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Words exposes the raw word array, for the address-mapped view the guest
// sees and for tests that build buffers by hand.
func (b *Buffer) Words() []uint32 {
	return b.words[:]
}

// Header decodes word 0.
func (b *Buffer) Header() Header {
	return DecodeHeader(b.words[0])
}

// SetHeader encodes h into word 0.
func (b *Buffer) SetHeader(h Header) error {
	w, err := h.Encode()
	if err != nil {
		return err
	}
	b.words[0] = w
	return nil
}
