package ipc

// Command buffer word 0:
// 0                                                                       31
// |-----------------------------------------------------------------------|
// | Translate length (uint6) | Regular length (uint6) | Command id (uint16)|
// |-----------------------------------------------------------------------|
// |                        Regular parameter words...                     |
// |-----------------------------------------------------------------------|
// |                       Translate parameter words...                    |
//
// Lengths are word counts, not parameter counts. The buffer holds exactly
// one in-flight call: 1 + regular + translate words, capacity BufferWords.

const (
	headerLengthBits = 6
	headerLengthMask = 1<<headerLengthBits - 1

	// MaxLength is the largest regular or translate word count a header can
	// carry.
	MaxLength = headerLengthMask
)

// Header is the decoded form of command buffer word 0.
type Header struct {
	CommandID uint16
	// Regular is the word count of the regular parameter region.
	Regular uint8
	// Translate is the word count of the translate parameter region.
	Translate uint8
}

// DecodeHeader unpacks a header word. Pure bit extraction, cannot fail.
func DecodeHeader(w uint32) Header {
	return Header{
		CommandID: uint16(w >> 16),
		Regular:   uint8((w >> headerLengthBits) & headerLengthMask),
		Translate: uint8(w & headerLengthMask),
	}
}

// Encode packs a header into its word representation. Returns
// ErrValueOutOfRange if either length exceeds 6 bits; silently truncating
// would corrupt the guest-visible layout.
func (h Header) Encode() (uint32, error) {
	if h.Regular > MaxLength || h.Translate > MaxLength {
		return 0, ErrValueOutOfRange
	}
	return uint32(h.CommandID)<<16 |
		uint32(h.Regular)<<headerLengthBits |
		uint32(h.Translate), nil
}
