package ipc

// Translate descriptor words, low bits first:
//
// Handle transfer:  |count-1 (6)| 0...0 |copy (1)| 0000 |
//                    31      26          4        3    0
// Calling PID:      fixed word 0x20, followed by a placeholder word the
//                   kernel overwrites with the caller's process id.
// Static buffer:    |size (18)|id (4)| 0...0 |0010|, followed by a pointer.
//                    31     14 13  10         3  0
// Mapped buffer:    |size (28)|1|perm (3)|, followed by an address.
//                    31      4 3 2      0

const (
	descCallingPID = 0x20

	descHandleCopyBit  = 0x10
	descHandleCountPos = 26
	// defined handle descriptor bits: the copy flag and the count field.
	descHandleMask = uint32(descHandleCopyBit) | (maxHandleCount-1)<<descHandleCountPos

	descStaticTagMask = 0xF
	descStaticTag     = 0x2
	descStaticIDPos   = 10
	descStaticIDMask  = 0xF
	descStaticSizePos = 14

	descMappedTagBit  = 0x8
	descMappedPermPos = 0
	descMappedPerm    = 0x7
	descMappedSizePos = 4

	// maxHandleCount is bounded by the descriptor's 6-bit count field.
	maxHandleCount = 64

	maxStaticSize = 1<<(32-descStaticSizePos) - 1
	maxStaticID   = descStaticIDMask
	maxMappedSize = 1<<(32-descMappedSizePos) - 1
)

// Classify reports which translate kind a descriptor word announces. Used for
// diagnostics only; decoding is positional and validates against the expected
// kind instead.
func Classify(desc uint32) (Kind, bool) {
	switch {
	case desc == descCallingPID:
		return KindCallingPID, true
	case desc&descStaticTagMask == descStaticTag:
		return KindStaticBuffer, true
	case desc&descMappedTagBit != 0:
		return KindMappedBuffer, true
	case desc&^descHandleMask == 0:
		return KindHandles, true
	}
	return 0, false
}

// decodeHandleDesc validates a handle transfer descriptor and returns the
// copy flag and handle count. Any set bit outside the copy flag and the count
// field is rejected rather than misinterpreted.
func decodeHandleDesc(desc uint32) (copy bool, count int, err error) {
	if desc&^descHandleMask != 0 {
		return false, 0, ErrMalformedDescriptor
	}
	return desc&descHandleCopyBit != 0, int(desc>>descHandleCountPos) + 1, nil
}

// encodeHandleDesc builds a handle transfer descriptor for count handles.
func encodeHandleDesc(copy bool, count int) (uint32, error) {
	if count < 1 || count > maxHandleCount {
		return 0, ErrValueOutOfRange
	}
	desc := uint32(count-1) << descHandleCountPos
	if copy {
		desc |= descHandleCopyBit
	}
	return desc, nil
}

func decodeStaticDesc(desc uint32) (id uint8, size uint32, err error) {
	if desc&descStaticTagMask != descStaticTag {
		return 0, 0, ErrMalformedDescriptor
	}
	return uint8((desc >> descStaticIDPos) & descStaticIDMask), desc >> descStaticSizePos, nil
}

func encodeStaticDesc(id uint8, size uint32) (uint32, error) {
	if id > maxStaticID || size > maxStaticSize {
		return 0, ErrValueOutOfRange
	}
	return size<<descStaticSizePos | uint32(id)<<descStaticIDPos | descStaticTag, nil
}

func decodeMappedDesc(desc uint32) (perm Perm, size uint32, err error) {
	if desc&descMappedTagBit == 0 {
		return 0, 0, ErrMalformedDescriptor
	}
	return Perm(desc & descMappedPerm), desc >> descMappedSizePos, nil
}

func encodeMappedDesc(perm Perm, size uint32) (uint32, error) {
	if size > maxMappedSize {
		return 0, ErrValueOutOfRange
	}
	return size<<descMappedSizePos | descMappedTagBit | uint32(perm&descMappedPerm), nil
}
