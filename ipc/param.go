package ipc

import "encoding/binary"

// Kind discriminates the closed set of wire parameter classes. The protocol
// is positional: the handler signature, not the buffer, decides which kind is
// expected next, and descriptor tag bits are a redundant check.
type Kind uint8

const (
	// KindRegular is a plain-data value copied verbatim, no descriptor word.
	KindRegular Kind = iota
	// KindHandles is a copy-or-move transfer of one or more kernel handles.
	KindHandles
	// KindCallingPID is the kernel-stamped attestation of the caller's
	// process id.
	KindCallingPID
	// KindStaticBuffer is a size-tagged pointer into guest memory, copied by
	// the kernel into the receiver's static buffer slot.
	KindStaticBuffer
	// KindMappedBuffer is a region mapped into the receiver with explicit
	// permissions.
	KindMappedBuffer
)

var kindNames = map[Kind]string{
	KindRegular:      "regular",
	KindHandles:      "handles",
	KindCallingPID:   "callingPid",
	KindStaticBuffer: "staticBuffer",
	KindMappedBuffer: "mappedBuffer",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Type is one element of a handler's declared signature. Words is only
// meaningful for KindRegular, where it fixes how many words the value
// occupies; translate kinds carry their own length in the descriptor.
type Type struct {
	Kind  Kind
	Words uint8
}

var (
	// U32 is a one-word regular parameter.
	U32 = Type{Kind: KindRegular, Words: 1}
	// U64 is a two-word regular parameter.
	U64 = Type{Kind: KindRegular, Words: 2}

	HandlesType      = Type{Kind: KindHandles}
	CallingPIDType   = Type{Kind: KindCallingPID}
	StaticBufferType = Type{Kind: KindStaticBuffer}
	MappedBufferType = Type{Kind: KindMappedBuffer}
)

// RegularType describes a plain-data parameter of the given byte size,
// occupying ceil(size/4) words.
func RegularType(size int) Type {
	return Type{Kind: KindRegular, Words: uint8((size + 3) / 4)}
}

// Param is one decoded parameter. The set of implementations is closed; the
// reader and writer switch over it exhaustively.
type Param interface {
	Kind() Kind
}

// Regular is a plain-old-data value, stored little-endian and padded to a
// whole number of words.
type Regular struct {
	Bytes []byte
}

// Handles transfers kernel handles. Copy duplicates the sender's references;
// move revokes them. The ids are opaque to the codec.
type Handles struct {
	Copy   bool
	Values []uint32
}

// CallingPID is the caller's process id, stamped by the kernel rather than
// supplied by the caller.
type CallingPID struct {
	PID uint32
}

// StaticBuffer is a counted byte region. On decode, Data is the region read
// from guest memory at the descriptor's pointer word; on encode, Data is
// written to guest memory at Address.
type StaticBuffer struct {
	ID      uint8
	Address uint32
	Data    []byte
}

// MappedBuffer describes a region mapped into the receiver. The codec passes
// the address through untouched.
type MappedBuffer struct {
	Perm    Perm
	Size    uint32
	Address uint32
}

// Perm is a mapped buffer's permission field.
type Perm uint8

const (
	PermRead  Perm = 1
	PermWrite Perm = 2
)

func (Regular) Kind() Kind      { return KindRegular }
func (Handles) Kind() Kind      { return KindHandles }
func (CallingPID) Kind() Kind   { return KindCallingPID }
func (StaticBuffer) Kind() Kind { return KindStaticBuffer }
func (MappedBuffer) Kind() Kind { return KindMappedBuffer }

// NewU32 builds a one-word regular parameter.
func NewU32(v uint32) Regular {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return Regular{Bytes: b}
}

// NewU64 builds a two-word regular parameter.
func NewU64(v uint64) Regular {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return Regular{Bytes: b}
}

// U32 reads the value of a one-word regular parameter.
func (r Regular) U32() uint32 {
	return binary.LittleEndian.Uint32(r.Bytes)
}

// U64 reads the value of a two-word regular parameter.
func (r Regular) U64() uint64 {
	return binary.LittleEndian.Uint64(r.Bytes)
}

// wordLen is the number of words the value occupies on the wire.
func (r Regular) wordLen() int {
	return (len(r.Bytes) + 3) / 4
}
