package ipc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMemory is a tiny flat guest address space for buffer translation.
type testMemory struct {
	base uint32
	data []byte
}

func newTestMemory(base uint32, size int) *testMemory {
	return &testMemory{base: base, data: make([]byte, size)}
}

func (m *testMemory) ReadBlock(addr uint32, size uint32) ([]byte, error) {
	if addr < m.base || int(addr-m.base)+int(size) > len(m.data) {
		return nil, fmt.Errorf("read of %d bytes at %#08x outside memory", size, addr)
	}
	out := make([]byte, size)
	copy(out, m.data[addr-m.base:])
	return out, nil
}

func (m *testMemory) WriteBlock(addr uint32, data []byte) error {
	if addr < m.base || int(addr-m.base)+len(data) > len(m.data) {
		return fmt.Errorf("write of %d bytes at %#08x outside memory", len(data), addr)
	}
	copy(m.data[addr-m.base:], data)
	return nil
}

func writeAll(t *testing.T, b *Buffer, mem Memory, commandID uint16, params ...Param) Header {
	t.Helper()
	w := NewWriter(b, mem)
	for _, p := range params {
		require.NoError(t, w.Write(p))
	}
	require.NoError(t, w.Finish(commandID))
	return b.Header()
}

func TestRoundTripMixed(t *testing.T) {
	mem := newTestMemory(0x1000, 0x100)
	require.NoError(t, mem.WriteBlock(0x1010, []byte{0xDE, 0xAD}))

	b := NewBuffer()
	h := writeAll(t, b, mem, 0x0C,
		NewU32(5),
		NewU64(0x1122334455667788),
		Handles{Copy: true, Values: []uint32{0xAB, 0xCD}},
		CallingPID{PID: 42},
		StaticBuffer{ID: 1, Address: 0x1010, Data: []byte{0xDE, 0xAD}},
		MappedBuffer{Perm: PermRead, Size: 0x40, Address: 0x2000},
	)

	assert.Equal(t, uint16(0x0C), h.CommandID)
	assert.Equal(t, uint8(3), h.Regular)   // 1 + 2 words
	assert.Equal(t, uint8(9), h.Translate) // 3 + 2 + 2 + 2 words

	r, err := NewReader(b, h, mem)
	require.NoError(t, err)

	p, err := r.Next(U32)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), p.(Regular).U32())

	p, err = r.Next(U64)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1122334455667788), p.(Regular).U64())

	p, err = r.Next(HandlesType)
	require.NoError(t, err)
	assert.Equal(t, Handles{Copy: true, Values: []uint32{0xAB, 0xCD}}, p)

	p, err = r.Next(CallingPIDType)
	require.NoError(t, err)
	assert.Equal(t, CallingPID{PID: 42}, p)

	p, err = r.Next(StaticBufferType)
	require.NoError(t, err)
	assert.Equal(t, StaticBuffer{ID: 1, Address: 0x1010, Data: []byte{0xDE, 0xAD}}, p)

	p, err = r.Next(MappedBufferType)
	require.NoError(t, err)
	assert.Equal(t, MappedBuffer{Perm: PermRead, Size: 0x40, Address: 0x2000}, p)

	assert.NoError(t, r.Finish())
}

func TestHandleRoundTripCost(t *testing.T) {
	for k := 1; k <= 5; k++ {
		values := make([]uint32, k)
		for i := range values {
			values[i] = uint32(0x100 + i)
		}

		b := NewBuffer()
		h := writeAll(t, b, nil, 1, Handles{Copy: true, Values: values})
		require.Equal(t, uint8(k+1), h.Translate)

		r, err := NewReader(b, h, nil)
		require.NoError(t, err)
		p, err := r.Next(HandlesType)
		require.NoError(t, err)
		assert.Equal(t, Handles{Copy: true, Values: values}, p)
		assert.NoError(t, r.Finish())
	}
}

func TestOrderingViolation(t *testing.T) {
	w := NewWriter(NewBuffer(), nil)
	require.NoError(t, w.Write(NewU32(1)))
	require.NoError(t, w.Write(Handles{Values: []uint32{7}}))

	err := w.Write(NewU32(2))
	assert.ErrorIs(t, err, ErrOrderingViolation)
}

func TestReadBudgetExceeded(t *testing.T) {
	b := NewBuffer()
	writeAll(t, b, nil, 1, NewU32(1))

	r, err := NewReader(b, b.Header(), nil)
	require.NoError(t, err)
	_, err = r.Next(U64)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}

func TestTranslateBudgetExceeded(t *testing.T) {
	b := NewBuffer()
	// descriptor claims three handles but the header only declares two
	// translate words
	b.Words()[1] = 2 << descHandleCountPos
	b.Words()[2] = 0xAA
	require.NoError(t, b.SetHeader(Header{CommandID: 1, Translate: 2}))

	r, err := NewReader(b, b.Header(), nil)
	require.NoError(t, err)
	_, err = r.Next(HandlesType)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}

func TestUnderConsumption(t *testing.T) {
	b := NewBuffer()
	writeAll(t, b, nil, 1, NewU32(1), NewU32(2))

	r, err := NewReader(b, b.Header(), nil)
	require.NoError(t, err)
	_, err = r.Next(U32)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Finish(), ErrUnderConsumption)
}

func TestMalformedHandleDescriptorRejected(t *testing.T) {
	b := NewBuffer()
	// stray bit 1 set alongside the copy flag
	b.Words()[1] = 0x12
	b.Words()[2] = 0xAA
	require.NoError(t, b.SetHeader(Header{CommandID: 1, Translate: 2}))

	r, err := NewReader(b, b.Header(), nil)
	require.NoError(t, err)
	_, err = r.Next(HandlesType)
	assert.ErrorIs(t, err, ErrMalformedDescriptor)
}

func TestExpectedKindMismatch(t *testing.T) {
	b := NewBuffer()
	writeAll(t, b, nil, 1, CallingPID{PID: 3})

	r, err := NewReader(b, b.Header(), nil)
	require.NoError(t, err)
	_, err = r.Next(HandlesType)
	assert.ErrorIs(t, err, ErrMalformedDescriptor)
}

func TestHeaderOverrunsBuffer(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.SetHeader(Header{Regular: 40, Translate: 40}))

	_, err := NewReader(b, b.Header(), nil)
	assert.ErrorIs(t, err, ErrBufferExhausted)
}

func TestStaticBufferWriteCopiesOut(t *testing.T) {
	mem := newTestMemory(0x2000, 0x40)

	b := NewBuffer()
	writeAll(t, b, mem, 1, StaticBuffer{ID: 0, Address: 0x2004, Data: []byte{1, 2, 3}})

	got, err := mem.ReadBlock(0x2004, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}
