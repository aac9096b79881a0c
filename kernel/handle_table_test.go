package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleTableCreateGetClose(t *testing.T) {
	ht := NewHandleTable()
	ev := NewEvent("test")

	h, err := ht.Create(ev)
	require.NoError(t, err)
	require.NotEqual(t, Handle(0), h)

	obj, err := ht.Get(h)
	require.NoError(t, err)
	assert.Same(t, ev, obj)

	require.NoError(t, ht.Close(h))
	_, err = ht.Get(h)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.ErrorIs(t, ht.Close(h), ErrInvalidHandle)
}

func TestTransferMoveRevokesSender(t *testing.T) {
	src, dst := NewHandleTable(), NewHandleTable()
	ev := NewEvent("moved")
	h, err := src.Create(ev)
	require.NoError(t, err)

	nh, err := src.Transfer(h, dst, false)
	require.NoError(t, err)

	obj, err := dst.Get(nh)
	require.NoError(t, err)
	assert.Same(t, ev, obj)

	_, err = src.Get(h)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestTransferCopyKeepsSender(t *testing.T) {
	src, dst := NewHandleTable(), NewHandleTable()
	ev := NewEvent("copied")
	h, err := src.Create(ev)
	require.NoError(t, err)

	nh, err := src.Transfer(h, dst, true)
	require.NoError(t, err)

	for table, handle := range map[*HandleTable]Handle{src: h, dst: nh} {
		obj, err := table.Get(handle)
		require.NoError(t, err)
		assert.Same(t, ev, obj)
	}
}

func TestTransferInvalidHandle(t *testing.T) {
	src, dst := NewHandleTable(), NewHandleTable()
	_, err := src.Transfer(99, dst, true)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}
