package ipc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallZeroArgZeroResult(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.SetHeader(Header{CommandID: 0x43}))

	called := false
	err := Call(b, nil, Func{
		Name: "NotifyToWait",
		Fn: func(args []Param) ([]Param, error) {
			called = true
			assert.Empty(t, args)
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, Header{CommandID: 0x43}, b.Header())
}

func TestCallMixedSignature(t *testing.T) {
	b := NewBuffer()
	writeAll(t, b, nil, 0x0C, NewU32(5), NewU32(7), Handles{Values: []uint32{9}})

	err := Call(b, nil, Func{
		Name: "SendParameter",
		Args: []Type{U32, U32, HandlesType},
		Fn: func(args []Param) ([]Param, error) {
			assert.Equal(t, uint32(5), args[0].(Regular).U32())
			assert.Equal(t, uint32(7), args[1].(Regular).U32())
			assert.Equal(t, Handles{Values: []uint32{9}}, args[2])
			return []Param{NewU32(0), Handles{Copy: true, Values: []uint32{0x30}}}, nil
		},
	})
	require.NoError(t, err)

	// reply header keeps the command id, lengths are recomputed
	h := b.Header()
	assert.Equal(t, Header{CommandID: 0x0C, Regular: 1, Translate: 2}, h)

	r, err := NewReader(b, h, nil)
	require.NoError(t, err)
	res, err := r.Next(U32)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), res.(Regular).U32())
	res, err = r.Next(HandlesType)
	require.NoError(t, err)
	assert.Equal(t, Handles{Copy: true, Values: []uint32{0x30}}, res)
	assert.NoError(t, r.Finish())
}

func TestCallUnderConsumption(t *testing.T) {
	b := NewBuffer()
	writeAll(t, b, nil, 1, NewU32(1), NewU32(2))

	err := Call(b, nil, Func{
		Name: "Short",
		Args: []Type{U32},
		Fn: func(args []Param) ([]Param, error) {
			t.Fatal("handler must not run on a consumption mismatch")
			return nil, nil
		},
	})
	assert.ErrorIs(t, err, ErrUnderConsumption)
}

func TestCallOverConsumption(t *testing.T) {
	b := NewBuffer()
	writeAll(t, b, nil, 1, NewU32(1))

	err := Call(b, nil, Func{
		Name: "Long",
		Args: []Type{U32, U32},
		Fn: func(args []Param) ([]Param, error) {
			t.Fatal("handler must not run on a consumption mismatch")
			return nil, nil
		},
	})
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}

func TestCallHandlerFault(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.SetHeader(Header{CommandID: 2}))

	boom := errors.New("boom")
	err := Call(b, nil, Func{
		Name: "Faulty",
		Fn:   func(args []Param) ([]Param, error) { return nil, boom },
	})
	assert.ErrorIs(t, err, boom)
}
