package lumen

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-emu/lumen/config"
	"github.com/lumen-emu/lumen/ipc"
	"github.com/lumen-emu/lumen/result"
	"github.com/lumen-emu/lumen/service"
)

func newTestHost(t *testing.T, raw string) *Host {
	t.Helper()
	l, _ := test.NewNullLogger()
	c := config.NewC(l)
	require.NoError(t, c.LoadString(raw))

	h, err := Main(c, l)
	require.NoError(t, err)
	return h
}

func TestMainWiresAPTPorts(t *testing.T) {
	h := newTestHost(t, "logging:\n  level: debug\n")

	for _, port := range []string{"APT:U", "APT:S", "APT:A"} {
		s, ok := h.Service(port)
		require.True(t, ok, port)
		assert.Equal(t, "APT", s.Name())
	}
	_, ok := h.Service("FS:USER")
	assert.False(t, ok)
}

func TestDispatch(t *testing.T) {
	h := newTestHost(t, "logging:\n  level: error\n")

	b := ipc.NewBuffer()
	w := ipc.NewWriter(b, nil)
	require.NoError(t, w.Write(ipc.NewU32(0)))
	require.NoError(t, w.Finish(0x0001)) // GetLockHandle

	require.NoError(t, h.Dispatch("APT:U", b))
	assert.Equal(t, uint32(result.Success), b.Words()[1])
}

func TestDispatchUnboundPort(t *testing.T) {
	h := newTestHost(t, "logging: {}\n")
	assert.Error(t, h.Dispatch("GSP:Gpu", ipc.NewBuffer()))
}

func TestDispatchProtocolViolation(t *testing.T) {
	h := newTestHost(t, "logging: {}\n")

	// GetLockHandle wants one regular word; declare two
	b := ipc.NewBuffer()
	require.NoError(t, b.SetHeader(ipc.Header{CommandID: 0x0001, Regular: 2}))

	err := h.Dispatch("APT:U", b)
	assert.ErrorIs(t, err, service.ErrProtocolViolation)
}

func TestMainRejectsBadLogLevel(t *testing.T) {
	l, _ := test.NewNullLogger()
	c := config.NewC(l)
	require.NoError(t, c.LoadString("logging:\n  level: shouting\n"))

	_, err := Main(c, l)
	assert.Error(t, err)
}
