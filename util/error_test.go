package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultErrorWrapping(t *testing.T) {
	inner := errors.New("descriptor mismatch")
	err := NewFault("halting call path", map[string]any{"service": "APT"}, inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "halting call path")
	assert.Contains(t, err.Error(), "descriptor mismatch")
}

func TestLogFaultUsesContext(t *testing.T) {
	l, hook := test.NewNullLogger()

	LogFault("fallback", NewFault("halting call path", map[string]any{"service": "APT"}, errors.New("boom")), l)
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "halting call path", entry.Message)
	assert.Equal(t, "APT", entry.Data["service"])

	hook.Reset()
	LogFault("fallback", fmt.Errorf("wrapped: %w", errors.New("plain")), l)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "fallback", hook.LastEntry().Message)
}
