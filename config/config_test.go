package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	l, _ := test.NewNullLogger()
	c := NewC(l)
	require.NoError(t, c.LoadString(`
logging:
  level: debug
  format: json
font:
  path: /tmp/shared_font.bin
  base: 402657280
memory:
  fastmem: yes
`))

	assert.Equal(t, "debug", c.GetString("logging.level", "info"))
	assert.Equal(t, "text", c.GetString("logging.missing", "text"))
	assert.Equal(t, uint32(0x18001000), c.GetUint32("font.base", 0))
	assert.Equal(t, 7, c.GetInt("font.nope", 7))
	assert.True(t, c.GetBool("memory.fastmem", false))
	assert.True(t, c.IsSet("font.path"))
	assert.False(t, c.IsSet("font.size"))
}

func TestLoadMergesLexically(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01-base.yaml"), []byte("a: 1\nb: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02-override.yaml"), []byte("b: 2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("b: 3\n"), 0o644))

	l, _ := test.NewNullLogger()
	c := NewC(l)
	require.NoError(t, c.Load(dir))

	assert.Equal(t, 1, c.GetInt("a", 0))
	assert.Equal(t, 2, c.GetInt("b", 0))
}

func TestLoadStringEmpty(t *testing.T) {
	l, _ := test.NewNullLogger()
	assert.Error(t, NewC(l).LoadString(""))
}
