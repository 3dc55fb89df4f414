// control/config_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/ccio/api"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, uint64(4), o.Uint("log_level"))
	assert.Equal(t, 128, o.Int("tcp_backlog"))
	assert.Equal(t, 0, o.Int("tcp_poolsize"))
	assert.Equal(t, 1, o.Int("pipe_poolsize"))
	assert.Equal(t, 16384, o.Int("buf_size"))
	assert.Equal(t, 1024, o.Int("event_nevent"))
	assert.False(t, o.Bool("prealloc"))
}

func TestOptionsLoad(t *testing.T) {
	src := `
# listener
tcp_backlog: 0x40
tcp_poolsize:   010
prealloc: yes

log_level: 6
`
	o := DefaultOptions()
	require.NoError(t, o.Load(strings.NewReader(src)))
	assert.Equal(t, 64, o.Int("tcp_backlog"))
	assert.Equal(t, 8, o.Int("tcp_poolsize"))
	assert.True(t, o.Bool("prealloc"))
	assert.Equal(t, uint64(6), o.Uint("log_level"))

	snap := o.GetSnapshot()
	assert.Equal(t, uint64(64), snap["tcp_backlog"])
}

func TestOptionsLoadErrors(t *testing.T) {
	cases := map[string]string{
		"unknown":    "no_such_option: 1",
		"no colon":   "tcp_backlog 12",
		"bad bool":   "prealloc: maybe",
		"bad uint":   "tcp_backlog: -3",
		"bad name":   "tcp-backlog: 3",
		"long name":  strings.Repeat("a", MaxNameLen+1) + ": 1",
		"long value": "tcp_backlog: " + strings.Repeat("1", MaxValueLen+1),
		"long line":  "# " + strings.Repeat("x", MaxLineLen+1),
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			err := DefaultOptions().Load(strings.NewReader(src))
			require.Error(t, err)
		})
	}

	err := DefaultOptions().Load(strings.NewReader("\n\nbogus: 1\n"))
	require.ErrorIs(t, err, api.ErrUnknownOption)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParseLine(t *testing.T) {
	name, value, err := ParseLine("  buf_size :  4096  ")
	require.NoError(t, err)
	assert.Equal(t, "buf_size", name)
	assert.Equal(t, "4096", value)

	_, _, err = ParseLine("   # comment")
	assert.ErrorIs(t, err, errSkipLine)
	_, _, err = ParseLine("")
	assert.ErrorIs(t, err, errSkipLine)
}

func TestOptionsStringType(t *testing.T) {
	o, err := NewOptions(Option{Name: "addr", Type: OptionString, Default: "127.0.0.1:7000"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", o.String("addr"))
	require.NoError(t, o.Set("addr", "0.0.0.0:80"))
	assert.Equal(t, "0.0.0.0:80", o.String("addr"))
	assert.Zero(t, o.Uint("addr"))

	_, err = NewOptions(Option{Name: "flag", Type: OptionBool, Default: "on"})
	assert.Error(t, err)
}

func TestOptionsDescribe(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DefaultOptions().Describe(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(defaultOptions))
	assert.True(t, strings.HasPrefix(lines[0], "buf_poolsize"))
}
