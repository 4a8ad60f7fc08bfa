package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortRange(t *testing.T) {
	cases := map[string]PortRange{
		"1-1024":      {Start: 1, End: 1024},
		"80-80":       {Start: 80, End: 80},
		" 22-443 ":    {Start: 22, End: 443},
		"1-65535":     {Start: 1, End: 65535},
		"8000 - 8100": {Start: 8000, End: 8100},
	}
	for input, expected := range cases {
		t.Run(input, func(t *testing.T) {
			r, err := ParsePortRange(input)
			require.NoError(t, err)
			assert.Equal(t, expected, r)
		})
	}
}

func TestParsePortRangeInvalid(t *testing.T) {
	cases := []string{
		"",
		"80",
		"10-1",
		"0-5",
		"1-70000",
		"abc-def",
		"1-2-3",
	}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePortRange(input)
			require.Error(t, err)
		})
	}
}

func TestPortRangeString(t *testing.T) {
	r, err := NewPortRange(22, 443)
	require.NoError(t, err)
	assert.Equal(t, "22-443", r.String())
}

func TestDefaultPortRange(t *testing.T) {
	r := DefaultPortRange()
	assert.Equal(t, uint16(1), r.Start)
	assert.Equal(t, uint16(65535), r.End)
	assert.Equal(t, 65535, r.Size())
}

func TestPortRangePorts(t *testing.T) {
	r, err := NewPortRange(10, 14)
	require.NoError(t, err)
	assert.Equal(t, []uint16{10, 11, 12, 13, 14}, r.Ports())
	assert.Equal(t, 5, r.Size())

	single, err := NewPortRange(80, 80)
	require.NoError(t, err)
	assert.Equal(t, []uint16{80}, single.Ports())
}
