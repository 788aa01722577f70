package picking

import (
	"image/color"
	"testing"

	"github.com/JackWithOneEye/hilbertchart/internal/ranges"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiers(t *testing.T) {
	tests := []struct {
		expected     int
		checksumBits uint
		capacity     int
	}{
		{0, 6, 1<<18 - 1},
		{1_000, 6, 1<<18 - 1},
		{1 << 20, 3, 1<<21 - 1},
		{1<<24 - 1, 0, 1<<24 - 1},
		{1 << 25, 0, 1<<24 - 1},
	}
	for _, tt := range tests {
		ix := NewIndex(tt.expected)
		assert.Equal(t, tt.checksumBits, ix.ChecksumBits(), "expected %d", tt.expected)
		assert.Equal(t, tt.capacity, ix.Capacity(), "expected %d", tt.expected)
		if tt.expected < 1<<24 {
			assert.GreaterOrEqual(t, ix.Capacity(), tt.expected)
		}
	}
}

func TestRegisterLookupRoundTrip(t *testing.T) {
	for _, n := range []int{1, 100, 70_000, 300_000} {
		ix := NewIndex(n)
		rs := make([]*ranges.Range, n)
		colors := make([]color.RGBA, n)
		for i := range rs {
			rs[i] = ranges.New(uint64(i), 1)
			c, ok := ix.Register(rs[i])
			require.True(t, ok)
			require.NotEqual(t, color.RGBA{A: 0xff}, c, "black is reserved")
			colors[i] = c
		}
		for i := range rs {
			require.Same(t, rs[i], ix.Lookup(colors[i]))
		}
	}
}

func TestLookupRejectsBlendedColors(t *testing.T) {
	ix := NewIndex(10)
	a, _ := ix.Register(ranges.New(0, 1))
	b, _ := ix.Register(ranges.New(1, 1))

	blend := color.RGBA{R: (a.R + b.R) / 2, G: (a.G + b.G) / 2, B: a.B/2 + b.B/2 + 1, A: 0xff}
	assert.Nil(t, ix.Lookup(blend))
	assert.Nil(t, ix.Lookup(color.RGBA{R: a.R, G: a.G, B: a.B, A: 0x80}))
	assert.Nil(t, ix.Lookup(color.RGBA{A: 0xff}))
	assert.Nil(t, ix.Lookup(color.RGBA{}))
}

func TestExhaustionDegrades(t *testing.T) {
	ix := NewIndex(2)
	ix.capacity = 2

	first, ok := ix.Register(ranges.New(0, 1))
	require.True(t, ok)
	_, ok = ix.Register(ranges.New(1, 1))
	require.True(t, ok)

	c, ok := ix.Register(ranges.New(2, 1))
	assert.False(t, ok)
	assert.Equal(t, color.RGBA{}, c)
	assert.Equal(t, 2, ix.Len())
	assert.NotNil(t, ix.Lookup(first))

	third := uint32(3)<<ix.checksumBits | ix.checksum(3)
	assert.Nil(t, ix.Lookup(color.RGBA{R: uint8(third >> 16), G: uint8(third >> 8), B: uint8(third), A: 0xff}))
}

func TestStaleBufferNeverResolves(t *testing.T) {
	ix := NewIndex(4)
	buf := NewBuffer(4, 4)
	old := ranges.New(0, 1)

	buf.Begin(ix)
	c, _ := ix.Register(old)
	buf.Set(1, 1, c)
	assert.Same(t, old, ix.Pick(buf, 1, 1))
	assert.Nil(t, ix.Pick(buf, 0, 0))
	assert.Nil(t, ix.Pick(buf, 9, 9))

	// a new pass hands the same colour to another range; the old buffer must
	// not resolve to it
	ix.Reset()
	recycled, _ := ix.Register(ranges.New(5, 1))
	require.Equal(t, c, recycled)
	assert.Nil(t, ix.Pick(buf, 1, 1))

	buf.Begin(ix)
	buf.Set(1, 1, recycled)
	assert.Equal(t, uint64(5), ix.Pick(buf, 1, 1).Start)
}
