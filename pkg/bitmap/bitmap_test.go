package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBools(t *testing.T) {
	tests := []struct {
		name  string
		flags []bool
		bytes []byte
	}{
		{
			name:  "empty",
			flags: nil,
			bytes: []byte{},
		},
		{
			name:  "single null",
			flags: []bool{true},
			bytes: []byte{0x80},
		},
		{
			name:  "eight rows",
			flags: []bool{true, false, true, false, false, false, false, true},
			bytes: []byte{0xA1},
		},
		{
			name:  "nine rows spills into second byte",
			flags: []bool{false, false, false, false, false, false, false, false, true},
			bytes: []byte{0x00, 0x80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromBools(tt.flags)
			assert.Equal(t, len(tt.flags), m.Len())
			assert.Equal(t, tt.bytes, m.Bytes())
			for i, f := range tt.flags {
				assert.Equal(t, f, m.IsNull(i), "row %d", i)
			}
		})
	}
}

func TestIsNullOutOfRange(t *testing.T) {
	m := FromBools([]bool{true, true})
	assert.False(t, m.IsNull(-1))
	assert.False(t, m.IsNull(2))
	assert.False(t, m.IsNull(100))
}

func TestFromBytesRoundTrip(t *testing.T) {
	flags := []bool{true, false, false, true, true, false, true, false, false, true}
	m := FromBools(flags)

	back := FromBytes(m.Bytes(), m.Len())
	require.Equal(t, m.Len(), back.Len())
	assert.Equal(t, flags, back.ToBools())
}

func TestFromBytesTooShort(t *testing.T) {
	m := FromBytes([]byte{0xFF}, 9)
	assert.Equal(t, 0, m.Len())
}

func TestSliceAligned(t *testing.T) {
	flags := make([]bool, 24)
	flags[8] = true
	flags[15] = true
	flags[23] = true
	m := FromBools(flags)

	s := m.Slice(8, 24)
	require.Equal(t, 16, s.Len())
	assert.True(t, s.IsNull(0))
	assert.True(t, s.IsNull(7))
	assert.True(t, s.IsNull(15))
	assert.False(t, s.IsNull(1))
}

func TestSliceUnalignedRepacks(t *testing.T) {
	flags := []bool{false, true, true, false, true, false, false, false, true, true}
	m := FromBools(flags)

	s := m.Slice(3, 10)
	require.Equal(t, 7, s.Len())
	for i := 0; i < 7; i++ {
		assert.Equal(t, flags[3+i], s.IsNull(i), "row %d", i)
	}
	// The repacked slice is byte-aligned at its own bit 0.
	assert.Equal(t, (7+7)/8, len(s.Bytes()))
}

func TestSliceInvalidRanges(t *testing.T) {
	m := FromBools([]bool{true, false, true})
	assert.Equal(t, 0, m.Slice(2, 2).Len())
	assert.Equal(t, 0, m.Slice(3, 4).Len())
	assert.Equal(t, 0, m.Slice(-1, 2).Len())
	assert.Equal(t, 0, m.Slice(0, 4).Len())
}

func TestCountNulls(t *testing.T) {
	m := FromBools([]bool{true, false, true, true, false})
	assert.Equal(t, 3, m.CountNulls())
}
