package block

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestBytesViewBasics(t *testing.T) {
	v := FromNullableStrings([]*string{strp("alpha"), nil, strp(""), strp("delta")})

	assert.Equal(t, TypeVarChar, v.Type())
	assert.Equal(t, 4, v.Len())

	s, ok := v.GetString(0)
	require.True(t, ok)
	assert.Equal(t, "alpha", s)

	_, ok = v.Get(1)
	assert.False(t, ok)
	assert.True(t, v.IsNull(1))

	// Empty string is a present zero-length payload, not NULL.
	s, ok = v.GetString(2)
	require.True(t, ok)
	assert.Equal(t, "", s)
	assert.False(t, v.IsNull(2))

	_, ok = v.Get(4)
	assert.False(t, ok)
}

func TestBytesViewSliceRebasesOffsets(t *testing.T) {
	v := FromStrings([]string{"aa", "bbb", "c", "dddd"})

	s := v.Slice(1, 3)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Len())

	sv := s.(*BytesView)
	got, ok := sv.GetString(0)
	require.True(t, ok)
	assert.Equal(t, "bbb", got)
	got, ok = sv.GetString(1)
	require.True(t, ok)
	assert.Equal(t, "c", got)

	assert.Nil(t, v.Slice(4, 5))
	assert.Nil(t, v.Slice(2, 2))
}

func TestBytesViewConcat(t *testing.T) {
	a := FromNullableStrings([]*string{strp("x"), nil})
	b := FromStrings([]string{"y"})

	c, err := a.Concat(b)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.IsNull(1))
	val, ok := c.Value(2)
	require.True(t, ok)
	raw, _ := val.Bytes()
	assert.Equal(t, []byte("y"), raw)

	_, err = a.Concat(FromInt32s([]int32{1}))
	assert.Error(t, err)
}

func TestBytesViewWireRoundTrip(t *testing.T) {
	v := FromBinary([][]byte{{1, 2, 3}, nil, {}, {9}})

	var buf bytes.Buffer
	n, err := v.WriteWire(&buf)
	require.NoError(t, err)
	assert.Equal(t, v.wireSize(), n)
	// 1 bitmap byte + 5 offsets * 4 + 4 payload bytes.
	assert.Equal(t, 1+20+4, n)

	dec, rest, err := columnFromWire(TypeBinary, 0, 4, buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, rest)
	require.Equal(t, 4, dec.Len())

	db := dec.(*BytesView)
	got, ok := db.Get(0)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)
	assert.True(t, db.IsNull(1))
	got, ok = db.Get(2)
	require.True(t, ok)
	assert.Empty(t, got)
	got, ok = db.Get(3)
	require.True(t, ok)
	assert.Equal(t, []byte{9}, got)
}

func TestBytesViewWireRejectsBadOffsets(t *testing.T) {
	v := FromStrings([]string{"ab", "cd"})
	var buf bytes.Buffer
	_, err := v.WriteWire(&buf)
	require.NoError(t, err)

	raw := buf.Bytes()
	// Corrupt the offset table so it is no longer monotonic.
	// Layout: 1 bitmap byte, then 3 u32 offsets.
	raw[1+4] = 0xff
	_, _, err = columnFromWire(TypeVarChar, 0, 2, raw)
	assert.Error(t, err)

	_, _, err = columnFromWire(TypeVarChar, 0, 2, raw[:3])
	assert.Error(t, err)
}

func TestBytesIter(t *testing.T) {
	v := FromNullableStrings([]*string{strp("a"), nil, strp("c")})

	it := v.Iter()
	assert.Equal(t, 3, it.Remaining())

	val, null, ok := it.Next()
	require.True(t, ok)
	assert.False(t, null)
	assert.Equal(t, []byte("a"), val)

	_, null, ok = it.Next()
	require.True(t, ok)
	assert.True(t, null)

	val, null, ok = it.Next()
	require.True(t, ok)
	assert.False(t, null)
	assert.Equal(t, []byte("c"), val)

	_, _, ok = it.Next()
	assert.False(t, ok)
}
