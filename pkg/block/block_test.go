package block

import (
	"bytes"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlock(t *testing.T) *Block {
	t.Helper()
	b, err := New(
		[]Field{
			{Name: "ts", Type: TypeTimestamp, Precision: PrecisionMilli},
			{Name: "current", Type: TypeFloat},
			{Name: "location", Type: TypeVarChar},
		},
		[]Column{
			FromTimestamps([]int64{1000, 2000, 3000}, PrecisionMilli),
			FromNullableFloat32s([]*float32{f32p(10.5), nil, f32p(12.25)}),
			FromNullableStrings([]*string{strp("sf"), strp("la"), nil}),
		},
	)
	require.NoError(t, err)
	return b
}

func f32p(v float32) *float32 { return &v }

func TestNewEnforcesAgreement(t *testing.T) {
	tests := []struct {
		name    string
		fields  []Field
		columns []Column
	}{
		{
			name:    "count mismatch",
			fields:  []Field{{Name: "a", Type: TypeInt}},
			columns: []Column{FromInt32s([]int32{1}), FromInt32s([]int32{2})},
		},
		{
			name:    "length mismatch",
			fields:  []Field{{Name: "a", Type: TypeInt}, {Name: "b", Type: TypeInt}},
			columns: []Column{FromInt32s([]int32{1, 2}), FromInt32s([]int32{3})},
		},
		{
			name:    "type mismatch",
			fields:  []Field{{Name: "a", Type: TypeBigInt}},
			columns: []Column{FromInt32s([]int32{1})},
		},
		{
			name:    "nil column",
			fields:  []Field{{Name: "a", Type: TypeInt}},
			columns: []Column{nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fields, tt.columns)
			assert.Error(t, err)
		})
	}
}

func TestBlockAccessors(t *testing.T) {
	b := testBlock(t)

	assert.Equal(t, 3, b.NRows())
	assert.Equal(t, 3, b.NCols())
	assert.Equal(t, "current", b.Schema()[1].Name)

	col, ok := b.ColumnByName("location")
	require.True(t, ok)
	assert.Equal(t, TypeVarChar, col.Type())
	_, ok = b.ColumnByName("nope")
	assert.False(t, ok)

	assert.Nil(t, b.Column(3))

	v, ok := b.Value(1, 1)
	require.True(t, ok)
	assert.True(t, v.IsNull())
	assert.Equal(t, TypeFloat, v.Type())

	v, ok = b.Value(0, 2)
	require.True(t, ok)
	raw, _ := v.Bytes()
	assert.Equal(t, []byte("sf"), raw)

	_, ok = b.Value(0, 3)
	assert.False(t, ok)
	_, ok = b.Value(3, 0)
	assert.False(t, ok)
}

func TestRowIterationWireOrder(t *testing.T) {
	b := testBlock(t)

	rows := b.Rows()
	assert.Equal(t, 3, rows.Remaining())

	var seen []int
	for {
		row, ok := rows.Next()
		if !ok {
			break
		}
		seen = append(seen, row.Index())

		names := []string{}
		for {
			name, _, ok := row.Next()
			if !ok {
				break
			}
			names = append(names, name)
		}
		assert.Equal(t, []string{"ts", "current", "location"}, names)
	}
	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, 0, rows.Remaining())

	// A fresh iterator restarts from row 0.
	again, ok := b.Rows().Next()
	require.True(t, ok)
	assert.Equal(t, 0, again.Index())
}

func TestRowValues(t *testing.T) {
	b := testBlock(t)

	row, ok := b.Row(1)
	require.True(t, ok)
	vals := row.Values()
	require.Len(t, vals, 3)
	ts, _ := vals[0].Time()
	assert.Equal(t, time.UnixMilli(2000).UTC(), ts.UTC())
	assert.True(t, vals[1].IsNull())

	it, _ := b.Row(2)
	vi := it.ValueIter()
	assert.Equal(t, 3, vi.Remaining())
	v, ok := vi.Next()
	require.True(t, ok)
	n, _ := v.Int64()
	assert.Equal(t, int64(3000), n)

	_, ok = b.Row(5)
	assert.False(t, ok)
}

func TestBlockWireRoundTrip(t *testing.T) {
	b := testBlock(t)

	var buf bytes.Buffer
	n, err := b.WriteWire(&buf)
	require.NoError(t, err)
	assert.Equal(t, b.WireSize(), n)
	assert.Equal(t, buf.Len(), n)

	dec, err := FromWirePayload(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, b.NRows(), dec.NRows())
	require.Equal(t, b.Schema(), dec.Schema())

	for row := 0; row < b.NRows(); row++ {
		for col := 0; col < b.NCols(); col++ {
			want, _ := b.Value(row, col)
			got, _ := dec.Value(row, col)
			assert.Equal(t, want, got, "cell (%d,%d)", row, col)
		}
	}

	// The decoded block re-encodes to the identical payload.
	var buf2 bytes.Buffer
	_, err = dec.WriteWire(&buf2)
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), buf2.Bytes())
}

func TestFromWirePayloadTruncated(t *testing.T) {
	b := testBlock(t)
	var buf bytes.Buffer
	_, err := b.WriteWire(&buf)
	require.NoError(t, err)

	full := buf.Bytes()
	for _, cut := range []int{3, blockHeaderLen + 2, len(full) - 1} {
		_, err := FromWirePayload(full[:cut])
		assert.Error(t, err, "cut at %d", cut)
	}
}

func TestBlockMarshalJSON(t *testing.T) {
	b := testBlock(t)

	raw, err := gojson.Marshal(b)
	require.NoError(t, err)

	var out struct {
		NRows  int `json:"nrows"`
		Schema []struct {
			Name      string `json:"name"`
			Type      string `json:"type"`
			Precision string `json:"precision"`
		} `json:"schema"`
		Rows [][]interface{} `json:"rows"`
	}
	require.NoError(t, gojson.Unmarshal(raw, &out))

	assert.Equal(t, 3, out.NRows)
	require.Len(t, out.Schema, 3)
	assert.Equal(t, "TIMESTAMP", out.Schema[0].Type)
	assert.NotEmpty(t, out.Schema[0].Precision)
	require.Len(t, out.Rows, 3)
	assert.Nil(t, out.Rows[1][1])
	assert.Equal(t, "sf", out.Rows[0][2])
}

func TestBlockAppend(t *testing.T) {
	a, err := New(
		[]Field{{Name: "n", Type: TypeInt}},
		[]Column{FromNullableInt32s([]*int32{int32p(1), nil, int32p(3)})},
	)
	require.NoError(t, err)
	b, err := New(
		[]Field{{Name: "n", Type: TypeInt}},
		[]Column{FromNullableInt32s([]*int32{nil, int32p(5)})},
	)
	require.NoError(t, err)

	merged, err := a.Append(b)
	require.NoError(t, err)
	require.Equal(t, 5, merged.NRows())

	var got []interface{}
	for i := 0; i < merged.NRows(); i++ {
		v, ok := merged.Value(i, 0)
		require.True(t, ok)
		got = append(got, v.Interface())
	}
	assert.Equal(t, []interface{}{int32(1), nil, int32(3), nil, int32(5)}, got)

	// Schema mismatches refuse to append.
	c, err := New(
		[]Field{{Name: "m", Type: TypeInt}},
		[]Column{FromInt32s([]int32{9})},
	)
	require.NoError(t, err)
	_, err = a.Append(c)
	assert.Error(t, err)
}

func TestBlockAppendWire(t *testing.T) {
	a := testBlock(t)

	var buf bytes.Buffer
	_, err := a.WriteWire(&buf)
	require.NoError(t, err)

	merged, err := a.AppendWire(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 6, merged.NRows())
	assert.Equal(t, a.Schema(), merged.Schema())

	// Row 3 is row 0 again.
	want, _ := a.Value(0, 2)
	got, _ := merged.Value(3, 2)
	assert.Equal(t, want.Interface(), got.Interface())
}
