package arrowconv

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/chronodb-go/pkg/block"
)

func strp(s string) *string { return &s }
func f64p(v float64) *float64 { return &v }

func TestToRecord(t *testing.T) {
	b, err := block.New(
		[]block.Field{
			{Name: "ts", Type: block.TypeTimestamp, Precision: block.PrecisionMicro},
			{Name: "value", Type: block.TypeDouble},
			{Name: "location", Type: block.TypeVarChar},
		},
		[]block.Column{
			block.FromTimestamps([]int64{1000, 2000}, block.PrecisionMicro),
			block.FromNullableFloat64s([]*float64{f64p(1.5), nil}),
			block.FromNullableStrings([]*string{strp("sf"), nil}),
		},
	)
	require.NoError(t, err)

	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	rec, err := ToRecord(b, mem)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows())
	assert.Equal(t, int64(3), rec.NumCols())

	tsType, ok := rec.Schema().Field(0).Type.(*arrow.TimestampType)
	require.True(t, ok)
	assert.Equal(t, arrow.Microsecond, tsType.Unit)

	ts := rec.Column(0).(*array.Timestamp)
	assert.Equal(t, arrow.Timestamp(1000), ts.Value(0))

	vals := rec.Column(1).(*array.Float64)
	assert.Equal(t, 1.5, vals.Value(0))
	assert.True(t, vals.IsNull(1))

	locs := rec.Column(2).(*array.String)
	assert.Equal(t, "sf", locs.Value(0))
	assert.True(t, locs.IsNull(1))
}

func TestToRecordAllFixedTypes(t *testing.T) {
	b, err := block.New(
		[]block.Field{
			{Name: "b", Type: block.TypeBool},
			{Name: "i8", Type: block.TypeTinyInt},
			{Name: "i64", Type: block.TypeBigInt},
			{Name: "u32", Type: block.TypeUInt},
			{Name: "f32", Type: block.TypeFloat},
			{Name: "bin", Type: block.TypeBinary},
		},
		[]block.Column{
			block.FromBools([]bool{true}),
			block.FromInt8s([]int8{-5}),
			block.FromInt64s([]int64{1 << 40}),
			block.FromUint32s([]uint32{7}),
			block.FromFloat32s([]float32{2.5}),
			block.FromBinary([][]byte{{0xde, 0xad}}),
		},
	)
	require.NoError(t, err)

	rec, err := ToRecord(b, nil)
	require.NoError(t, err)
	defer rec.Release()

	assert.True(t, rec.Column(0).(*array.Boolean).Value(0))
	assert.Equal(t, int8(-5), rec.Column(1).(*array.Int8).Value(0))
	assert.Equal(t, int64(1<<40), rec.Column(2).(*array.Int64).Value(0))
	assert.Equal(t, uint32(7), rec.Column(3).(*array.Uint32).Value(0))
	assert.Equal(t, float32(2.5), rec.Column(4).(*array.Float32).Value(0))
	assert.Equal(t, []byte{0xde, 0xad}, rec.Column(5).(*array.Binary).Value(0))
}

func TestArrowSchemaRejectsUnknownType(t *testing.T) {
	_, err := ArrowSchema([]block.Field{{Name: "x", Type: block.Type(200)}})
	assert.Error(t, err)
}
