package block

import (
	"io"
	"time"

	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// Column is one typed column of a block: element storage plus a null bitmap.
// All implementations share the same operation contract; only the element
// encoding differs. Checked accessors report "no value" for out-of-range
// rows rather than panicking.
type Column interface {
	// Type returns the declared column type.
	Type() Type
	// Len returns the logical row count.
	Len() int
	// IsNull reports whether the value at row is NULL.
	IsNull(row int) bool
	// Value returns the borrowed typed value at row (a null marker for NULL
	// rows). ok is false when row is out of range.
	Value(row int) (Value, bool)
	// Slice returns the column restricted to rows [start, end), nil when the
	// clamped range is empty or start is out of range.
	Slice(start, end int) Column
	// Concat returns a new column with the receiver's rows followed by
	// other's rows.
	Concat(other Column) (Column, error)
	// WriteWire writes the column's wire encoding and returns the bytes written.
	WriteWire(w io.Writer) (int, error)

	wireSize() int
	precision() Precision
}

// FromBools builds a boolean column.
func FromBools(vals []bool) *View[bool] {
	return newView(TypeBool, 0, boolCodec, vals, nil)
}

// FromNullableBools builds a boolean column with nil entries as NULL.
func FromNullableBools(vals []*bool) *View[bool] {
	return viewFromPtrs(TypeBool, 0, boolCodec, vals)
}

// FromInt8s builds a TINYINT column.
func FromInt8s(vals []int8) *View[int8] {
	return newView(TypeTinyInt, 0, int8Codec, vals, nil)
}

// FromNullableInt8s builds a TINYINT column with nil entries as NULL.
func FromNullableInt8s(vals []*int8) *View[int8] {
	return viewFromPtrs(TypeTinyInt, 0, int8Codec, vals)
}

// FromInt16s builds a SMALLINT column.
func FromInt16s(vals []int16) *View[int16] {
	return newView(TypeSmallInt, 0, int16Codec, vals, nil)
}

// FromNullableInt16s builds a SMALLINT column with nil entries as NULL.
func FromNullableInt16s(vals []*int16) *View[int16] {
	return viewFromPtrs(TypeSmallInt, 0, int16Codec, vals)
}

// FromInt32s builds an INT column.
func FromInt32s(vals []int32) *View[int32] {
	return newView(TypeInt, 0, int32Codec, vals, nil)
}

// FromNullableInt32s builds an INT column with nil entries as NULL.
func FromNullableInt32s(vals []*int32) *View[int32] {
	return viewFromPtrs(TypeInt, 0, int32Codec, vals)
}

// FromInt64s builds a BIGINT column.
func FromInt64s(vals []int64) *View[int64] {
	return newView(TypeBigInt, 0, int64Codec, vals, nil)
}

// FromNullableInt64s builds a BIGINT column with nil entries as NULL.
func FromNullableInt64s(vals []*int64) *View[int64] {
	return viewFromPtrs(TypeBigInt, 0, int64Codec, vals)
}

// FromUint8s builds a TINYINT UNSIGNED column.
func FromUint8s(vals []uint8) *View[uint8] {
	return newView(TypeUTinyInt, 0, uint8Codec, vals, nil)
}

// FromNullableUint8s builds a TINYINT UNSIGNED column with nil entries as NULL.
func FromNullableUint8s(vals []*uint8) *View[uint8] {
	return viewFromPtrs(TypeUTinyInt, 0, uint8Codec, vals)
}

// FromUint16s builds a SMALLINT UNSIGNED column.
func FromUint16s(vals []uint16) *View[uint16] {
	return newView(TypeUSmallInt, 0, uint16Codec, vals, nil)
}

// FromNullableUint16s builds a SMALLINT UNSIGNED column with nil entries as NULL.
func FromNullableUint16s(vals []*uint16) *View[uint16] {
	return viewFromPtrs(TypeUSmallInt, 0, uint16Codec, vals)
}

// FromUint32s builds an INT UNSIGNED column.
func FromUint32s(vals []uint32) *View[uint32] {
	return newView(TypeUInt, 0, uint32Codec, vals, nil)
}

// FromNullableUint32s builds an INT UNSIGNED column with nil entries as NULL.
func FromNullableUint32s(vals []*uint32) *View[uint32] {
	return viewFromPtrs(TypeUInt, 0, uint32Codec, vals)
}

// FromUint64s builds a BIGINT UNSIGNED column.
func FromUint64s(vals []uint64) *View[uint64] {
	return newView(TypeUBigInt, 0, uint64Codec, vals, nil)
}

// FromNullableUint64s builds a BIGINT UNSIGNED column with nil entries as NULL.
func FromNullableUint64s(vals []*uint64) *View[uint64] {
	return viewFromPtrs(TypeUBigInt, 0, uint64Codec, vals)
}

// FromFloat32s builds a FLOAT column.
func FromFloat32s(vals []float32) *View[float32] {
	return newView(TypeFloat, 0, float32Codec, vals, nil)
}

// FromNullableFloat32s builds a FLOAT column with nil entries as NULL.
func FromNullableFloat32s(vals []*float32) *View[float32] {
	return viewFromPtrs(TypeFloat, 0, float32Codec, vals)
}

// FromFloat64s builds a DOUBLE column.
func FromFloat64s(vals []float64) *View[float64] {
	return newView(TypeDouble, 0, float64Codec, vals, nil)
}

// FromNullableFloat64s builds a DOUBLE column with nil entries as NULL.
func FromNullableFloat64s(vals []*float64) *View[float64] {
	return viewFromPtrs(TypeDouble, 0, float64Codec, vals)
}

// FromTimestamps builds a TIMESTAMP column from epoch counts in the given precision.
func FromTimestamps(vals []int64, prec Precision) *View[int64] {
	return newView(TypeTimestamp, prec, int64Codec, vals, nil)
}

// FromNullableTimestamps builds a TIMESTAMP column with nil entries as NULL.
func FromNullableTimestamps(vals []*int64, prec Precision) *View[int64] {
	return viewFromPtrs(TypeTimestamp, prec, int64Codec, vals)
}

// FromTimes builds a TIMESTAMP column from time.Time values, truncated to
// the given precision.
func FromTimes(vals []time.Time, prec Precision) *View[int64] {
	epochs := make([]int64, len(vals))
	for i, t := range vals {
		switch prec {
		case PrecisionMicro:
			epochs[i] = t.UnixMicro()
		case PrecisionNano:
			epochs[i] = t.UnixNano()
		default:
			epochs[i] = t.UnixMilli()
		}
	}
	return FromTimestamps(epochs, prec)
}

// FromStrings builds a VARCHAR column.
func FromStrings(vals []string) *BytesView {
	bs := make([][]byte, len(vals))
	for i, s := range vals {
		bs[i] = []byte(s)
	}
	return newBytesView(TypeVarChar, bs, nil)
}

// FromNullableStrings builds a VARCHAR column with nil entries as NULL.
func FromNullableStrings(vals []*string) *BytesView {
	bs := make([][]byte, len(vals))
	nulls := make([]bool, len(vals))
	for i, s := range vals {
		if s == nil {
			nulls[i] = true
		} else {
			bs[i] = []byte(*s)
		}
	}
	return newBytesView(TypeVarChar, bs, nulls)
}

// FromBinary builds a BINARY column. Nil entries are NULL.
func FromBinary(vals [][]byte) *BytesView {
	bs := make([][]byte, len(vals))
	nulls := make([]bool, len(vals))
	for i, v := range vals {
		if v == nil {
			nulls[i] = true
		} else {
			bs[i] = v
		}
	}
	return newBytesView(TypeBinary, bs, nulls)
}

// columnFromWire dispatches wire decoding on the declared column type.
func columnFromWire(ty Type, prec Precision, nrows int, b []byte) (Column, []byte, error) {
	switch ty {
	case TypeBool:
		return wireView(ty, prec, boolCodec, nrows, b)
	case TypeTinyInt:
		return wireView(ty, prec, int8Codec, nrows, b)
	case TypeSmallInt:
		return wireView(ty, prec, int16Codec, nrows, b)
	case TypeInt:
		return wireView(ty, prec, int32Codec, nrows, b)
	case TypeBigInt, TypeTimestamp:
		return wireView(ty, prec, int64Codec, nrows, b)
	case TypeUTinyInt:
		return wireView(ty, prec, uint8Codec, nrows, b)
	case TypeUSmallInt:
		return wireView(ty, prec, uint16Codec, nrows, b)
	case TypeUInt:
		return wireView(ty, prec, uint32Codec, nrows, b)
	case TypeUBigInt:
		return wireView(ty, prec, uint64Codec, nrows, b)
	case TypeFloat:
		return wireView(ty, prec, float32Codec, nrows, b)
	case TypeDouble:
		return wireView(ty, prec, float64Codec, nrows, b)
	case TypeVarChar, TypeBinary:
		return bytesFromWire(ty, nrows, b)
	default:
		return nil, nil, errors.Newf(errors.ErrorTypeFrame, "unknown column type %d", uint8(ty))
	}
}

// wireView adapts the generic decoder to the Column interface, keeping nil
// concrete pointers out of the interface value.
func wireView[T any](ty Type, prec Precision, c fixedCodec[T], nrows int, b []byte) (Column, []byte, error) {
	v, rest, err := viewFromWire(ty, prec, c, nrows, b)
	if err != nil {
		return nil, nil, err
	}
	return v, rest, nil
}
