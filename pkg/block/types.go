// Package block implements the columnar block model of the ChronoDB driver:
// typed column views over contiguous byte buffers, null bitmaps, rectangular
// blocks with row iteration, and the bridge that scans one row into an
// application struct.
//
// Blocks are immutable once constructed. Concurrent readers may share one
// Block without locking. Row views borrow the Block they came from and must
// not outlive it.
package block

import (
	"fmt"
	"math"
	"time"
)

// Type identifies the logical type of a column. The numeric values are part
// of the wire format and must not be reordered.
type Type uint8

const (
	// TypeNull marks a column of unknown type (only valid inside Value null markers)
	TypeNull Type = 0
	// TypeBool is a boolean column, one byte per row on the wire
	TypeBool Type = 1
	// TypeTinyInt is a signed 8-bit integer column
	TypeTinyInt Type = 2
	// TypeSmallInt is a signed 16-bit integer column
	TypeSmallInt Type = 3
	// TypeInt is a signed 32-bit integer column
	TypeInt Type = 4
	// TypeBigInt is a signed 64-bit integer column
	TypeBigInt Type = 5
	// TypeFloat is a 32-bit floating point column
	TypeFloat Type = 6
	// TypeDouble is a 64-bit floating point column
	TypeDouble Type = 7
	// TypeVarChar is a variable-length text column
	TypeVarChar Type = 8
	// TypeTimestamp is a 64-bit epoch timestamp column with per-column precision
	TypeTimestamp Type = 9
	// TypeBinary is a variable-length binary column
	TypeBinary Type = 10
	// TypeUTinyInt is an unsigned 8-bit integer column
	TypeUTinyInt Type = 11
	// TypeUSmallInt is an unsigned 16-bit integer column
	TypeUSmallInt Type = 12
	// TypeUInt is an unsigned 32-bit integer column
	TypeUInt Type = 13
	// TypeUBigInt is an unsigned 64-bit integer column
	TypeUBigInt Type = 14
)

// String returns the SQL-ish name of the type.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeBool:
		return "BOOL"
	case TypeTinyInt:
		return "TINYINT"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeInt:
		return "INT"
	case TypeBigInt:
		return "BIGINT"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeVarChar:
		return "VARCHAR"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeBinary:
		return "BINARY"
	case TypeUTinyInt:
		return "TINYINT UNSIGNED"
	case TypeUSmallInt:
		return "SMALLINT UNSIGNED"
	case TypeUInt:
		return "INT UNSIGNED"
	case TypeUBigInt:
		return "BIGINT UNSIGNED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

// FixedWidth returns the per-element byte width of a fixed-width type,
// or 0 for variable-length and unknown types.
func (t Type) FixedWidth() int {
	switch t {
	case TypeBool, TypeTinyInt, TypeUTinyInt:
		return 1
	case TypeSmallInt, TypeUSmallInt:
		return 2
	case TypeInt, TypeUInt, TypeFloat:
		return 4
	case TypeBigInt, TypeUBigInt, TypeDouble, TypeTimestamp:
		return 8
	default:
		return 0
	}
}

// IsVarLen reports whether the type carries a per-row offset table.
func (t Type) IsVarLen() bool {
	return t == TypeVarChar || t == TypeBinary
}

// Precision is the unit of a timestamp column.
type Precision uint8

const (
	// PrecisionMilli stores milliseconds since the Unix epoch
	PrecisionMilli Precision = 0
	// PrecisionMicro stores microseconds since the Unix epoch
	PrecisionMicro Precision = 1
	// PrecisionNano stores nanoseconds since the Unix epoch
	PrecisionNano Precision = 2
)

// String returns the precision unit name.
func (p Precision) String() string {
	switch p {
	case PrecisionMilli:
		return "ms"
	case PrecisionMicro:
		return "us"
	case PrecisionNano:
		return "ns"
	default:
		return fmt.Sprintf("precision(%d)", uint8(p))
	}
}

// Time converts an epoch count in this precision to a time.Time.
func (p Precision) Time(v int64) time.Time {
	switch p {
	case PrecisionMicro:
		return time.UnixMicro(v)
	case PrecisionNano:
		return time.Unix(0, v)
	default:
		return time.UnixMilli(v)
	}
}

// Value is one borrowed, typed cell of a block. A null Value still carries
// the declared type of its column. Variable-length payloads reference the
// block's buffer; use Interface or the typed accessors to convert lazily.
type Value struct {
	ty   Type
	prec Precision
	null bool
	num  uint64
	raw  []byte
}

// Null returns a null marker carrying the declared column type.
func Null(ty Type) Value {
	return Value{ty: ty, null: true}
}

// BoolValue wraps a boolean.
func BoolValue(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{ty: TypeBool, num: n}
}

// IntValue wraps a signed integer of the given type.
func IntValue(ty Type, v int64) Value {
	return Value{ty: ty, num: uint64(v)}
}

// UintValue wraps an unsigned integer of the given type.
func UintValue(ty Type, v uint64) Value {
	return Value{ty: ty, num: v}
}

// FloatValue wraps a floating point number of the given type.
func FloatValue(ty Type, v float64) Value {
	return Value{ty: ty, num: math.Float64bits(v)}
}

// TimestampValue wraps an epoch count with its precision.
func TimestampValue(v int64, prec Precision) Value {
	return Value{ty: TypeTimestamp, prec: prec, num: uint64(v)}
}

// BytesValue wraps a variable-length payload without copying it.
func BytesValue(ty Type, b []byte) Value {
	return Value{ty: ty, raw: b}
}

// Type returns the declared column type of the value.
func (v Value) Type() Type {
	return v.ty
}

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool {
	return v.null
}

// Bool returns the boolean value. ok is false for nulls and non-bool types.
func (v Value) Bool() (b bool, ok bool) {
	if v.null || v.ty != TypeBool {
		return false, false
	}
	return v.num != 0, true
}

// Int64 returns the value as a signed 64-bit integer. Signed integer and
// timestamp types convert directly; unsigned types convert when they fit.
func (v Value) Int64() (int64, bool) {
	if v.null {
		return 0, false
	}
	switch v.ty {
	case TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt, TypeTimestamp:
		return int64(v.num), true
	case TypeUTinyInt, TypeUSmallInt, TypeUInt:
		return int64(v.num), true
	case TypeUBigInt:
		if v.num > math.MaxInt64 {
			return 0, false
		}
		return int64(v.num), true
	default:
		return 0, false
	}
}

// Uint64 returns the value as an unsigned 64-bit integer. Signed values
// convert when non-negative.
func (v Value) Uint64() (uint64, bool) {
	if v.null {
		return 0, false
	}
	switch v.ty {
	case TypeUTinyInt, TypeUSmallInt, TypeUInt, TypeUBigInt:
		return v.num, true
	case TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt:
		if int64(v.num) < 0 {
			return 0, false
		}
		return v.num, true
	default:
		return 0, false
	}
}

// Float64 returns the value as a float64. Integer types convert.
func (v Value) Float64() (float64, bool) {
	if v.null {
		return 0, false
	}
	switch v.ty {
	case TypeFloat, TypeDouble:
		return math.Float64frombits(v.num), true
	case TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt:
		return float64(int64(v.num)), true
	case TypeUTinyInt, TypeUSmallInt, TypeUInt, TypeUBigInt:
		return float64(v.num), true
	default:
		return 0, false
	}
}

// Bytes returns the borrowed variable-length payload.
// The slice is only valid while the owning Block is alive.
func (v Value) Bytes() ([]byte, bool) {
	if v.null || !v.ty.IsVarLen() {
		return nil, false
	}
	return v.raw, true
}

// Time returns a timestamp value converted through its precision.
func (v Value) Time() (time.Time, bool) {
	if v.null || v.ty != TypeTimestamp {
		return time.Time{}, false
	}
	return v.prec.Time(int64(v.num)), true
}

// Interface converts the value to an owned Go value: nil for nulls, the
// natural Go type otherwise (int8..int64, uint8..uint64, float32/float64,
// bool, string, []byte copy, time.Time).
func (v Value) Interface() interface{} {
	if v.null {
		return nil
	}
	switch v.ty {
	case TypeBool:
		return v.num != 0
	case TypeTinyInt:
		return int8(v.num)
	case TypeSmallInt:
		return int16(v.num)
	case TypeInt:
		return int32(v.num)
	case TypeBigInt:
		return int64(v.num)
	case TypeUTinyInt:
		return uint8(v.num)
	case TypeUSmallInt:
		return uint16(v.num)
	case TypeUInt:
		return uint32(v.num)
	case TypeUBigInt:
		return v.num
	case TypeFloat:
		return float32(math.Float64frombits(v.num))
	case TypeDouble:
		return math.Float64frombits(v.num)
	case TypeTimestamp:
		return v.prec.Time(int64(v.num))
	case TypeVarChar:
		return string(v.raw)
	case TypeBinary:
		out := make([]byte, len(v.raw))
		copy(out, v.raw)
		return out
	default:
		return nil
	}
}

// String renders the value for display.
func (v Value) String() string {
	if v.null {
		return "NULL"
	}
	switch v.ty {
	case TypeVarChar:
		return string(v.raw)
	case TypeBinary:
		return fmt.Sprintf("%x", v.raw)
	case TypeTimestamp:
		return v.prec.Time(int64(v.num)).UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
