package block

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/ajitpratap0/chronodb-go/pkg/bitmap"
	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// fixedCodec describes how one fixed-width element type is laid out in a
// column buffer and lifted into a Value. Every fixed-width view is an
// instantiation of View over one of these codecs; only the element encoding
// differs between types.
type fixedCodec[T any] struct {
	width int
	load  func(b []byte) T
	store func(b []byte, v T)
	wrap  func(ty Type, prec Precision, v T) Value
}

var boolCodec = fixedCodec[bool]{
	width: 1,
	load:  func(b []byte) bool { return b[0] != 0 },
	store: func(b []byte, v bool) {
		if v {
			b[0] = 1
		} else {
			b[0] = 0
		}
	},
	wrap: func(_ Type, _ Precision, v bool) Value { return BoolValue(v) },
}

var int8Codec = fixedCodec[int8]{
	width: 1,
	load:  func(b []byte) int8 { return int8(b[0]) },
	store: func(b []byte, v int8) { b[0] = byte(v) },
	wrap:  func(ty Type, _ Precision, v int8) Value { return IntValue(ty, int64(v)) },
}

var int16Codec = fixedCodec[int16]{
	width: 2,
	load:  func(b []byte) int16 { return int16(binary.LittleEndian.Uint16(b)) },
	store: func(b []byte, v int16) { binary.LittleEndian.PutUint16(b, uint16(v)) },
	wrap:  func(ty Type, _ Precision, v int16) Value { return IntValue(ty, int64(v)) },
}

var int32Codec = fixedCodec[int32]{
	width: 4,
	load:  func(b []byte) int32 { return int32(binary.LittleEndian.Uint32(b)) },
	store: func(b []byte, v int32) { binary.LittleEndian.PutUint32(b, uint32(v)) },
	wrap:  func(ty Type, _ Precision, v int32) Value { return IntValue(ty, int64(v)) },
}

var int64Codec = fixedCodec[int64]{
	width: 8,
	load:  func(b []byte) int64 { return int64(binary.LittleEndian.Uint64(b)) },
	store: func(b []byte, v int64) { binary.LittleEndian.PutUint64(b, uint64(v)) },
	wrap: func(ty Type, prec Precision, v int64) Value {
		if ty == TypeTimestamp {
			return TimestampValue(v, prec)
		}
		return IntValue(ty, v)
	},
}

var uint8Codec = fixedCodec[uint8]{
	width: 1,
	load:  func(b []byte) uint8 { return b[0] },
	store: func(b []byte, v uint8) { b[0] = v },
	wrap:  func(ty Type, _ Precision, v uint8) Value { return UintValue(ty, uint64(v)) },
}

var uint16Codec = fixedCodec[uint16]{
	width: 2,
	load:  binary.LittleEndian.Uint16,
	store: binary.LittleEndian.PutUint16,
	wrap:  func(ty Type, _ Precision, v uint16) Value { return UintValue(ty, uint64(v)) },
}

var uint32Codec = fixedCodec[uint32]{
	width: 4,
	load:  binary.LittleEndian.Uint32,
	store: binary.LittleEndian.PutUint32,
	wrap:  func(ty Type, _ Precision, v uint32) Value { return UintValue(ty, uint64(v)) },
}

var uint64Codec = fixedCodec[uint64]{
	width: 8,
	load:  binary.LittleEndian.Uint64,
	store: binary.LittleEndian.PutUint64,
	wrap:  func(ty Type, _ Precision, v uint64) Value { return UintValue(ty, v) },
}

var float32Codec = fixedCodec[float32]{
	width: 4,
	load:  func(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) },
	store: func(b []byte, v float32) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) },
	wrap:  func(ty Type, _ Precision, v float32) Value { return FloatValue(ty, float64(v)) },
}

var float64Codec = fixedCodec[float64]{
	width: 8,
	load:  func(b []byte) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b)) },
	store: func(b []byte, v float64) { binary.LittleEndian.PutUint64(b, math.Float64bits(v)) },
	wrap:  func(ty Type, _ Precision, v float64) Value { return FloatValue(ty, v) },
}

// View is a fixed-width typed column: a null bitmap plus a contiguous byte
// buffer of Len() elements. Views own their buffers; Slice produces views
// that share the underlying buffer without copying elements.
type View[T any] struct {
	ty    Type
	prec  Precision
	codec fixedCodec[T]
	nulls bitmap.Bitmap
	data  []byte
}

func newView[T any](ty Type, prec Precision, c fixedCodec[T], vals []T, nulls []bool) *View[T] {
	if nulls == nil {
		// The bitmap must cover every row even when none is NULL; the wire
		// encoding always carries ceil(n/8) bitmap bytes.
		nulls = make([]bool, len(vals))
	}
	data := make([]byte, len(vals)*c.width)
	for i, v := range vals {
		c.store(data[i*c.width:], v)
	}
	return &View[T]{ty: ty, prec: prec, codec: c, nulls: bitmap.FromBools(nulls), data: data}
}

// viewFromPtrs builds a view from nullable inputs. Nil entries store the
// element type's zero placeholder; the bitmap, not the placeholder, is
// authoritative for nullness.
func viewFromPtrs[T any](ty Type, prec Precision, c fixedCodec[T], vals []*T) *View[T] {
	flat := make([]T, len(vals))
	nulls := make([]bool, len(vals))
	for i, v := range vals {
		if v == nil {
			nulls[i] = true
		} else {
			flat[i] = *v
		}
	}
	return newView(ty, prec, c, flat, nulls)
}

// viewFromWire reinterprets wire bytes as a view of nrows elements without
// copying: [null bitmap ceil(nrows/8)][values nrows*width]. It returns the
// unconsumed remainder of b.
func viewFromWire[T any](ty Type, prec Precision, c fixedCodec[T], nrows int, b []byte) (*View[T], []byte, error) {
	nullLen := (nrows + 7) / 8
	dataLen := nrows * c.width
	if len(b) < nullLen+dataLen {
		return nil, nil, errors.Newf(errors.ErrorTypeFrame,
			"column %s: need %d bytes, have %d", ty, nullLen+dataLen, len(b))
	}
	v := &View[T]{
		ty:    ty,
		prec:  prec,
		codec: c,
		nulls: bitmap.FromBytes(b[:nullLen], nrows),
		data:  b[nullLen : nullLen+dataLen],
	}
	return v, b[nullLen+dataLen:], nil
}

// Type returns the declared column type.
func (v *View[T]) Type() Type {
	return v.ty
}

// Len returns the row count, derived from the buffer size and element width.
func (v *View[T]) Len() int {
	return len(v.data) / v.codec.width
}

// IsNull reports whether the value at row is NULL. Out-of-range rows report false.
func (v *View[T]) IsNull(row int) bool {
	return v.nulls.IsNull(row)
}

// Get returns the value at row. ok is false when the row is NULL or out of range.
func (v *View[T]) Get(row int) (val T, ok bool) {
	if row < 0 || row >= v.Len() {
		return val, false
	}
	if v.nulls.IsNull(row) {
		return val, false
	}
	return v.getFast(row), true
}

// getFast assumes row < Len() and not NULL-checked; callers validate first.
func (v *View[T]) getFast(row int) T {
	return v.codec.load(v.data[row*v.codec.width:])
}

// Value returns the borrowed typed value at row, or a null marker carrying
// the declared type. ok is false only when row is out of range.
func (v *View[T]) Value(row int) (Value, bool) {
	if row < 0 || row >= v.Len() {
		return Value{}, false
	}
	if v.nulls.IsNull(row) {
		return Null(v.ty), true
	}
	return v.codec.wrap(v.ty, v.prec, v.getFast(row)), true
}

// Slice returns a view over rows [start, end). The end is clamped to Len().
// It returns nil when start is out of range or the clamped range is empty.
// No element is copied; the result shares the underlying buffer.
func (v *View[T]) Slice(start, end int) Column {
	s := v.slice(start, end)
	if s == nil {
		return nil
	}
	return s
}

func (v *View[T]) slice(start, end int) *View[T] {
	if start < 0 || start >= v.Len() {
		return nil
	}
	if end > v.Len() {
		end = v.Len()
	}
	if end <= start {
		return nil
	}
	return &View[T]{
		ty:    v.ty,
		prec:  v.prec,
		codec: v.codec,
		nulls: v.nulls.Slice(start, end),
		data:  v.data[start*v.codec.width : end*v.codec.width],
	}
}

// Iter returns a fresh iterator positioned at row 0.
func (v *View[T]) Iter() *ViewIter[T] {
	return &ViewIter[T]{view: v}
}

// Ptrs expands the view into a nullable slice, nil for NULL rows.
func (v *View[T]) Ptrs() []*T {
	out := make([]*T, v.Len())
	for i := range out {
		if !v.nulls.IsNull(i) {
			val := v.getFast(i)
			out[i] = &val
		}
	}
	return out
}

// Concat returns a new view whose rows are v's rows followed by other's.
// Nulls and values are re-derived element by element rather than spliced,
// so the result always owns a fresh buffer. other must be a view of the
// same type.
func (v *View[T]) Concat(other Column) (Column, error) {
	o, ok := other.(*View[T])
	if !ok || o.ty != v.ty {
		return nil, errors.Newf(errors.ErrorTypeData,
			"cannot concat column of type %s with %s", v.ty, other.Type())
	}
	n := v.Len() + o.Len()
	flat := make([]T, 0, n)
	nulls := make([]bool, 0, n)
	for _, src := range []*View[T]{v, o} {
		for i := 0; i < src.Len(); i++ {
			nulls = append(nulls, src.nulls.IsNull(i))
			flat = append(flat, src.getFast(i))
		}
	}
	return newView(v.ty, v.prec, v.codec, flat, nulls), nil
}

// WriteWire writes the null bitmap bytes followed by the raw value bytes,
// in that order, and returns the total bytes written. The ordering is the
// wire contract and matches viewFromWire exactly.
func (v *View[T]) WriteWire(w io.Writer) (int, error) {
	nulls := v.nulls.Bytes()
	if _, err := w.Write(nulls); err != nil {
		return 0, err
	}
	if _, err := w.Write(v.data); err != nil {
		return len(nulls), err
	}
	return len(nulls) + len(v.data), nil
}

func (v *View[T]) wireSize() int {
	return len(v.nulls.Bytes()) + len(v.data)
}

func (v *View[T]) precision() Precision {
	return v.prec
}

// ViewIter is a lazy, finite iterator over a view's nullable values.
// A fresh call to View.Iter restarts at row 0.
type ViewIter[T any] struct {
	view *View[T]
	row  int
}

// Next returns the next value. null marks NULL rows; ok is false once the
// iterator is exhausted.
func (it *ViewIter[T]) Next() (val T, null bool, ok bool) {
	if it.row >= it.view.Len() {
		return val, false, false
	}
	row := it.row
	it.row++
	if it.view.nulls.IsNull(row) {
		return val, true, true
	}
	return it.view.getFast(row), false, true
}

// Remaining returns the number of values left, Len() minus the cursor.
func (it *ViewIter[T]) Remaining() int {
	if it.row >= it.view.Len() {
		return 0
	}
	return it.view.Len() - it.row
}
