package block

import (
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/chronodb-go/pkg/bitmap"
	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// BytesView is a variable-length column (text or binary). Because element
// width is not constant it carries a per-row offset table: offsets[i] and
// offsets[i+1] delimit row i's payload, so the table holds Len()+1 entries
// and offsets[Len()] is the total payload size.
type BytesView struct {
	ty      Type
	nulls   bitmap.Bitmap
	offsets []uint32
	data    []byte
}

func newBytesView(ty Type, vals [][]byte, nulls []bool) *BytesView {
	if nulls == nil {
		nulls = make([]bool, len(vals))
	}
	offsets := make([]uint32, 1, len(vals)+1)
	size := 0
	for _, v := range vals {
		size += len(v)
	}
	data := make([]byte, 0, size)
	for _, v := range vals {
		data = append(data, v...)
		offsets = append(offsets, uint32(len(data)))
	}
	return &BytesView{ty: ty, nulls: bitmap.FromBools(nulls), offsets: offsets, data: data}
}

// bytesFromWire reinterprets wire bytes as a variable-length column:
// [null bitmap][offset table (nrows+1)*u32 LE][payload]. The offset table is
// decoded into a fresh slice; the payload is shared with b.
func bytesFromWire(ty Type, nrows int, b []byte) (*BytesView, []byte, error) {
	nullLen := (nrows + 7) / 8
	offLen := (nrows + 1) * 4
	if len(b) < nullLen+offLen {
		return nil, nil, errors.Newf(errors.ErrorTypeFrame,
			"column %s: truncated offset table", ty)
	}
	offsets := make([]uint32, nrows+1)
	raw := b[nullLen : nullLen+offLen]
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	payloadLen := int(offsets[nrows])
	rest := b[nullLen+offLen:]
	if len(rest) < payloadLen {
		return nil, nil, errors.Newf(errors.ErrorTypeFrame,
			"column %s: payload needs %d bytes, have %d", ty, payloadLen, len(rest))
	}
	for i := 0; i < nrows; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, nil, errors.Newf(errors.ErrorTypeFrame,
				"column %s: offset table not monotonic at row %d", ty, i)
		}
	}
	v := &BytesView{
		ty:      ty,
		nulls:   bitmap.FromBytes(b[:nullLen], nrows),
		offsets: offsets,
		data:    rest[:payloadLen],
	}
	return v, rest[payloadLen:], nil
}

// Type returns the declared column type.
func (v *BytesView) Type() Type {
	return v.ty
}

// Len returns the row count, from the explicit offset table.
func (v *BytesView) Len() int {
	return len(v.offsets) - 1
}

// IsNull reports whether the value at row is NULL. Out-of-range rows report false.
func (v *BytesView) IsNull(row int) bool {
	return v.nulls.IsNull(row)
}

// Get returns the payload at row, borrowed from the view's buffer.
// ok is false when the row is NULL or out of range.
func (v *BytesView) Get(row int) ([]byte, bool) {
	if row < 0 || row >= v.Len() {
		return nil, false
	}
	if v.nulls.IsNull(row) {
		return nil, false
	}
	return v.getFast(row), true
}

// GetString returns the payload at row as a string copy.
func (v *BytesView) GetString(row int) (string, bool) {
	b, ok := v.Get(row)
	if !ok {
		return "", false
	}
	return string(b), true
}

func (v *BytesView) getFast(row int) []byte {
	return v.data[v.offsets[row]:v.offsets[row+1]]
}

// Value returns the borrowed typed value at row, or a null marker carrying
// the declared type. ok is false only when row is out of range.
func (v *BytesView) Value(row int) (Value, bool) {
	if row < 0 || row >= v.Len() {
		return Value{}, false
	}
	if v.nulls.IsNull(row) {
		return Null(v.ty), true
	}
	return BytesValue(v.ty, v.getFast(row)), true
}

// Slice returns a view over rows [start, end), clamping end and returning
// nil for empty or out-of-range results. The payload is shared; only the
// offset table is rebased.
func (v *BytesView) Slice(start, end int) Column {
	if start < 0 || start >= v.Len() {
		return nil
	}
	if end > v.Len() {
		end = v.Len()
	}
	if end <= start {
		return nil
	}
	base := v.offsets[start]
	offsets := make([]uint32, end-start+1)
	for i := range offsets {
		offsets[i] = v.offsets[start+i] - base
	}
	return &BytesView{
		ty:      v.ty,
		nulls:   v.nulls.Slice(start, end),
		offsets: offsets,
		data:    v.data[base:v.offsets[end]],
	}
}

// Iter returns a fresh iterator positioned at row 0.
func (v *BytesView) Iter() *BytesIter {
	return &BytesIter{view: v}
}

// Concat returns a new view whose rows are v's rows followed by other's.
func (v *BytesView) Concat(other Column) (Column, error) {
	o, ok := other.(*BytesView)
	if !ok || o.ty != v.ty {
		return nil, errors.Newf(errors.ErrorTypeData,
			"cannot concat column of type %s with %s", v.ty, other.Type())
	}
	n := v.Len() + o.Len()
	vals := make([][]byte, 0, n)
	nulls := make([]bool, 0, n)
	for _, src := range []*BytesView{v, o} {
		for i := 0; i < src.Len(); i++ {
			nulls = append(nulls, src.nulls.IsNull(i))
			vals = append(vals, src.getFast(i))
		}
	}
	return newBytesView(v.ty, vals, nulls), nil
}

// WriteWire writes the null bitmap, the offset table, then the payload, and
// returns the total bytes written. This matches bytesFromWire exactly.
func (v *BytesView) WriteWire(w io.Writer) (int, error) {
	total := 0
	nulls := v.nulls.Bytes()
	if _, err := w.Write(nulls); err != nil {
		return total, err
	}
	total += len(nulls)
	var buf [4]byte
	for _, off := range v.offsets {
		binary.LittleEndian.PutUint32(buf[:], off)
		if _, err := w.Write(buf[:]); err != nil {
			return total, err
		}
		total += 4
	}
	if _, err := w.Write(v.data); err != nil {
		return total, err
	}
	return total + len(v.data), nil
}

func (v *BytesView) wireSize() int {
	return len(v.nulls.Bytes()) + len(v.offsets)*4 + len(v.data)
}

func (v *BytesView) precision() Precision {
	return 0
}

// BytesIter is a lazy, finite iterator over a variable-length view.
type BytesIter struct {
	view *BytesView
	row  int
}

// Next returns the next payload. null marks NULL rows; ok is false once the
// iterator is exhausted.
func (it *BytesIter) Next() (val []byte, null bool, ok bool) {
	if it.row >= it.view.Len() {
		return nil, false, false
	}
	row := it.row
	it.row++
	if it.view.nulls.IsNull(row) {
		return nil, true, true
	}
	return it.view.getFast(row), false, true
}

// Remaining returns the number of values left.
func (it *BytesIter) Remaining() int {
	if it.row >= it.view.Len() {
		return 0
	}
	return it.view.Len() - it.row
}
