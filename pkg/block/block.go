package block

import (
	"encoding/binary"
	"io"

	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// Field describes one column of a block's schema.
type Field struct {
	Name      string
	Type      Type
	Precision Precision
}

// Block is a rectangular, column-oriented result set: an ordered schema
// paired 1:1 with typed columns, all sharing one row count. Column order is
// stable and defines both row-iteration order and value order within a row.
//
// Blocks are immutable once constructed; row count agreement across columns
// is enforced here, not on every access.
type Block struct {
	fields  []Field
	columns []Column
	nrows   int
}

// New constructs a block from a schema and its columns. It fails when the
// counts disagree or any column's length differs from the first's.
func New(fields []Field, columns []Column) (*Block, error) {
	if len(fields) != len(columns) {
		return nil, errors.Newf(errors.ErrorTypeData,
			"schema has %d fields but %d columns given", len(fields), len(columns))
	}
	nrows := 0
	for i, col := range columns {
		if col == nil {
			return nil, errors.Newf(errors.ErrorTypeData, "column %d is nil", i)
		}
		if i == 0 {
			nrows = col.Len()
		} else if col.Len() != nrows {
			return nil, errors.Newf(errors.ErrorTypeData,
				"column %q has %d rows, expected %d", fields[i].Name, col.Len(), nrows)
		}
		if fields[i].Type != col.Type() {
			return nil, errors.Newf(errors.ErrorTypeData,
				"column %q declared %s but holds %s", fields[i].Name, fields[i].Type, col.Type())
		}
	}
	return &Block{fields: fields, columns: columns, nrows: nrows}, nil
}

// NRows returns the shared row count.
func (b *Block) NRows() int {
	return b.nrows
}

// NCols returns the number of columns, from the schema length.
func (b *Block) NCols() int {
	return len(b.fields)
}

// Schema returns the block's fields in column order.
// The returned slice must not be mutated.
func (b *Block) Schema() []Field {
	return b.fields
}

// Column returns the column at index i, or nil when out of range.
func (b *Block) Column(i int) Column {
	if i < 0 || i >= len(b.columns) {
		return nil
	}
	return b.columns[i]
}

// ColumnByName returns the first column whose schema name matches.
func (b *Block) ColumnByName(name string) (Column, bool) {
	for i, f := range b.fields {
		if f.Name == name {
			return b.columns[i], true
		}
	}
	return nil, false
}

// Value returns the borrowed typed value at (row, col): the column's Value
// for in-range cells, including null markers that carry the declared type.
// ok is false when either index is out of range. Variable-length payloads
// are not copied; they stay valid only while the block is alive.
func (b *Block) Value(row, col int) (Value, bool) {
	if col < 0 || col >= len(b.columns) {
		return Value{}, false
	}
	return b.columns[col].Value(row)
}

// Rows returns a fresh row iterator positioned at row 0. Each call restarts
// the iteration.
func (b *Block) Rows() *Rows {
	return &Rows{block: b}
}

// Row returns a view over one row. ok is false when row is out of range.
func (b *Block) Row(row int) (*RowView, bool) {
	if row < 0 || row >= b.nrows {
		return nil, false
	}
	return &RowView{block: b, row: row}, true
}

// Block wire payload layout, little-endian throughout:
//
//	u32 nrows
//	u16 ncols
//	per column: u8 type | u8 precision | u16 name length | name bytes
//	per column, in schema order: the column encoding (see Column.WriteWire)
const blockHeaderLen = 6

// FromWirePayload reinterprets an envelope payload as a block. Fixed-width
// column buffers and variable-length payloads reference p directly; the
// caller must not mutate p while the block is in use.
func FromWirePayload(p []byte) (*Block, error) {
	if len(p) < blockHeaderLen {
		return nil, errors.New(errors.ErrorTypeFrame, "block payload shorter than header")
	}
	nrows := int(binary.LittleEndian.Uint32(p))
	ncols := int(binary.LittleEndian.Uint16(p[4:]))
	rest := p[blockHeaderLen:]

	fields := make([]Field, ncols)
	for i := range fields {
		if len(rest) < 4 {
			return nil, errors.Newf(errors.ErrorTypeFrame, "truncated schema entry %d", i)
		}
		ty := Type(rest[0])
		prec := Precision(rest[1])
		nameLen := int(binary.LittleEndian.Uint16(rest[2:]))
		rest = rest[4:]
		if len(rest) < nameLen {
			return nil, errors.Newf(errors.ErrorTypeFrame, "truncated column name %d", i)
		}
		fields[i] = Field{Name: string(rest[:nameLen]), Type: ty, Precision: prec}
		rest = rest[nameLen:]
	}

	columns := make([]Column, ncols)
	for i, f := range fields {
		col, r, err := columnFromWire(f.Type, f.Precision, nrows, rest)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFrame, "decoding block column")
		}
		columns[i] = col
		rest = r
	}
	return &Block{fields: fields, columns: columns, nrows: nrows}, nil
}

// WriteWire writes the block's full wire payload and returns the bytes
// written. The output round-trips through FromWirePayload.
func (b *Block) WriteWire(w io.Writer) (int, error) {
	var hdr [blockHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(b.nrows))
	binary.LittleEndian.PutUint16(hdr[4:], uint16(len(b.fields)))
	if _, err := w.Write(hdr[:]); err != nil {
		return 0, err
	}
	total := blockHeaderLen

	var entry [4]byte
	for _, f := range b.fields {
		entry[0] = byte(f.Type)
		entry[1] = byte(f.Precision)
		binary.LittleEndian.PutUint16(entry[2:], uint16(len(f.Name)))
		if _, err := w.Write(entry[:]); err != nil {
			return total, err
		}
		total += 4
		if _, err := io.WriteString(w, f.Name); err != nil {
			return total, err
		}
		total += len(f.Name)
	}

	for _, col := range b.columns {
		n, err := col.WriteWire(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WireSize returns the exact byte length WriteWire will produce.
func (b *Block) WireSize() int {
	size := blockHeaderLen
	for _, f := range b.fields {
		size += 4 + len(f.Name)
	}
	for _, col := range b.columns {
		size += col.wireSize()
	}
	return size
}

// Append returns a new block whose rows are b's rows followed by other's.
// The schemas must agree exactly. Columns are re-derived by element, so the
// result owns fresh buffers; appending is not a hot path.
func (b *Block) Append(other *Block) (*Block, error) {
	if len(b.fields) != len(other.fields) {
		return nil, errors.Newf(errors.ErrorTypeData,
			"cannot append block with %d columns to block with %d", other.NCols(), b.NCols())
	}
	for i := range b.fields {
		if b.fields[i] != other.fields[i] {
			return nil, errors.Newf(errors.ErrorTypeData,
				"column %d: schema mismatch (%q %s vs %q %s)", i,
				b.fields[i].Name, b.fields[i].Type, other.fields[i].Name, other.fields[i].Type)
		}
	}
	columns := make([]Column, len(b.columns))
	for i, col := range b.columns {
		merged, err := col.Concat(other.columns[i])
		if err != nil {
			return nil, err
		}
		columns[i] = merged
	}
	return &Block{fields: b.fields, columns: columns, nrows: b.nrows + other.nrows}, nil
}

// AppendWire decodes a wire payload and appends its rows to b. The payload's
// schema must match b's.
func (b *Block) AppendWire(p []byte) (*Block, error) {
	other, err := FromWirePayload(p)
	if err != nil {
		return nil, err
	}
	return b.Append(other)
}
