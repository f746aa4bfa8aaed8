package block

// Rows is a lazy, finite iterator producing one RowView per block row in
// wire order. Block.Rows returns a fresh iterator, so iteration is
// restartable by asking for a new one.
type Rows struct {
	block *Block
	row   int
}

// Next returns the next row view. ok is false once all rows are consumed.
// The returned view borrows the block and is invalidated if the block is
// released while the view is alive.
func (r *Rows) Next() (*RowView, bool) {
	if r.row >= r.block.nrows {
		return nil, false
	}
	row := r.row
	r.row++
	return &RowView{block: r.block, row: row}, true
}

// Remaining returns the number of rows left to iterate.
func (r *Rows) Remaining() int {
	if r.row >= r.block.nrows {
		return 0
	}
	return r.block.nrows - r.row
}

// RowView is a cursor over one logical row: it yields (column name, value)
// pairs in schema order. It is not an owner; it borrows the Block it came
// from. A RowView is consumed by iteration and restarts only through
// reconstruction (Block.Row), not by rewinding in place.
type RowView struct {
	block *Block
	row   int
	col   int
}

// Index returns the row's position within the block.
func (r *RowView) Index() int {
	return r.row
}

// Next returns the next (column name, value) pair in schema order.
// ok is false once all columns are consumed.
func (r *RowView) Next() (name string, v Value, ok bool) {
	if r.col >= r.block.NCols() {
		return "", Value{}, false
	}
	col := r.col
	r.col++
	v, _ = r.block.columns[col].Value(r.row)
	return r.block.fields[col].Name, v, true
}

// Remaining returns the number of columns left, NCols() minus the cursor.
func (r *RowView) Remaining() int {
	if r.col >= r.block.NCols() {
		return 0
	}
	return r.block.NCols() - r.col
}

// Values consumes the remaining columns and returns their values in schema
// order, ignoring names.
func (r *RowView) Values() []Value {
	out := make([]Value, 0, r.Remaining())
	for {
		_, v, ok := r.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// ValueIter converts the view into a name-free value iterator starting at
// the view's current cursor.
func (r *RowView) ValueIter() *ValueIter {
	return &ValueIter{block: r.block, row: r.row, col: r.col}
}

// ValueIter iterates one row's values in schema order, without names.
type ValueIter struct {
	block *Block
	row   int
	col   int
}

// Next returns the next value. ok is false once all columns are consumed.
func (it *ValueIter) Next() (Value, bool) {
	if it.col >= it.block.NCols() {
		return Value{}, false
	}
	col := it.col
	it.col++
	v, _ := it.block.columns[col].Value(it.row)
	return v, true
}

// Remaining returns the number of values left.
func (it *ValueIter) Remaining() int {
	if it.col >= it.block.NCols() {
		return 0
	}
	return it.block.NCols() - it.col
}
