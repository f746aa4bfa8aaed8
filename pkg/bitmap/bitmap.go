// Package bitmap provides packed per-row null bitmaps for columnar blocks.
//
// A bitmap stores one bit per logical row, most-significant bit first within
// each byte. A set bit marks the row as NULL. This convention is fixed for
// the whole wire format: writers and readers must agree on it.
package bitmap

// Bitmap is a packed sequence of per-row null flags.
//
// The zero value is an empty bitmap. Bitmaps are immutable once built;
// Slice returns views that may share the backing array, so callers must not
// mutate the byte slice handed to FromBytes afterwards.
type Bitmap struct {
	bits []byte
	n    int
}

// FromBools packs one bit per input flag, eight rows per byte.
// A true flag marks the row as NULL.
func FromBools(flags []bool) Bitmap {
	bits := make([]byte, (len(flags)+7)/8)
	for i, f := range flags {
		if f {
			bits[i/8] |= 1 << (7 - uint(i)%8)
		}
	}
	return Bitmap{bits: bits, n: len(flags)}
}

// FromBytes wraps packed bitmap bytes holding n rows without copying.
// It returns the zero Bitmap if b is too short for n rows.
func FromBytes(b []byte, n int) Bitmap {
	if n < 0 || len(b) < (n+7)/8 {
		return Bitmap{}
	}
	return Bitmap{bits: b[:(n+7)/8], n: n}
}

// Len returns the number of rows covered by the bitmap.
func (m Bitmap) Len() int {
	return m.n
}

// IsNull reports whether row i is NULL. Out-of-range rows report false.
func (m Bitmap) IsNull(i int) bool {
	if i < 0 || i >= m.n {
		return false
	}
	return m.isNull(i)
}

// isNull is the fast path for iterators that already validated i < Len().
func (m Bitmap) isNull(i int) bool {
	return m.bits[i/8]&(1<<(7-uint(i)%8)) != 0
}

// CountNulls returns the number of NULL rows.
func (m Bitmap) CountNulls() int {
	count := 0
	for i := 0; i < m.n; i++ {
		if m.isNull(i) {
			count++
		}
	}
	return count
}

// Slice returns the bitmap restricted to rows [start, end). The result is
// always byte-aligned at its own bit 0: when start falls on a byte boundary
// the backing array is shared, otherwise bits are repacked into a fresh
// buffer. Slice returns the zero Bitmap when the range is empty or invalid.
func (m Bitmap) Slice(start, end int) Bitmap {
	if start < 0 || start >= end || end > m.n {
		return Bitmap{}
	}
	n := end - start
	if start%8 == 0 {
		first := start / 8
		return Bitmap{bits: m.bits[first : first+(n+7)/8], n: n}
	}
	bits := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if m.isNull(start + i) {
			bits[i/8] |= 1 << (7 - uint(i)%8)
		}
	}
	return Bitmap{bits: bits, n: n}
}

// Bytes returns the packed bitmap bytes, ceil(Len()/8) of them.
// The returned slice is the backing array and must not be mutated.
func (m Bitmap) Bytes() []byte {
	return m.bits
}

// ToBools expands the bitmap into a per-row flag slice.
func (m Bitmap) ToBools() []bool {
	flags := make([]bool, m.n)
	for i := range flags {
		flags[i] = m.isNull(i)
	}
	return flags
}
