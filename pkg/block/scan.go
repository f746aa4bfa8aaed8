package block

import (
	"reflect"
	"strings"
	"time"

	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// Scan pulls the remaining values of the row positionally, in column order
// and ignoring names, into the given destinations. Destinations must be
// non-nil pointers. A NULL value scanned into a non-pointer destination is
// a nullness error identifying the column; pointer destinations receive nil.
func (r *RowView) Scan(dests ...interface{}) error {
	if len(dests) > r.Remaining() {
		return errors.Newf(errors.ErrorTypeData,
			"scan: %d destinations but only %d values remain", len(dests), r.Remaining())
	}
	for _, dest := range dests {
		name, v, _ := r.Next()
		if err := assign(name, v, dest); err != nil {
			return err
		}
	}
	return nil
}

// ScanStruct populates one typed record from the row, matching schema column
// names against struct fields (a `col` tag wins over the field name; matching
// is case-insensitive and ignores underscores). Columns without a matching
// field are skipped. When the schema carries no column names at all, matching
// degrades to positional order over the struct's exported fields.
//
// The row is fully consumed whether or not an error occurs, but the record
// is not partially populated on error for the failing column onward.
func (r *RowView) ScanStruct(dest interface{}) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New(errors.ErrorTypeData, "scan: destination must be a non-nil pointer to struct")
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return errors.Newf(errors.ErrorTypeData, "scan: destination must point to a struct, not %s", elem.Kind())
	}

	start := r.col
	r.col = r.block.NCols()

	if !r.block.hasNames() {
		return scanPositional(r.block, r.row, start, elem)
	}

	fields := structFields(elem.Type())
	for col := start; col < r.block.NCols(); col++ {
		name := r.block.fields[col].Name
		idx, ok := fields[normalizeName(name)]
		if !ok {
			continue
		}
		v, _ := r.block.columns[col].Value(r.row)
		if err := assignReflect(name, v, elem.Field(idx)); err != nil {
			return err
		}
	}
	return nil
}

// hasNames reports whether any schema column carries a name. A nameless
// schema makes map-style scanning degrade to positional access.
func (b *Block) hasNames() bool {
	for _, f := range b.fields {
		if f.Name != "" {
			return true
		}
	}
	return false
}

func scanPositional(b *Block, row, startCol int, elem reflect.Value) error {
	t := elem.Type()
	col := startCol
	for i := 0; i < t.NumField() && col < b.NCols(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		v, _ := b.columns[col].Value(row)
		if err := assignReflect(b.fields[col].Name, v, elem.Field(i)); err != nil {
			return err
		}
		col++
	}
	return nil
}

// structFields maps normalized column names to exported field indices.
// A `col` tag overrides the field name.
func structFields(t reflect.Type) map[string]int {
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("col"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		fields[normalizeName(name)] = i
	}
	return fields
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

func assign(column string, v Value, dest interface{}) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.Newf(errors.ErrorTypeData, "scan: destination for column %q must be a non-nil pointer", column)
	}
	return assignReflect(column, v, rv.Elem())
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	valueType = reflect.TypeOf(Value{})
)

// assignReflect converts one cell into a settable destination. Pointer
// destinations model optional fields: NULL becomes nil, otherwise the
// pointee is allocated and populated.
func assignReflect(column string, v Value, dst reflect.Value) error {
	if !dst.CanSet() {
		return errors.Newf(errors.ErrorTypeData, "scan: column %q: destination is not settable", column)
	}

	if dst.Type() == valueType {
		dst.Set(reflect.ValueOf(v))
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		if v.IsNull() {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		p := reflect.New(dst.Type().Elem())
		if err := assignReflect(column, v, p.Elem()); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}

	if v.IsNull() {
		if dst.Kind() == reflect.Interface {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return errors.NewNullness(column)
	}

	switch dst.Kind() {
	case reflect.Bool:
		b, ok := v.Bool()
		if !ok {
			return errors.NewTypeMismatch(column, "bool", v.Type().String())
		}
		dst.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.Int64()
		if !ok || dst.OverflowInt(n) {
			return errors.NewTypeMismatch(column, dst.Kind().String(), v.Type().String())
		}
		dst.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.Uint64()
		if !ok || dst.OverflowUint(n) {
			return errors.NewTypeMismatch(column, dst.Kind().String(), v.Type().String())
		}
		dst.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		f, ok := v.Float64()
		if !ok {
			return errors.NewTypeMismatch(column, dst.Kind().String(), v.Type().String())
		}
		dst.SetFloat(f)
		return nil

	case reflect.String:
		b, ok := v.Bytes()
		if !ok {
			return errors.NewTypeMismatch(column, "string", v.Type().String())
		}
		dst.SetString(string(b))
		return nil

	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.Uint8 {
			return errors.NewTypeMismatch(column, dst.Type().String(), v.Type().String())
		}
		b, ok := v.Bytes()
		if !ok {
			return errors.NewTypeMismatch(column, "[]byte", v.Type().String())
		}
		out := make([]byte, len(b))
		copy(out, b)
		dst.SetBytes(out)
		return nil

	case reflect.Struct:
		if dst.Type() == timeType {
			t, ok := v.Time()
			if !ok {
				return errors.NewTypeMismatch(column, "time.Time", v.Type().String())
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		}
		return errors.NewTypeMismatch(column, dst.Type().String(), v.Type().String())

	case reflect.Interface:
		dst.Set(reflect.ValueOf(v.Interface()))
		return nil

	default:
		return errors.NewTypeMismatch(column, dst.Kind().String(), v.Type().String())
	}
}
