// Package arrowconv bridges columnar blocks to Apache Arrow records, the
// interchange surface for analytics tooling. The conversion copies element
// data into Arrow builders; blocks stay immutable.
package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/chronodb-go/pkg/block"
	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// ArrowSchema maps a block schema to an Arrow schema.
func ArrowSchema(fields []block.Field) (*arrow.Schema, error) {
	out := make([]arrow.Field, len(fields))
	for i, f := range fields {
		dt, err := arrowType(f.Type, f.Precision)
		if err != nil {
			return nil, err
		}
		out[i] = arrow.Field{Name: f.Name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(out, nil), nil
}

func arrowType(ty block.Type, prec block.Precision) (arrow.DataType, error) {
	switch ty {
	case block.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case block.TypeTinyInt:
		return arrow.PrimitiveTypes.Int8, nil
	case block.TypeSmallInt:
		return arrow.PrimitiveTypes.Int16, nil
	case block.TypeInt:
		return arrow.PrimitiveTypes.Int32, nil
	case block.TypeBigInt:
		return arrow.PrimitiveTypes.Int64, nil
	case block.TypeUTinyInt:
		return arrow.PrimitiveTypes.Uint8, nil
	case block.TypeUSmallInt:
		return arrow.PrimitiveTypes.Uint16, nil
	case block.TypeUInt:
		return arrow.PrimitiveTypes.Uint32, nil
	case block.TypeUBigInt:
		return arrow.PrimitiveTypes.Uint64, nil
	case block.TypeFloat:
		return arrow.PrimitiveTypes.Float32, nil
	case block.TypeDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case block.TypeVarChar:
		return arrow.BinaryTypes.String, nil
	case block.TypeBinary:
		return arrow.BinaryTypes.Binary, nil
	case block.TypeTimestamp:
		return &arrow.TimestampType{Unit: timestampUnit(prec), TimeZone: "UTC"}, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeCapability, "no arrow mapping for column type %s", ty)
	}
}

func timestampUnit(prec block.Precision) arrow.TimeUnit {
	switch prec {
	case block.PrecisionMicro:
		return arrow.Microsecond
	case block.PrecisionNano:
		return arrow.Nanosecond
	default:
		return arrow.Millisecond
	}
}

// ToRecord converts a block into an Arrow record. The caller owns the record
// and must Release it.
func ToRecord(b *block.Block, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	schema, err := ArrowSchema(b.Schema())
	if err != nil {
		return nil, err
	}

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for col := 0; col < b.NCols(); col++ {
		if err := appendColumn(builder.Field(col), b.Column(col)); err != nil {
			return nil, err
		}
	}
	return builder.NewRecord(), nil
}

func appendColumn(fb array.Builder, col block.Column) error {
	n := col.Len()
	for row := 0; row < n; row++ {
		v, _ := col.Value(row)
		if v.IsNull() {
			fb.AppendNull()
			continue
		}
		switch b := fb.(type) {
		case *array.BooleanBuilder:
			val, _ := v.Bool()
			b.Append(val)
		case *array.Int8Builder:
			val, _ := v.Int64()
			b.Append(int8(val))
		case *array.Int16Builder:
			val, _ := v.Int64()
			b.Append(int16(val))
		case *array.Int32Builder:
			val, _ := v.Int64()
			b.Append(int32(val))
		case *array.Int64Builder:
			val, _ := v.Int64()
			b.Append(val)
		case *array.Uint8Builder:
			val, _ := v.Uint64()
			b.Append(uint8(val))
		case *array.Uint16Builder:
			val, _ := v.Uint64()
			b.Append(uint16(val))
		case *array.Uint32Builder:
			val, _ := v.Uint64()
			b.Append(uint32(val))
		case *array.Uint64Builder:
			val, _ := v.Uint64()
			b.Append(val)
		case *array.Float32Builder:
			val, _ := v.Float64()
			b.Append(float32(val))
		case *array.Float64Builder:
			val, _ := v.Float64()
			b.Append(val)
		case *array.StringBuilder:
			raw, _ := v.Bytes()
			b.Append(string(raw))
		case *array.BinaryBuilder:
			raw, _ := v.Bytes()
			b.Append(raw)
		case *array.TimestampBuilder:
			val, _ := v.Int64()
			b.Append(arrow.Timestamp(val))
		default:
			return errors.Newf(errors.ErrorTypeCapability,
				"unsupported arrow builder %T for column type %s", fb, col.Type())
		}
	}
	return nil
}
