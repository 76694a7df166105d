package table

import (
	"fmt"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
)

// arrowType maps a column type to its Arrow data type. Timestamps use
// microsecond precision in UTC, matching what warehouse Flight endpoints
// commonly return.
func arrowType(t Type) (arrow.DataType, error) {
	switch t {
	case TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case TypeString:
		return arrow.BinaryTypes.String, nil
	case TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us, nil
	default:
		return nil, fmt.Errorf("unsupported column type %q", t)
	}
}

func typeFromArrow(dt arrow.DataType) (Type, error) {
	switch dt.ID() {
	case arrow.BOOL:
		return TypeBool, nil
	case arrow.INT64:
		return TypeInt64, nil
	case arrow.FLOAT64:
		return TypeFloat64, nil
	case arrow.STRING:
		return TypeString, nil
	case arrow.TIMESTAMP:
		return TypeTimestamp, nil
	default:
		return "", fmt.Errorf("unsupported arrow type %s", dt.Name())
	}
}

// ArrowSchema builds an Arrow schema for the given columns, attaching the
// optional custom metadata.
func ArrowSchema(columns []Column, md *arrow.Metadata) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(columns))
	for _, c := range columns {
		dt, err := arrowType(c.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, arrow.Field{Name: c.Name, Type: dt, Nullable: true})
	}
	return arrow.NewSchema(fields, md), nil
}

// ColumnsFromSchema derives the column schema from an Arrow schema.
func ColumnsFromSchema(schema *arrow.Schema) ([]Column, error) {
	columns := make([]Column, 0, len(schema.Fields()))
	for _, f := range schema.Fields() {
		t, err := typeFromArrow(f.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		columns = append(columns, Column{Name: f.Name, Type: t})
	}
	return columns, nil
}

// Record materializes the table as a single Arrow record conforming to
// schema. The caller must Release the returned record.
func (t *Table) Record(schema *arrow.Schema, mem memory.Allocator) (arrow.Record, error) {
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i, col := range t.Columns {
		if err := appendColumn(builder.Field(i), col, t.Rows, i); err != nil {
			return nil, err
		}
	}
	return builder.NewRecord(), nil
}

func appendColumn(b array.Builder, col Column, rows [][]any, idx int) error {
	for _, row := range rows {
		v := row[idx]
		if v == nil {
			b.AppendNull()
			continue
		}
		switch col.Type {
		case TypeBool:
			b.(*array.BooleanBuilder).Append(v.(bool))
		case TypeInt64:
			b.(*array.Int64Builder).Append(v.(int64))
		case TypeFloat64:
			b.(*array.Float64Builder).Append(v.(float64))
		case TypeString:
			b.(*array.StringBuilder).Append(v.(string))
		case TypeTimestamp:
			b.(*array.TimestampBuilder).Append(arrow.Timestamp(v.(time.Time).UnixMicro()))
		default:
			return fmt.Errorf("unsupported column type %q", col.Type)
		}
	}
	return nil
}

// AppendRecord converts every row of an Arrow record and appends it to the
// table. The record's schema must match the table's column schema.
func (t *Table) AppendRecord(rec arrow.Record) error {
	if int(rec.NumCols()) != len(t.Columns) {
		return fmt.Errorf("record has %d columns, table has %d", rec.NumCols(), len(t.Columns))
	}
	n := int(rec.NumRows())
	for r := 0; r < n; r++ {
		row := make([]any, len(t.Columns))
		for c, col := range t.Columns {
			v, err := cellFromArrow(rec.Column(c), col, r)
			if err != nil {
				return err
			}
			row[c] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return nil
}

func cellFromArrow(arr arrow.Array, col Column, row int) (any, error) {
	if arr.IsNull(row) {
		return nil, nil
	}
	switch col.Type {
	case TypeBool:
		return arr.(*array.Boolean).Value(row), nil
	case TypeInt64:
		return arr.(*array.Int64).Value(row), nil
	case TypeFloat64:
		return arr.(*array.Float64).Value(row), nil
	case TypeString:
		return arr.(*array.String).Value(row), nil
	case TypeTimestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return arr.(*array.Timestamp).Value(row).ToTime(unit), nil
	default:
		return nil, fmt.Errorf("unsupported column type %q", col.Type)
	}
}
