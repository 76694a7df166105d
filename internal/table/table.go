package table

import (
	"fmt"
	"time"
)

// Type identifies the value type of a column.
type Type string

// Column types supported by the cache payload format.
const (
	TypeBool      Type = "bool"
	TypeInt64     Type = "int64"
	TypeFloat64   Type = "float64"
	TypeString    Type = "string"
	TypeTimestamp Type = "timestamp"
)

// Column describes one typed column of a table.
type Column struct {
	Name string
	Type Type
}

// Table is an in-memory tabular result: a fixed column schema and row-major
// values. A nil cell represents SQL NULL.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// New creates an empty table with the given column schema.
func New(columns []Column) *Table {
	return &Table{Columns: columns}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// AppendRow validates the values against the column schema and appends them
// as a new row. A nil value is accepted for any column (NULL).
func (t *Table) AppendRow(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		if err := checkValue(t.Columns[i], v); err != nil {
			return err
		}
	}
	t.Rows = append(t.Rows, values)
	return nil
}

func checkValue(col Column, v any) error {
	var ok bool
	switch col.Type {
	case TypeBool:
		_, ok = v.(bool)
	case TypeInt64:
		_, ok = v.(int64)
	case TypeFloat64:
		_, ok = v.(float64)
	case TypeString:
		_, ok = v.(string)
	case TypeTimestamp:
		_, ok = v.(time.Time)
	default:
		return fmt.Errorf("column %q has unknown type %q", col.Name, col.Type)
	}
	if !ok {
		return fmt.Errorf("column %q expects %s, got %T", col.Name, col.Type, v)
	}
	return nil
}

// Equal reports whether two tables have the same shape, column schema, and
// cell values. Timestamps compare with time.Time.Equal so location
// differences do not matter.
func (t *Table) Equal(other *Table) bool {
	if other == nil || len(t.Columns) != len(other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i, c := range t.Columns {
		if c != other.Columns[i] {
			return false
		}
	}
	for i, row := range t.Rows {
		for j, v := range row {
			if !cellEqual(v, other.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}

func cellEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}
