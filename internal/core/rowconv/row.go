package rowconv

import (
	"bytes"
	"encoding/json"
)

// Row is an ordered mapping from column name to value. Column names are
// unique within a row: setting an existing name keeps its position and
// replaces its value.
type Row struct {
	columns []string
	values  map[string]Value
}

// NewRow creates an empty row with room for n columns.
func NewRow(n int) Row {
	return Row{
		columns: make([]string, 0, n),
		values:  make(map[string]Value, n),
	}
}

// Set stores the value of a column.
func (r *Row) Set(column string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = v
}

// Get returns the value of a column.
func (r Row) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column names in order.
func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.columns)
}

// Map returns the row as a plain map of Go values.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for _, c := range r.columns {
		m[c] = r.values[c].Interface()
	}
	return m
}

// MarshalJSON encodes the row as a JSON object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[c])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
