package rowconv

import (
	"database/sql"
	"strings"

	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
)

// Column describes one result column.
type Column struct {
	Name string
	// DatabaseType is the driver's native type name, e.g. "INT4" or "VARCHAR".
	DatabaseType string
}

// Converter converts rows of one backend.
type Converter struct {
	dialect config.DBType
	rules   map[string]rule
	// untyped handles columns whose type name is empty; nil maps them to null.
	untyped rule
}

// For returns the converter of a backend.
func For(dialect config.DBType) (*Converter, error) {
	switch dialect {
	case config.MySQL:
		return mysqlConverter, nil
	case config.PostgreSQL:
		return postgresConverter, nil
	case config.SQLite:
		return sqliteConverter, nil
	}
	return nil, apperr.New(apperr.ConfigError, "no row converter for db_type %q", string(dialect))
}

// Dialect returns the backend the converter serves.
func (c *Converter) Dialect() config.DBType {
	return c.dialect
}

// normalizeType upper-cases a type name and drops any size suffix, so that
// "varchar(255)" and "VARCHAR" share a rule.
func normalizeType(name string) string {
	name, _, _ = strings.Cut(name, "(")
	return strings.ToUpper(strings.TrimSpace(name))
}

// Known reports whether the backend's table has a rule for the type.
func (c *Converter) Known(typeName string) bool {
	t := normalizeType(typeName)
	if t == "" {
		return c.untyped != nil
	}
	_, ok := c.rules[t]
	return ok
}

func (c *Converter) ruleFor(typeName string) rule {
	t := normalizeType(typeName)
	if t == "" {
		return c.untyped
	}
	return c.rules[t]
}

// Convert converts one native row. NULL maps to null, unknown types map to
// null, and any value that cannot be read as its declared type fails the
// whole row with SqlReadError.
func (c *Converter) Convert(columns []Column, values []any) (Row, error) {
	if len(columns) != len(values) {
		return Row{}, apperr.New(apperr.SqlReadError, "row has %d values for %d columns", len(values), len(columns))
	}

	row := NewRow(len(columns))
	for i, col := range columns {
		raw := values[i]
		r := c.ruleFor(col.DatabaseType)
		if raw == nil || r == nil {
			row.Set(col.Name, Null())
			continue
		}
		v, err := r(raw)
		if err != nil {
			return Row{}, apperr.Wrap(apperr.SqlReadError, err, "column %q (%s)", col.Name, col.DatabaseType)
		}
		row.Set(col.Name, v)
	}
	return row, nil
}

// Columns reads the column descriptions of a result set.
func Columns(rows *sql.Rows) ([]Column, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, apperr.Wrap(apperr.SqlReadError, err, "")
	}
	cols := make([]Column, len(types))
	for i, t := range types {
		cols[i] = Column{Name: t.Name(), DatabaseType: t.DatabaseTypeName()}
	}
	return cols, nil
}

// ConvertRows drains and converts a result set. It does not close rows.
func (c *Converter) ConvertRows(rows *sql.Rows) ([]Row, error) {
	cols, err := Columns(rows)
	if err != nil {
		return nil, err
	}

	result := []Row{}
	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		for i := range values {
			values[i] = nil
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, apperr.Wrap(apperr.SqlReadError, err, "")
		}
		row, err := c.Convert(cols, values)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.QueryError, err, "")
	}
	return result, nil
}

// register maps every name to r.
func register(m map[string]rule, r rule, names ...string) {
	for _, n := range names {
		m[n] = r
	}
}
