package introspection

import (
	"context"

	"github.com/satishbabariya/nlsql/internal/adapters/database"
	"github.com/satishbabariya/nlsql/internal/apperr"
)

const (
	sqliteTablesQuery  = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	sqliteColumnsQuery = `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`
)

// SQLiteIntrospector reads user tables through pragma_table_info. SQLite does
// not report constraints there, so ConstraintType is always nil.
type SQLiteIntrospector struct {
	session *database.SQLiteSession
}

// Introspect implements Introspector.
func (i *SQLiteIntrospector) Introspect(ctx context.Context) ([]SchemaFact, error) {
	tables, err := i.tables(ctx)
	if err != nil {
		return nil, err
	}

	facts := []SchemaFact{}
	for _, table := range tables {
		columns, err := i.columns(ctx, table)
		if err != nil {
			return nil, err
		}
		facts = append(facts, columns...)
	}
	return facts, nil
}

// tables lists table names. The result set is closed before returning since
// the session holds a single connection.
func (i *SQLiteIntrospector) tables(ctx context.Context) ([]string, error) {
	rows, err := i.session.Query(ctx, sqliteTablesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperr.Wrap(apperr.QueryError, err, "")
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.QueryError, err, "")
	}
	return tables, nil
}

func (i *SQLiteIntrospector) columns(ctx context.Context, table string) ([]SchemaFact, error) {
	rows, err := i.session.Query(ctx, sqliteColumnsQuery, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []SchemaFact
	for rows.Next() {
		fact := SchemaFact{TableName: table}
		if err := rows.Scan(&fact.ColumnName, &fact.DataType); err != nil {
			return nil, apperr.Wrap(apperr.QueryError, err, "table %s", table)
		}
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.QueryError, err, "table %s", table)
	}
	return facts, nil
}
