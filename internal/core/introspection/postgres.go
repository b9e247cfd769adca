package introspection

import (
	"context"

	"github.com/satishbabariya/nlsql/internal/adapters/database"
)

const postgresFactsQuery = `
	SELECT
		c.table_name,
		c.column_name,
		c.data_type,
		tc.constraint_type
	FROM information_schema.columns c
	LEFT JOIN information_schema.key_column_usage kcu
		ON c.table_name = kcu.table_name
		AND c.column_name = kcu.column_name
		AND c.table_schema = kcu.table_schema
	LEFT JOIN information_schema.table_constraints tc
		ON kcu.constraint_name = tc.constraint_name
		AND kcu.table_schema = tc.table_schema
	WHERE c.table_schema = 'public'
	ORDER BY c.table_name, c.ordinal_position
`

// PostgresIntrospector reads the public schema.
type PostgresIntrospector struct {
	session *database.PostgresSession
}

// Introspect implements Introspector.
func (i *PostgresIntrospector) Introspect(ctx context.Context) ([]SchemaFact, error) {
	rows, err := i.session.Query(ctx, postgresFactsQuery)
	if err != nil {
		return nil, err
	}
	return scanFacts(rows)
}
