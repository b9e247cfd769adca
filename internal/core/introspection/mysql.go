package introspection

import (
	"context"
	"regexp"
	"strings"

	"github.com/satishbabariya/nlsql/internal/adapters/database"
	"github.com/satishbabariya/nlsql/internal/apperr"
)

const mysqlFactsQuery = `
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
	WHERE c.table_schema = ?
	ORDER BY c.table_name, c.ordinal_position
`

var databaseNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DatabaseName returns the trailing path segment of a MySQL connection
// string, without its query parameters. Only letters, digits and underscores
// are accepted.
func DatabaseName(connectionString string) (string, error) {
	idx := strings.LastIndex(connectionString, "/")
	if idx < 0 {
		return "", apperr.New(apperr.ConfigError, "No database name in connection string")
	}
	name, _, _ := strings.Cut(connectionString[idx+1:], "?")
	if !databaseNamePattern.MatchString(name) {
		return "", apperr.New(apperr.ConfigError, "Invalid database name %q", name)
	}
	return name, nil
}

// MySQLIntrospector reads the schema named by the connection string.
type MySQLIntrospector struct {
	session          *database.MySQLSession
	connectionString string
}

// Introspect implements Introspector. The database name is validated before
// any query is issued.
func (i *MySQLIntrospector) Introspect(ctx context.Context) ([]SchemaFact, error) {
	name, err := DatabaseName(i.connectionString)
	if err != nil {
		return nil, err
	}

	rows, err := i.session.Query(ctx, mysqlFactsQuery, name)
	if err != nil {
		return nil, err
	}
	return scanFacts(rows)
}
