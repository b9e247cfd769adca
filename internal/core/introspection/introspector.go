// Package introspection reads table and column metadata from the connected
// backend and renders it as knowledge text for the inference prompt.
package introspection

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/satishbabariya/nlsql/internal/adapters/database"
	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/debug"
)

// KnowledgeSeparator precedes the serialized facts in the knowledge text.
const KnowledgeSeparator = ". sql table and constrains information:"

// SchemaFact is one (table, column) pair with its declared type and the kind
// of constraint the column takes part in, if the backend reports one.
type SchemaFact struct {
	TableName      string  `json:"table_name"`
	ColumnName     string  `json:"column_name"`
	DataType       string  `json:"data_type"`
	ConstraintType *string `json:"constraint_type"`
}

// Introspector reads the schema facts of one backend.
type Introspector interface {
	Introspect(ctx context.Context) ([]SchemaFact, error)
}

// For returns the introspector matching the session's backend.
// connectionString is consulted by backends that derive the schema name from it.
func For(session database.Session, connectionString string) (Introspector, error) {
	switch s := session.(type) {
	case *database.PostgresSession:
		return &PostgresIntrospector{session: s}, nil
	case *database.MySQLSession:
		return &MySQLIntrospector{session: s, connectionString: connectionString}, nil
	case *database.SQLiteSession:
		return &SQLiteIntrospector{session: s}, nil
	}
	return nil, apperr.New(apperr.QueryError, "no introspector for session %T", session)
}

// Introspect reads the schema facts of the session's backend.
func Introspect(ctx context.Context, session database.Session, connectionString string) ([]SchemaFact, error) {
	i, err := For(session, connectionString)
	if err != nil {
		return nil, err
	}
	facts, err := i.Introspect(ctx)
	if err != nil {
		return nil, err
	}
	debug.Debug("schema introspected", "dialect", session.Dialect(), "facts", len(facts))
	return facts, nil
}

// AppendKnowledge appends the serialized facts to knowledge.
func AppendKnowledge(knowledge string, facts []SchemaFact) (string, error) {
	if facts == nil {
		facts = []SchemaFact{}
	}
	data, err := json.Marshal(facts)
	if err != nil {
		return "", apperr.Wrap(apperr.ExecutionError, err, "")
	}
	return knowledge + KnowledgeSeparator + string(data), nil
}

// scanFacts reads rows of (table, column, type, constraint).
func scanFacts(rows *sql.Rows) ([]SchemaFact, error) {
	defer rows.Close()

	facts := []SchemaFact{}
	for rows.Next() {
		var (
			fact       SchemaFact
			constraint sql.NullString
		)
		if err := rows.Scan(&fact.TableName, &fact.ColumnName, &fact.DataType, &constraint); err != nil {
			return nil, apperr.Wrap(apperr.QueryError, err, "")
		}
		if constraint.Valid {
			c := constraint.String
			fact.ConstraintType = &c
		}
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.QueryError, err, "")
	}
	return facts, nil
}
