package database

import (
	"context"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/satishbabariya/nlsql/internal/adapters/database/pool"
	"github.com/satishbabariya/nlsql/internal/config"
)

const sqliteDriver = "sqlite3"

// SQLiteSession is a session on a SQLite database file.
type SQLiteSession struct {
	base
}

func openSQLite(ctx context.Context, connectionString string) (*SQLiteSession, error) {
	// One connection: in-memory databases are per connection and SQLite
	// serializes writers anyway.
	p, err := pool.Open(ctx, sqliteDriver, SQLitePath(connectionString), pool.SingleConnConfig())
	if err != nil {
		return nil, err
	}
	return &SQLiteSession{base{pool: p, dialect: config.SQLite}}, nil
}

// SQLitePath strips the sqlite:// and sqlite: schemes. file: URIs and plain
// paths are passed to the driver as they are.
func SQLitePath(connectionString string) string {
	switch {
	case strings.HasPrefix(connectionString, "sqlite://"):
		return strings.TrimPrefix(connectionString, "sqlite://")
	case strings.HasPrefix(connectionString, "sqlite:"):
		return strings.TrimPrefix(connectionString, "sqlite:")
	}
	return connectionString
}
