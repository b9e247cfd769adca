// Package database owns the backend sessions of the engine: exactly one of
// MySQL, PostgreSQL or SQLite, selected by the configured tag.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/satishbabariya/nlsql/internal/adapters/database/pool"
	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
	"github.com/satishbabariya/nlsql/internal/debug"
)

// Session is an open handle to one backend. The set of implementations is
// closed: *MySQLSession, *PostgresSession and *SQLiteSession. Callers that
// need backend-specific behavior switch on the concrete type.
type Session interface {
	// Dialect returns the tag of the configuration that opened the session.
	Dialect() config.DBType

	// Query executes SQL text and returns the native rows.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// Pool returns the pool backing the session.
	Pool() *pool.Pool

	// Close releases the session. It is safe to call more than once.
	Close() error

	sealed()
}

// base carries what every session shares.
type base struct {
	pool    *pool.Pool
	dialect config.DBType
}

func (b *base) sealed() {}

// Dialect returns the session's backend tag.
func (b *base) Dialect() config.DBType {
	return b.dialect
}

// Pool returns the pool backing the session.
func (b *base) Pool() *pool.Pool {
	return b.pool
}

// Query executes SQL text. Failures are reported as QueryError.
func (b *base) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if b.pool == nil {
		return nil, apperr.New(apperr.ConnectionError, "No database connection established")
	}
	debug.Debug("executing query", "dialect", b.dialect, "sql", query)
	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.QueryError, err, "")
	}
	return rows, nil
}

// Close releases the session's pool.
func (b *base) Close() error {
	if b.pool == nil {
		return nil
	}
	return b.pool.Close()
}

// Open opens a session for the given backend. Failures are reported as
// ConnectionError carrying the backend name and the driver message; they are
// never retried.
func Open(ctx context.Context, dbType config.DBType, connectionString string) (Session, error) {
	var (
		s   Session
		err error
	)
	switch dbType {
	case config.MySQL:
		s, err = openMySQL(ctx, connectionString)
	case config.PostgreSQL:
		s, err = openPostgres(ctx, connectionString)
	case config.SQLite:
		s, err = openSQLite(ctx, connectionString)
	default:
		return nil, apperr.New(apperr.ConfigError, "unknown db_type %q", string(dbType))
	}
	if err != nil {
		if apperr.Is(err, apperr.ConfigError) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.ConnectionError, err, "%s connection error", dbType)
	}

	debug.Info("session opened", "dialect", dbType)
	return s, nil
}

// FromDB wraps an opened *sql.DB as a session of the given backend. It is
// used by tests driving the engine through sqlmock.
func FromDB(db *sql.DB, dbType config.DBType) (Session, error) {
	switch dbType {
	case config.MySQL:
		return &MySQLSession{base{pool: pool.FromDB(db, mysqlDriver, pool.DefaultConfig()), dialect: dbType}}, nil
	case config.PostgreSQL:
		return &PostgresSession{base{pool: pool.FromDB(db, postgresDriver, pool.DefaultConfig()), dialect: dbType}}, nil
	case config.SQLite:
		return &SQLiteSession{base{pool: pool.FromDB(db, sqliteDriver, pool.SingleConnConfig()), dialect: dbType}}, nil
	}
	return nil, fmt.Errorf("unknown db_type %q", dbType)
}
