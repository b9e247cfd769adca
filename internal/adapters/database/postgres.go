package database

import (
	"context"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/satishbabariya/nlsql/internal/adapters/database/pool"
	"github.com/satishbabariya/nlsql/internal/config"
)

const postgresDriver = "postgres"

// PostgresSession is a session on a PostgreSQL server.
type PostgresSession struct {
	base
}

// openPostgres hands the connection string to lib/pq unchanged; both URLs and
// key=value strings are accepted there.
func openPostgres(ctx context.Context, connectionString string) (*PostgresSession, error) {
	p, err := pool.Open(ctx, postgresDriver, connectionString, pool.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &PostgresSession{base{pool: p, dialect: config.PostgreSQL}}, nil
}
