package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
)

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.SQLite, "file::memory:")
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.(*SQLiteSession)
	require.True(t, ok)
	assert.Equal(t, config.SQLite, s.Dialect())

	rows, err := s.Query(ctx, "select 1")
	require.NoError(t, err)
	defer rows.Close()
	assert.True(t, rows.Next())
}

func TestSQLiteQueryError(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.SQLite, "sqlite::memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Query(ctx, "select * from missing_table")
	require.Error(t, err)
	assert.Equal(t, apperr.QueryError, apperr.KindOf(err))
}

func TestOpenFailuresAreConnectionErrors(t *testing.T) {
	tests := []struct {
		name   string
		dbType config.DBType
		conn   string
	}{
		{"sqlite missing file read-only", config.SQLite, "file:/nonexistent/dir/nope.db?mode=ro"},
		{"postgres refused", config.PostgreSQL, "postgres://postgres@127.0.0.1:1/test?sslmode=disable&connect_timeout=1"},
		{"mysql refused", config.MySQL, "root@tcp(127.0.0.1:1)/test?timeout=1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.dbType, tt.conn)
			require.Error(t, err)
			assert.Equal(t, apperr.ConnectionError, apperr.KindOf(err))
			assert.Contains(t, err.Error(), string(tt.dbType))
		})
	}
}

func TestOpenUnknownDBType(t *testing.T) {
	_, err := Open(context.Background(), config.DBType("Oracle"), "x")
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
}

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user:pw@tcp(localhost:3306)/shop", "user:pw@tcp(localhost:3306)/shop"},
		{"mysql://user:pw@db.local/shop", "user:pw@tcp(db.local:3306)/shop"},
		{"mysql://root@127.0.0.1:3307/app", "root@tcp(127.0.0.1:3307)/app"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := MySQLDSN(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := MySQLDSN("not a dsn at all")
	assert.Equal(t, apperr.ConfigError, apperr.KindOf(err))
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, "test.db", SQLitePath("sqlite://test.db"))
	assert.Equal(t, ":memory:", SQLitePath("sqlite::memory:"))
	assert.Equal(t, "file:test.db", SQLitePath("file:test.db"))
	assert.Equal(t, "/var/data/app.db", SQLitePath("/var/data/app.db"))
}

func TestFromDB(t *testing.T) {
	for _, dbType := range config.DBTypes {
		t.Run(string(dbType), func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)

			s, err := FromDB(db, dbType)
			require.NoError(t, err)
			assert.Equal(t, dbType, s.Dialect())

			mock.ExpectQuery("select 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
			rows, err := s.Query(context.Background(), "select 1")
			require.NoError(t, err)
			require.NoError(t, rows.Close())

			mock.ExpectClose()
			require.NoError(t, s.Close())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
