package database

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/satishbabariya/nlsql/internal/adapters/database/pool"
	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/config"
)

const mysqlDriver = "mysql"

// MySQLSession is a session on a MySQL server.
type MySQLSession struct {
	base
}

func openMySQL(ctx context.Context, connectionString string) (*MySQLSession, error) {
	dsn, err := MySQLDSN(connectionString)
	if err != nil {
		return nil, err
	}

	p, err := pool.Open(ctx, mysqlDriver, dsn, pool.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &MySQLSession{base{pool: p, dialect: config.MySQL}}, nil
}

// MySQLDSN converts a mysql:// URL into a go-sql-driver DSN. Anything else is
// validated as a DSN and returned unchanged.
func MySQLDSN(connectionString string) (string, error) {
	if !strings.HasPrefix(connectionString, "mysql://") {
		if _, err := mysql.ParseDSN(connectionString); err != nil {
			return "", apperr.Wrap(apperr.ConfigError, err, "invalid MySQL connection string")
		}
		return connectionString, nil
	}

	u, err := url.Parse(connectionString)
	if err != nil {
		return "", apperr.Wrap(apperr.ConfigError, err, "invalid MySQL connection string")
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" && u.Host != "" {
		cfg.Addr = u.Host + ":3306"
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	if q := u.Query(); len(q) > 0 {
		cfg.Params = make(map[string]string, len(q))
		for k := range q {
			cfg.Params[k] = q.Get(k)
		}
	}

	return cfg.FormatDSN(), nil
}
