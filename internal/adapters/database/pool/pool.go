// Package pool provides the connection pool backing a backend session.
package pool

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/satishbabariya/nlsql/internal/debug"
)

// Config holds connection pool configuration.
type Config struct {
	// MaxOpenConns is the maximum number of open connections (0 = unlimited).
	MaxOpenConns int
	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum lifetime of a connection.
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum idle time of a connection.
	ConnMaxIdleTime time.Duration
	// HealthCheckInterval is how often to ping the backend; zero disables it.
	HealthCheckInterval time.Duration
}

// DefaultHealthCheckInterval is how often network backends are pinged while
// a session is open.
const DefaultHealthCheckInterval = time.Minute

// DefaultConfig returns the pool settings for a single-user client session
// over the network.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:        4,
		MaxIdleConns:        2,
		ConnMaxLifetime:     30 * time.Minute,
		ConnMaxIdleTime:     10 * time.Minute,
		HealthCheckInterval: DefaultHealthCheckInterval,
	}
}

// SingleConnConfig returns settings for file databases that must share one
// connection, such as SQLite in-memory databases. There is no background
// health check: a ping would queue behind an open result set.
func SingleConnConfig() Config {
	return Config{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// Pool owns the *sql.DB of one session.
type Pool struct {
	db     *sql.DB
	driver string
	config Config

	mu              sync.RWMutex
	failedChecks    int64
	lastHealthCheck time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// Open opens a pool and verifies the backend is reachable.
func Open(ctx context.Context, driverName, dataSourceName string, config Config) (*Pool, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return FromDB(db, driverName, config), nil
}

// FromDB wraps an already opened *sql.DB.
func FromDB(db *sql.DB, driverName string, config Config) *Pool {
	loopCtx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		db:     db,
		driver: driverName,
		config: config,
		cancel: cancel,
	}

	if config.HealthCheckInterval > 0 {
		p.wg.Add(1)
		go p.healthCheckLoop(loopCtx)
	}

	return p
}

// DB returns the underlying *sql.DB.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Driver returns the database/sql driver name.
func (p *Pool) Driver() string {
	return p.driver
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	dbStats := p.db.Stats()

	return Stats{
		MaxOpenConnections: p.config.MaxOpenConns,
		OpenConnections:    dbStats.OpenConnections,
		InUse:              dbStats.InUse,
		Idle:               dbStats.Idle,
		FailedHealthChecks: p.failedChecks,
		LastHealthCheck:    p.lastHealthCheck,
	}
}

// Stats represents pool statistics.
type Stats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	FailedHealthChecks int64
	LastHealthCheck    time.Time
}

// HealthCheck pings the backend.
func (p *Pool) HealthCheck(ctx context.Context) error {
	p.mu.Lock()
	p.lastHealthCheck = time.Now()
	p.mu.Unlock()

	if err := p.db.PingContext(ctx); err != nil {
		p.mu.Lock()
		p.failedChecks++
		p.mu.Unlock()
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

func (p *Pool) healthCheckLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := p.HealthCheck(checkCtx); err != nil {
				debug.Warn("pool health check failed", "driver", p.driver, "error", err)
			}
			cancel()
		}
	}
}

// Close stops the health check loop and closes the database. It is safe to
// call more than once.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	return p.db.Close()
}

// Query executes a query that returns rows.
func (p *Pool) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return p.db.QueryContext(ctx, query, args...)
}
