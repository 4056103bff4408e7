// Package client opens database connections from an explicit configuration
// and hands them to queries and repositories.
package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/satishbabariya/litemodel/internal/debug"
	"github.com/satishbabariya/litemodel/model"
	"github.com/satishbabariya/litemodel/query"
	"github.com/satishbabariya/litemodel/query/sqlgen"
)

// ErrUnsupportedProvider is returned for a provider with no known driver.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ErrClosed is returned by the connection provider after Close.
var ErrClosed = errors.New("client is closed")

// Config holds everything needed to open a database.
type Config struct {
	// Provider is one of postgresql, mysql, sqlite or duckdb.
	Provider string
	// URL is the driver data source name.
	URL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// ConnectTimeout bounds the initial ping (0 = no timeout).
	ConnectTimeout time.Duration
}

// DefaultConfig returns sensible default pool configuration.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// Option is a function that configures the client.
type Option func(*Config)

// WithProvider sets the database provider.
func WithProvider(provider string) Option {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithURL sets the data source name.
func WithURL(url string) Option {
	return func(c *Config) {
		c.URL = url
	}
}

// WithMaxOpenConns caps open connections.
func WithMaxOpenConns(n int) Option {
	return func(c *Config) {
		c.MaxOpenConns = n
	}
}

// WithMaxIdleConns caps idle connections.
func WithMaxIdleConns(n int) Option {
	return func(c *Config) {
		c.MaxIdleConns = n
	}
}

// WithConnMaxLifetime sets the maximum lifetime of a connection.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(c *Config) {
		c.ConnMaxLifetime = d
	}
}

// WithConnMaxIdleTime sets the maximum idle time of a connection.
func WithConnMaxIdleTime(d time.Duration) Option {
	return func(c *Config) {
		c.ConnMaxIdleTime = d
	}
}

// WithConnectTimeout bounds the initial ping.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ConnectTimeout = d
	}
}

// NewConfig applies opts to DefaultConfig.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DriverName maps provider names to Go database driver names.
func DriverName(provider string) (string, error) {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	case "duckdb":
		return "duckdb", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}

// Client owns a connection pool for one database.
type Client struct {
	db      *sql.DB
	config  Config
	dialect sqlgen.Dialect
	gen     *sqlgen.Generator
	closed  atomic.Bool
}

// Open opens and pings the database described by cfg.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	driverName, err := DriverName(cfg.Provider)
	if err != nil {
		return nil, err
	}
	// DuckDB opens an in-memory database for an empty URL.
	if cfg.URL == "" && driverName != "duckdb" {
		return nil, fmt.Errorf("%s: empty database URL", cfg.Provider)
	}

	db, err := sql.Open(driverName, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driverName == "sqlite3" {
		// SQLite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driverName == "sqlite3" {
		// Enable foreign keys (disabled by default in SQLite)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	dialect := sqlgen.DialectFor(cfg.Provider)
	debug.Debug("database opened", "provider", cfg.Provider, "driver", driverName, "dialect", dialect.Name)

	return &Client{
		db:      db,
		config:  cfg,
		dialect: dialect,
		gen:     sqlgen.NewGenerator(dialect),
	}, nil
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB { return c.db }

// Config returns the configuration the client was opened with.
func (c *Client) Config() Config { return c.config }

// Dialect returns the SQL dialect of the database.
func (c *Client) Dialect() sqlgen.Dialect { return c.dialect }

// Generator returns a SQL generator for the database.
func (c *Client) Generator() *sqlgen.Generator { return c.gen }

// ConnProvider returns a provider handing out the client's pool. It fails
// once the client is closed.
func (c *Client) ConnProvider() query.ConnProvider {
	return func() (query.Conn, error) {
		if c.closed.Load() {
			return nil, ErrClosed
		}
		return c.db, nil
	}
}

// Query starts a query on table.
func (c *Client) Query(table string) *query.Query {
	return query.New(table, c.ConnProvider(), query.WithGenerator(c.gen))
}

// Repository creates a repository for schema.
func (c *Client) Repository(schema *model.Schema) *model.Repository {
	return model.NewRepository(schema, c.ConnProvider(), model.WithDialect(c.dialect))
}

// Close closes the database connection
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}
