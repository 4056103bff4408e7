package query

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satishbabariya/litemodel/internal/debug"
)

// Conn is the part of a database handle the executor needs. *sql.DB,
// *sql.Conn and *sql.Tx all satisfy it.
type Conn interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// ConnProvider returns a live connection. It is called lazily, on the first
// statement a Session runs.
type ConnProvider func() (Conn, error)

// Row is one result row keyed by column name.
type Row map[string]interface{}

// Session memoizes one connection and runs statements on it one at a time.
// Queries derived from each other share their Session.
type Session struct {
	mu       sync.Mutex
	provider ConnProvider
	conn     Conn
}

// NewSession creates a session that will take its connection from provider.
func NewSession(provider ConnProvider) *Session {
	return &Session{provider: provider}
}

// acquire returns the memoized connection, asking the provider on first use.
// A failed attempt is not memoized. The caller holds s.mu.
func (s *Session) acquire() (Conn, error) {
	if s.conn != nil {
		return s.conn, nil
	}
	if s.provider == nil {
		return nil, fmt.Errorf("query: no connection provider")
	}
	conn, err := s.provider()
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

// do runs fn with the session connection while holding the session lock,
// so the connection never serves two statements at once.
func (s *Session) do(fn func(Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.acquire()
	if err != nil {
		return err
	}
	return fn(conn)
}

// QueryRows prepares and runs a row-returning statement. Driver errors are
// returned unchanged.
func (s *Session) QueryRows(ctx context.Context, query string, args ...interface{}) ([]Row, error) {
	log := debug.With("query_id", uuid.NewString())
	start := time.Now()

	var rows []Row
	err := s.do(func(conn Conn) error {
		stmt, err := conn.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		rs, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			return err
		}
		defer rs.Close()

		rows, err = scanRows(rs)
		return err
	})

	log.Debug("query", "sql", query, "args", len(args), "rows", len(rows), "duration", time.Since(start), "error", err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Exec prepares and runs a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	log := debug.With("query_id", uuid.NewString())
	start := time.Now()

	var result sql.Result
	err := s.do(func(conn Conn) error {
		stmt, err := conn.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		result, err = stmt.ExecContext(ctx, args...)
		return err
	})

	log.Debug("exec", "sql", query, "args", len(args), "duration", time.Since(start), "error", err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scanRows reads every row into a map, turning []byte values into strings.
func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
