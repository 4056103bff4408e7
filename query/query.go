// Package query builds and runs single-table SELECT statements from
// condition trees.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/satishbabariya/litemodel/query/condition"
	"github.com/satishbabariya/litemodel/query/sqlgen"
)

// ErrRecordNotFound is returned when a single-row query matches nothing.
var ErrRecordNotFound = errors.New("record not found")

// NotFoundError is returned when a query with limit 1 matched no rows.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s record found", e.Table)
}

// Is reports whether target is ErrRecordNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// Query is an immutable description of a SELECT on one table. Builder
// methods return modified copies; copies share the Session and therefore
// the memoized connection.
type Query struct {
	table   string
	where   *condition.Node
	order   *sqlgen.OrderBy
	limit   int
	gen     *sqlgen.Generator
	session *Session
}

// Option configures a Query.
type Option func(*Query)

// WithDialect compiles statements for d.
func WithDialect(d sqlgen.Dialect) Option {
	return func(q *Query) {
		q.gen = sqlgen.NewGenerator(d)
	}
}

// WithGenerator compiles statements with g.
func WithGenerator(g *sqlgen.Generator) Option {
	return func(q *Query) {
		q.gen = g
	}
}

// WithSession runs statements on an existing session instead of a new one.
func WithSession(s *Session) Option {
	return func(q *Query) {
		q.session = s
	}
}

// New creates a query on table. Without options it uses the Named dialect,
// a fresh Session over provider, and a limit of one row.
func New(table string, provider ConnProvider, opts ...Option) *Query {
	q := &Query{
		table: table,
		limit: 1,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.gen == nil {
		q.gen = sqlgen.NewGenerator(sqlgen.Named)
	}
	if q.session == nil {
		q.session = NewSession(provider)
	}
	return q
}

// Where replaces the query condition. A nil condition selects every row.
func (q *Query) Where(cond *condition.Node) *Query {
	c := *q
	c.where = cond
	return &c
}

// Limit sets the row cap. 0 removes the LIMIT clause; negative values are
// treated as 0.
func (q *Query) Limit(n int) *Query {
	if n < 0 {
		n = 0
	}
	c := *q
	c.limit = n
	return &c
}

// OrderBy sorts by columns, descending unless ascending is set. No columns
// removes the ordering.
func (q *Query) OrderBy(columns []string, ascending bool) *Query {
	c := *q
	if len(columns) == 0 {
		c.order = nil
	} else {
		c.order = &sqlgen.OrderBy{
			Columns:   append([]string(nil), columns...),
			Ascending: ascending,
		}
	}
	return &c
}

// Table returns the table the query reads.
func (q *Query) Table() string { return q.table }

// Condition returns the WHERE tree, or nil.
func (q *Query) Condition() *condition.Node { return q.where }

// LimitValue returns the row cap, 0 meaning unbounded.
func (q *Query) LimitValue() int { return q.limit }

// Session returns the session the query runs on.
func (q *Query) Session() *Session { return q.session }

// Statement compiles the query without running it.
func (q *Query) Statement() (*sqlgen.Query, error) {
	return q.gen.Select(sqlgen.Select{
		Table: q.table,
		Where: q.where,
		Order: q.order,
		Limit: q.limit,
	})
}

// Find runs the query. With a limit of one it returns exactly one row or a
// *NotFoundError; with any other limit it returns zero or more rows and never
// fails on an empty result.
func (q *Query) Find(ctx context.Context) ([]Row, error) {
	stmt, err := q.Statement()
	if err != nil {
		return nil, err
	}

	rows, err := q.session.QueryRows(ctx, stmt.SQL, q.gen.Bind(stmt.Args)...)
	if err != nil {
		return nil, err
	}

	if q.limit == 1 && len(rows) == 0 {
		return nil, &NotFoundError{Table: q.table}
	}
	return rows, nil
}

// One runs the query with a limit of one and returns the row.
func (q *Query) One(ctx context.Context) (Row, error) {
	rows, err := q.Limit(1).Find(ctx)
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}
