package query_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/litemodel/query"
	"github.com/satishbabariya/litemodel/query/condition"
	"github.com/satishbabariya/litemodel/query/sqlgen"
)

var dbSeq atomic.Int64

const schema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	age INTEGER NOT NULL,
	flags INTEGER NOT NULL DEFAULT 0,
	deleted_at TEXT
);
INSERT INTO users (id, name, age, flags, deleted_at) VALUES
	(1, 'Alice', 34, 5, NULL),
	(2, 'bob', 27, 4, NULL),
	(3, 'Carol', 41, 1, '2024-01-01'),
	(4, '50%_off', 19, 0, NULL),
	(5, '50xxoff', 22, 0, NULL);
`

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:query_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func provider(db *sql.DB, calls *atomic.Int32) query.ConnProvider {
	return func() (query.Conn, error) {
		if calls != nil {
			calls.Add(1)
		}
		return db, nil
	}
}

func col(name string) *condition.Node {
	return condition.Must(condition.Column(name))
}

func must(n *condition.Node, err error) *condition.Node {
	return condition.Must(n, err)
}

func names(rows []query.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r["name"].(string)
	}
	return out
}

func TestFind_SingleRow(t *testing.T) {
	db := openDB(t)
	q := query.New("users", provider(db, nil), query.WithDialect(sqlgen.SQLite))

	rows, err := q.Where(must(col("name").Eq("bob"))).Find(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0]["id"])
	assert.Equal(t, int64(27), rows[0]["age"])
	assert.Nil(t, rows[0]["deleted_at"])
}

func TestFind_NotFound(t *testing.T) {
	db := openDB(t)
	q := query.New("users", provider(db, nil))

	_, err := q.Where(must(col("age").Gt(100))).Find(context.Background())
	require.Error(t, err)
	assert.True(t, query.IsNotFound(err))

	var nf *query.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "users", nf.Table)
	assert.Equal(t, "no users record found", err.Error())
}

func TestFind_UnboundedEmpty(t *testing.T) {
	db := openDB(t)
	q := query.New("users", provider(db, nil)).Limit(0)

	rows, err := q.Where(must(col("age").Gt(100))).Find(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFind_LimitAndOrder(t *testing.T) {
	db := openDB(t)
	q := query.New("users", provider(db, nil))

	rows, err := q.Limit(0).OrderBy([]string{"age"}, false).Find(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Carol", "Alice", "bob", "50xxoff", "50%_off"}, names(rows))

	rows, err = q.Limit(2).OrderBy([]string{"age"}, true).Find(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"50%_off", "50xxoff"}, names(rows))
}

func TestFind_Predicates(t *testing.T) {
	db := openDB(t)

	tests := []struct {
		name string
		cond *condition.Node
		want []string
	}{
		{
			name: "contains ignores case",
			cond: must(col("name").Contains("AL")),
			want: []string{"Alice"},
		},
		{
			name: "contains treats wildcards literally",
			cond: must(col("name").Contains("50%_off")),
			want: []string{"50%_off"},
		},
		{
			name: "starts with",
			cond: must(col("name").StartsWith("c")),
			want: []string{"Carol"},
		},
		{
			name: "ends with",
			cond: must(col("name").EndsWith("OFF")),
			want: []string{"50%_off", "50xxoff"},
		},
		{
			name: "in",
			cond: must(col("id").In([]int{1, 3})),
			want: []string{"Alice", "Carol"},
		},
		{
			name: "is null negated",
			cond: must(condition.Not(must(col("deleted_at").IsNull()))),
			want: []string{"Carol"},
		},
		{
			name: "bit and",
			cond: must(must(col("flags").BitAnd(4)).Gt(0)),
			want: []string{"Alice", "bob"},
		},
		{
			name: "any of all",
			cond: must(condition.Any(
				must(condition.All(must(col("age").Ge(30)), must(col("deleted_at").IsNull()))),
				must(col("name").Eq("bob")),
			)),
			want: []string{"Alice", "bob"},
		},
		{
			name: "integer as boolean",
			cond: must(must(col("flags").BitAnd(1)).Eq(true)),
			want: []string{"Alice", "Carol"},
		},
	}

	// Named is the default; its patterns must ignore case like SQLite's.
	for _, d := range []sqlgen.Dialect{sqlgen.SQLite, sqlgen.Named} {
		q := query.New("users", provider(db, nil), query.WithDialect(d)).
			Limit(0).
			OrderBy([]string{"id"}, true)

		for _, tt := range tests {
			t.Run(d.Name+"/"+tt.name, func(t *testing.T) {
				rows, err := q.Where(tt.cond).Find(context.Background())
				require.NoError(t, err)
				assert.Equal(t, tt.want, names(rows))
			})
		}
	}
}

func TestOne(t *testing.T) {
	db := openDB(t)
	q := query.New("users", provider(db, nil)).Limit(0)

	row, err := q.Where(must(col("id").Eq(3))).One(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Carol", row["name"])

	_, err = q.Where(must(col("id").Eq(99))).One(context.Background())
	assert.ErrorIs(t, err, query.ErrRecordNotFound)
}

func TestConnectionIsMemoized(t *testing.T) {
	db := openDB(t)
	var calls atomic.Int32
	q := query.New("users", provider(db, &calls)).Limit(0)

	assert.Zero(t, calls.Load(), "provider must not be called before the first statement")

	ctx := context.Background()
	_, err := q.Find(ctx)
	require.NoError(t, err)
	_, err = q.Where(must(col("id").Eq(1))).Limit(1).Find(ctx)
	require.NoError(t, err)
	_, err = q.OrderBy([]string{"name"}, true).Find(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())

	other := query.New("users", provider(db, &calls))
	_, err = other.Find(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestProviderErrorPropagates(t *testing.T) {
	boom := errors.New("dial failed")
	db := openDB(t)
	fail := true
	q := query.New("users", func() (query.Conn, error) {
		if fail {
			return nil, boom
		}
		return db, nil
	})

	_, err := q.Find(context.Background())
	assert.Same(t, boom, err)

	fail = false
	_, err = q.Find(context.Background())
	assert.NoError(t, err)
}

func TestDriverErrorPropagates(t *testing.T) {
	db := openDB(t)
	q := query.New("missing_table", provider(db, nil))

	_, err := q.Find(context.Background())
	require.Error(t, err)
	assert.False(t, query.IsNotFound(err))
	assert.Contains(t, err.Error(), "no such table")
}

func TestStatement(t *testing.T) {
	q := query.New("users", nil)

	stmt, err := q.Statement()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users LIMIT 1", stmt.SQL)

	stmt, err = q.Limit(0).Statement()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", stmt.SQL)

	stmt, err = q.Limit(-3).Statement()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", stmt.SQL)

	stmt, err = q.Where(must(col("x").Eq(5))).OrderBy([]string{"a", "b"}, false).Limit(10).Statement()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE x=:p0 ORDER BY a, b DESC LIMIT 10", stmt.SQL)
	assert.Equal(t, []interface{}{int64(5)}, stmt.Args)
}

func TestBuilderCopies(t *testing.T) {
	base := query.New("users", nil)
	limited := base.Limit(5)
	filtered := limited.Where(must(col("id").Eq(1)))

	assert.Equal(t, 1, base.LimitValue())
	assert.Equal(t, 5, limited.LimitValue())
	assert.Nil(t, limited.Condition())
	assert.NotNil(t, filtered.Condition())
	assert.Equal(t, "users", filtered.Table())
	assert.Same(t, base.Session(), filtered.Session())
}

func TestNoProvider(t *testing.T) {
	_, err := query.New("users", nil).Find(context.Background())
	require.Error(t, err)
}
