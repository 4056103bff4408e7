package model_test

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

	"github.com/satishbabariya/litemodel/model"
	"github.com/satishbabariya/litemodel/query"
	"github.com/satishbabariya/litemodel/query/condition"
	"github.com/satishbabariya/litemodel/query/sqlgen"
)

var dbSeq atomic.Int64

const ddl = `
CREATE TABLE authors (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active'
);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	author_id INTEGER,
	title TEXT NOT NULL,
	views INTEGER NOT NULL DEFAULT 0
);
`

type fixture struct {
	db      *sql.DB
	calls   *atomic.Int32
	authors *model.Schema
	posts   *model.Schema
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:model_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(ddl)
	require.NoError(t, err)

	authors := model.NewSchema("Author",
		model.WithRules(model.Required("name"), model.Length("name", 2, 40)),
	)
	posts := model.NewSchema("Post", model.WithFields("author_id", "title", "views"))
	authors.HasMany("posts", posts, "author_id")
	posts.BelongsTo("author", authors, "author_id")

	return &fixture{db: db, calls: new(atomic.Int32), authors: authors, posts: posts}
}

func (f *fixture) provider() query.ConnProvider {
	return func() (query.Conn, error) {
		f.calls.Add(1)
		return f.db, nil
	}
}

func (f *fixture) repo(d sqlgen.Dialect) *model.Repository {
	return model.NewRepository(f.authors, f.provider(), model.WithDialect(d))
}

func TestTableName(t *testing.T) {
	tests := map[string]string{
		"User":        "users",
		"BlogPost":    "blog_posts",
		"Category":    "categories",
		"Day":         "days",
		"Box":         "boxes",
		"Match":       "matches",
		"Wish":        "wishes",
		"Status":      "statuses",
		"HTTPRequest": "http_requests",
		"Line2Item":   "line2_items",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, model.TableName(in))
		})
	}
}

func TestNewSchema(t *testing.T) {
	s := model.NewSchema("Person")
	assert.Equal(t, "Person", s.Name())
	assert.Equal(t, "persons", s.Table())
	assert.Equal(t, "id", s.PrimaryKey())
	assert.Nil(t, s.Fields())

	s = model.NewSchema("Person", model.WithTable("people"), model.WithPrimaryKey("person_id"), model.WithFields("a", "b"))
	assert.Equal(t, "people", s.Table())
	assert.Equal(t, "person_id", s.PrimaryKey())
	assert.Equal(t, []string{"a", "b"}, s.Fields())
}

func TestRelationRegistry(t *testing.T) {
	f := setup(t)

	rel, err := f.posts.Relation("author")
	require.NoError(t, err)
	assert.Equal(t, model.BelongsToOne, rel.Kind)
	assert.Same(t, f.authors, rel.Target)
	assert.Equal(t, "author_id", rel.ForeignKey)

	rel, err = f.authors.Relation("posts")
	require.NoError(t, err)
	assert.Equal(t, model.HasManyKind, rel.Kind)
	assert.Equal(t, "has_many", rel.Kind.String())

	_, err = f.authors.Relation("comments")
	assert.ErrorIs(t, err, model.ErrUnknownRelation)
	assert.EqualError(t, err, "Author.comments: unknown relation")
}

func TestValidate(t *testing.T) {
	s := model.NewSchema("Account", model.WithRules(
		model.Required("name"),
		model.Required("email"),
		model.Length("name", 2, 5),
	))
	repo := model.NewRepository(s, nil)

	tests := []struct {
		name   string
		fields map[string]interface{}
		want   []string
	}{
		{name: "valid", fields: map[string]interface{}{"name": "abc", "email": "a@b"}},
		{name: "missing", fields: map[string]interface{}{}, want: []string{"name is required", "email is required"}},
		{name: "empty string", fields: map[string]interface{}{"name": "", "email": "x"}, want: []string{"name is required", "name is too short (minimum is 2 characters)"}},
		{name: "too short", fields: map[string]interface{}{"name": "a", "email": "x"}, want: []string{"name is too short (minimum is 2 characters)"}},
		{name: "too long", fields: map[string]interface{}{"name": "abcdef", "email": "x"}, want: []string{"name is too long (maximum is 5 characters)"}},
		{name: "counts runes", fields: map[string]interface{}{"name": "héllo", "email": "x"}},
		{name: "not a string", fields: map[string]interface{}{"name": 42, "email": "x"}, want: []string{"name must be a string, got int"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(repo.New(tt.fields))
			if len(tt.want) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrValidation)
			for _, msg := range tt.want {
				assert.Contains(t, err.Error(), msg)
			}

			var ve *model.ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestRecord(t *testing.T) {
	repo := model.NewRepository(model.NewSchema("Item", model.WithPrimaryKey("sku")), nil)
	fields := map[string]interface{}{"sku": "A1", "qty": 3}
	rec := repo.New(fields)

	fields["qty"] = 99
	assert.Equal(t, 3, rec.Get("qty"), "New copies the field map")
	assert.Equal(t, "A1", rec.ID())
	assert.False(t, rec.State.Persisted)
	assert.NotContains(t, rec.Fields, "persisted")

	rec.Set("qty", 4)
	assert.Equal(t, 4, rec.Get("qty"))
	assert.Nil(t, rec.Get("missing"))
	assert.Equal(t, "Item", rec.Schema().Name())
}

func TestSave_Insert(t *testing.T) {
	// SQLite reads the row back with RETURNING; Named falls back to
	// LastInsertId and a reload.
	for _, d := range []sqlgen.Dialect{sqlgen.SQLite, sqlgen.Named} {
		t.Run(d.Name, func(t *testing.T) {
			f := setup(t)
			repo := f.repo(d)
			ctx := context.Background()

			rec := repo.New(map[string]interface{}{"name": "Ann"})
			require.NoError(t, repo.Save(ctx, rec))

			assert.True(t, rec.State.Persisted)
			assert.Equal(t, int64(1), rec.ID())
			assert.Equal(t, "active", rec.Get("status"), "column defaults are read back")

			second := repo.New(map[string]interface{}{"name": "Ben"})
			require.NoError(t, repo.Save(ctx, second))
			assert.Equal(t, int64(2), second.ID())
		})
	}
}

func TestSave_InvalidRecordIsNotWritten(t *testing.T) {
	f := setup(t)
	repo := f.repo(sqlgen.SQLite)
	ctx := context.Background()

	rec := repo.New(map[string]interface{}{"name": "A"})
	err := repo.Save(ctx, rec)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.False(t, rec.State.Persisted)

	all, err := repo.All(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSave_Update(t *testing.T) {
	f := setup(t)
	repo := f.repo(sqlgen.SQLite)
	ctx := context.Background()

	rec := repo.New(map[string]interface{}{"name": "Ann"})
	require.NoError(t, repo.Save(ctx, rec))

	rec.Set("status", "retired")
	require.NoError(t, repo.Save(ctx, rec))

	stored, err := repo.Find(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, "retired", stored.Get("status"))
	assert.Equal(t, "Ann", stored.Get("name"))
	assert.True(t, stored.State.Persisted)
}

func TestSave_RecordLiteral(t *testing.T) {
	for _, d := range []sqlgen.Dialect{sqlgen.SQLite, sqlgen.Named} {
		t.Run(d.Name, func(t *testing.T) {
			f := setup(t)
			repo := f.repo(d)
			ctx := context.Background()

			rec := &model.Record{Fields: map[string]interface{}{"name": "Ada"}}
			assert.Nil(t, rec.ID())
			assert.Nil(t, rec.Schema())

			require.NotPanics(t, func() {
				assert.NoError(t, repo.Save(ctx, rec))
			})
			assert.True(t, rec.State.Persisted)
			assert.Equal(t, int64(1), rec.ID())
			assert.Same(t, f.authors, rec.Schema())

			rec.Set("status", "retired")
			require.NotPanics(t, func() {
				assert.NoError(t, repo.Save(ctx, rec))
				assert.NoError(t, repo.Reload(ctx, rec))
			})
			assert.Equal(t, "retired", rec.Get("status"))

			posts, err := repo.Related(ctx, rec, "posts")
			require.NoError(t, err)
			assert.Empty(t, posts)
		})
	}
}

func TestSave_WritesDeclaredFieldsOnly(t *testing.T) {
	f := setup(t)
	posts := model.NewRepository(f.posts, f.provider(), model.WithDialect(sqlgen.SQLite))
	ctx := context.Background()

	rec := posts.New(map[string]interface{}{"title": "Hello", "scratch": "not a column"})
	require.NoError(t, posts.Save(ctx, rec))
	assert.Equal(t, "Hello", rec.Get("title"))
	assert.Equal(t, int64(0), rec.Get("views"))
	assert.NotContains(t, rec.Fields, "scratch")
}

func TestReload(t *testing.T) {
	f := setup(t)
	repo := f.repo(sqlgen.SQLite)
	ctx := context.Background()

	rec := repo.New(map[string]interface{}{"name": "Ann"})
	assert.ErrorIs(t, repo.Reload(ctx, rec), model.ErrNotPersisted)

	require.NoError(t, repo.Save(ctx, rec))
	_, err := f.db.Exec(`UPDATE authors SET name = 'Annie' WHERE id = 1`)
	require.NoError(t, err)

	require.NoError(t, repo.Reload(ctx, rec))
	assert.Equal(t, "Annie", rec.Get("name"))

	_, err = f.db.Exec(`DELETE FROM authors`)
	require.NoError(t, err)
	assert.True(t, query.IsNotFound(repo.Reload(ctx, rec)))
}

func TestFindAndAll(t *testing.T) {
	f := setup(t)
	repo := f.repo(sqlgen.SQLite)
	ctx := context.Background()

	for _, name := range []string{"Ann", "Ben", "Cy"} {
		require.NoError(t, repo.Save(ctx, repo.New(map[string]interface{}{"name": name})))
	}

	rec, err := repo.Find(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Ben", rec.Get("name"))

	_, err = repo.Find(ctx, 42)
	assert.ErrorIs(t, err, query.ErrRecordNotFound)

	all, err := repo.All(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Cy", all[2].Get("name"))

	short := condition.Must(condition.Must(condition.Column("name")).EndsWith("n"))
	matched, err := repo.All(ctx, short)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "Ann", matched[0].Get("name"))
	assert.Equal(t, "Ben", matched[1].Get("name"))

	none, err := repo.All(ctx, condition.Must(condition.Must(condition.Column("id")).Gt(10)))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRelated(t *testing.T) {
	f := setup(t)
	authors := f.repo(sqlgen.SQLite)
	posts := authors.For(f.posts)
	ctx := context.Background()

	ann := authors.New(map[string]interface{}{"name": "Ann"})
	require.NoError(t, authors.Save(ctx, ann))
	ben := authors.New(map[string]interface{}{"name": "Ben"})
	require.NoError(t, authors.Save(ctx, ben))

	for _, title := range []string{"first", "second"} {
		p := posts.New(map[string]interface{}{"author_id": ann.ID(), "title": title})
		require.NoError(t, posts.Save(ctx, p))
	}
	orphan := posts.New(map[string]interface{}{"title": "orphan"})
	require.NoError(t, posts.Save(ctx, orphan))

	written, err := authors.Related(ctx, ann, "posts")
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, "first", written[0].Get("title"))
	assert.Equal(t, "second", written[1].Get("title"))

	none, err := authors.Related(ctx, ben, "posts")
	require.NoError(t, err)
	assert.Empty(t, none)

	owner, err := posts.Related(ctx, written[0], "author")
	require.NoError(t, err)
	require.Len(t, owner, 1)
	assert.Equal(t, "Ann", owner[0].Get("name"))

	owner, err = posts.Related(ctx, orphan, "author")
	require.NoError(t, err)
	assert.Empty(t, owner)

	_, err = authors.Related(ctx, ann, "likes")
	assert.ErrorIs(t, err, model.ErrUnknownRelation)

	_, err = authors.Related(ctx, authors.New(map[string]interface{}{"name": "new"}), "posts")
	assert.ErrorIs(t, err, model.ErrNotPersisted)

	assert.Equal(t, int32(1), f.calls.Load(), "repositories derived with For share one connection")
}

func TestRepositoryQuery(t *testing.T) {
	f := setup(t)
	repo := f.repo(sqlgen.SQLite)

	q := repo.Where(condition.Must(condition.Must(condition.Column("name")).Eq("Ann")))
	stmt, err := q.Statement()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM authors WHERE name=:p0 LIMIT 1", stmt.SQL)
	assert.Same(t, q.Session(), repo.Query().Session())
	assert.Zero(t, f.calls.Load())
}
