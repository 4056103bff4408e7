package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/satishbabariya/litemodel/internal/debug"
	"github.com/satishbabariya/litemodel/query"
	"github.com/satishbabariya/litemodel/query/condition"
	"github.com/satishbabariya/litemodel/query/sqlgen"
)

// ErrNotPersisted is returned when an operation needs a stored record.
var ErrNotPersisted = errors.New("record is not persisted")

// Repository loads and stores records of one schema. Every query it creates
// shares a single lazily acquired connection.
type Repository struct {
	schema  *Schema
	gen     *sqlgen.Generator
	session *query.Session
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithDialect generates SQL for d. The default is sqlgen.Named.
func WithDialect(d sqlgen.Dialect) RepositoryOption {
	return func(r *Repository) {
		r.gen = sqlgen.NewGenerator(d)
	}
}

// WithSession reuses an existing session instead of opening a new one.
func WithSession(s *query.Session) RepositoryOption {
	return func(r *Repository) {
		r.session = s
	}
}

// NewRepository creates a repository for schema over connections from provider.
func NewRepository(schema *Schema, provider query.ConnProvider, opts ...RepositoryOption) *Repository {
	r := &Repository{schema: schema}
	for _, opt := range opts {
		opt(r)
	}
	if r.gen == nil {
		r.gen = sqlgen.NewGenerator(sqlgen.Named)
	}
	if r.session == nil {
		r.session = query.NewSession(provider)
	}
	return r
}

// For returns a repository for another schema on the same connection.
func (r *Repository) For(schema *Schema) *Repository {
	return &Repository{schema: schema, gen: r.gen, session: r.session}
}

// Schema returns the repository's schema.
func (r *Repository) Schema() *Schema { return r.schema }

// New creates an unsaved record holding a copy of fields.
func (r *Repository) New(fields map[string]interface{}) *Record {
	return newRecord(r.schema, fields)
}

// Query starts a query on the schema's table.
func (r *Repository) Query() *query.Query {
	return query.New(r.schema.table, nil, query.WithGenerator(r.gen), query.WithSession(r.session))
}

// Where starts a query filtered by cond.
func (r *Repository) Where(cond *condition.Node) *query.Query {
	return r.Query().Where(cond)
}

// Find loads the record whose primary key is id.
func (r *Repository) Find(ctx context.Context, id interface{}) (*Record, error) {
	cond, err := r.byID(id)
	if err != nil {
		return nil, err
	}
	row, err := r.Where(cond).One(ctx)
	if err != nil {
		return nil, err
	}
	return hydrate(r.schema, row), nil
}

// All loads every record matching cond, in primary key order. A nil cond
// matches every row.
func (r *Repository) All(ctx context.Context, cond *condition.Node) ([]*Record, error) {
	rows, err := r.Where(cond).
		OrderBy([]string{r.schema.primaryKey}, true).
		Limit(0).
		Find(ctx)
	if err != nil {
		return nil, err
	}
	return r.hydrateAll(rows), nil
}

// Save validates rec and writes it: an INSERT when it is new, an UPDATE by
// primary key otherwise. After an insert rec holds the stored row, including
// the generated key and column defaults.
func (r *Repository) Save(ctx context.Context, rec *Record) error {
	if rec.schema == nil {
		rec.schema = r.schema
	}
	if err := r.schema.Validate(rec); err != nil {
		return err
	}
	if rec.State.Persisted {
		return r.update(ctx, rec)
	}
	return r.insert(ctx, rec)
}

func (r *Repository) insert(ctx context.Context, rec *Record) error {
	table := r.schema.table
	pk := r.schema.primaryKey

	fields := r.schema.writable(rec.Fields)
	if fields[pk] == nil {
		delete(fields, pk)
	}

	returning := ""
	if r.gen.Dialect().Returning() {
		returning = "*"
	}
	stmt, err := r.gen.Insert(table, fields, returning)
	if err != nil {
		return err
	}
	args := r.gen.Bind(stmt.Args)

	if returning != "" {
		rows, err := r.session.QueryRows(ctx, stmt.SQL, args...)
		if err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		if len(rows) > 0 {
			rec.Fields = hydrate(r.schema, rows[0]).Fields
		}
		rec.State.Persisted = true
		return nil
	}

	result, err := r.session.Exec(ctx, stmt.SQL, args...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	if r.idOf(rec) == nil {
		id, err := result.LastInsertId()
		if err != nil {
			// Without a key the row cannot be read back.
			debug.Warn("insert without generated key", "table", table, "error", err)
			rec.State.Persisted = true
			return nil
		}
		rec.Set(pk, id)
	}
	rec.State.Persisted = true
	return r.Reload(ctx, rec)
}

func (r *Repository) update(ctx context.Context, rec *Record) error {
	table := r.schema.table
	pk := r.schema.primaryKey

	id := r.idOf(rec)
	if id == nil {
		return fmt.Errorf("update %s: missing %s: %w", table, pk, ErrNotPersisted)
	}
	cond, err := r.byID(id)
	if err != nil {
		return err
	}

	fields := r.schema.writable(rec.Fields)
	delete(fields, pk)
	if len(fields) == 0 {
		return nil
	}

	stmt, err := r.gen.Update(table, fields, cond)
	if err != nil {
		return err
	}
	if _, err := r.session.Exec(ctx, stmt.SQL, r.gen.Bind(stmt.Args)...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// Reload replaces rec's fields with the stored row.
func (r *Repository) Reload(ctx context.Context, rec *Record) error {
	id := r.idOf(rec)
	if !rec.State.Persisted || id == nil {
		return ErrNotPersisted
	}
	fresh, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	rec.Fields = fresh.Fields
	return nil
}

// Related resolves the named relation of rec. A belongs-to relation yields
// the single referenced record, or none when the foreign key is nil; a
// has-many relation yields every referencing record in primary key order.
func (r *Repository) Related(ctx context.Context, rec *Record, name string) ([]*Record, error) {
	rel, err := r.schema.Relation(name)
	if err != nil {
		return nil, err
	}
	target := r.For(rel.Target)

	switch rel.Kind {
	case BelongsToOne:
		fk := rec.Get(rel.ForeignKey)
		if fk == nil {
			return nil, nil
		}
		related, err := target.Find(ctx, fk)
		if err != nil {
			return nil, err
		}
		return []*Record{related}, nil

	default:
		id := r.idOf(rec)
		if !rec.State.Persisted || id == nil {
			return nil, ErrNotPersisted
		}
		col, err := condition.Column(rel.ForeignKey)
		if err != nil {
			return nil, err
		}
		cond, err := col.Eq(id)
		if err != nil {
			return nil, err
		}
		return target.All(ctx, cond)
	}
}

// idOf reads rec's primary key through the repository's schema.
func (r *Repository) idOf(rec *Record) interface{} {
	return rec.Fields[r.schema.primaryKey]
}

func (r *Repository) byID(id interface{}) (*condition.Node, error) {
	col, err := condition.Column(r.schema.primaryKey)
	if err != nil {
		return nil, err
	}
	return col.Eq(id)
}

func (r *Repository) hydrateAll(rows []query.Row) []*Record {
	out := make([]*Record, len(rows))
	for i, row := range rows {
		out[i] = hydrate(r.schema, row)
	}
	return out
}
