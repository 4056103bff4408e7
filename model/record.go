package model

import (
	"github.com/satishbabariya/litemodel/query"
)

// PersistenceState tracks a record's relationship to its stored row.
type PersistenceState struct {
	// Persisted is set once the record has been inserted or loaded.
	Persisted bool
}

// Record is one row of a model: plain column values plus persistence
// state kept apart from them.
type Record struct {
	Fields map[string]interface{}
	State  PersistenceState

	schema *Schema
}

func newRecord(schema *Schema, fields map[string]interface{}) *Record {
	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Record{Fields: copied, schema: schema}
}

func hydrate(schema *Schema, row query.Row) *Record {
	rec := newRecord(schema, row)
	rec.State.Persisted = true
	return rec
}

// Schema returns the schema the record belongs to.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the value of field, or nil.
func (r *Record) Get(field string) interface{} {
	return r.Fields[field]
}

// Set assigns field.
func (r *Record) Set(field string, value interface{}) {
	if r.Fields == nil {
		r.Fields = make(map[string]interface{})
	}
	r.Fields[field] = value
}

// ID returns the primary key value, or nil when unset or when the record
// has no schema yet.
func (r *Record) ID() interface{} {
	if r.schema == nil {
		return nil
	}
	return r.Fields[r.schema.primaryKey]
}
