// Package sqlgen generates parameterized SQL from condition trees.
package sqlgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/satishbabariya/litemodel/query/condition"
)

// ErrUnboundedWrite is returned when an UPDATE has no WHERE condition.
var ErrUnboundedWrite = errors.New("update requires a where condition")

// ErrNoColumns is returned when a write has nothing to set.
var ErrNoColumns = errors.New("no columns to write")

// Query represents a SQL query with arguments
type Query struct {
	SQL  string
	Args []interface{}
}

// OrderBy represents an ORDER BY clause
type OrderBy struct {
	Columns   []string
	Ascending bool
}

// Select describes a single-table SELECT.
type Select struct {
	Table string
	Where *condition.Node
	Order *OrderBy
	// Limit caps the number of rows; 0 means no LIMIT clause.
	Limit int
}

// Generator generates SQL for one dialect. It holds no per-statement state
// and may be shared between goroutines.
type Generator struct {
	dialect Dialect
}

// NewGenerator creates a generator for the dialect.
func NewGenerator(dialect Dialect) *Generator {
	return &Generator{dialect: dialect}
}

// Dialect returns the generator's dialect.
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// Bind converts compiled parameters into driver arguments.
func (g *Generator) Bind(args []interface{}) []interface{} {
	return g.dialect.Bind(args)
}

// Where lowers cond into a WHERE fragment without the keyword. A nil
// condition yields an empty fragment.
func (g *Generator) Where(cond *condition.Node) (*Query, error) {
	w := &writer{dialect: g.dialect}
	if cond != nil {
		if err := w.buildCondition(cond); err != nil {
			return nil, err
		}
	}
	return &Query{SQL: w.sb.String(), Args: w.args}, nil
}

// Select generates SELECT * FROM table with optional WHERE, ORDER BY and LIMIT.
func (g *Generator) Select(s Select) (*Query, error) {
	w := &writer{dialect: g.dialect}
	w.sb.WriteString("SELECT * FROM ")
	w.sb.WriteString(s.Table)

	if s.Where != nil {
		w.sb.WriteString(" WHERE ")
		if err := w.buildCondition(s.Where); err != nil {
			return nil, err
		}
	}

	if s.Order != nil && len(s.Order.Columns) > 0 {
		w.sb.WriteString(" ORDER BY ")
		w.sb.WriteString(strings.Join(s.Order.Columns, ", "))
		if !s.Order.Ascending {
			w.sb.WriteString(" DESC")
		}
	}

	if s.Limit > 0 {
		fmt.Fprintf(&w.sb, " LIMIT %d", s.Limit)
	}

	return &Query{SQL: w.sb.String(), Args: w.args}, nil
}

// Insert generates an INSERT of fields into table. Columns are written in
// sorted order. When returning is set the statement ends with RETURNING.
func (g *Generator) Insert(table string, fields map[string]interface{}, returning string) (*Query, error) {
	w := &writer{dialect: g.dialect}
	w.sb.WriteString("INSERT INTO ")
	w.sb.WriteString(table)

	columns := sortedKeys(fields)
	if len(columns) == 0 {
		w.sb.WriteString(" DEFAULT VALUES")
	} else {
		w.sb.WriteString(" (")
		w.sb.WriteString(strings.Join(columns, ", "))
		w.sb.WriteString(") VALUES (")
		for i, col := range columns {
			if i > 0 {
				w.sb.WriteString(", ")
			}
			w.bind(fields[col])
		}
		w.sb.WriteByte(')')
	}

	if returning != "" {
		w.sb.WriteString(" RETURNING ")
		w.sb.WriteString(returning)
	}

	return &Query{SQL: w.sb.String(), Args: w.args}, nil
}

// Update generates an UPDATE of fields restricted by where. Parameter
// numbering runs through SET first, then WHERE.
func (g *Generator) Update(table string, fields map[string]interface{}, where *condition.Node) (*Query, error) {
	if where == nil {
		return nil, ErrUnboundedWrite
	}
	columns := sortedKeys(fields)
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}

	w := &writer{dialect: g.dialect}
	w.sb.WriteString("UPDATE ")
	w.sb.WriteString(table)
	w.sb.WriteString(" SET ")
	for i, col := range columns {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		w.sb.WriteString(col)
		w.sb.WriteByte('=')
		w.bind(fields[col])
	}

	w.sb.WriteString(" WHERE ")
	if err := w.buildCondition(where); err != nil {
		return nil, err
	}

	return &Query{SQL: w.sb.String(), Args: w.args}, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
