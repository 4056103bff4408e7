// Package model maps rows of one table to records: schema metadata,
// validation, named relations and a repository that saves, reloads and
// queries records through the query package.
package model

import (
	"strings"
	"unicode"
)

// Schema describes the table behind a model.
type Schema struct {
	name       string
	table      string
	primaryKey string
	fields     []string
	relations  map[string]*Relation
	rules      []Rule
}

// SchemaOption configures a Schema.
type SchemaOption func(*Schema)

// WithTable overrides the derived table name.
func WithTable(table string) SchemaOption {
	return func(s *Schema) {
		s.table = table
	}
}

// WithPrimaryKey sets the primary key column. The default is "id".
func WithPrimaryKey(column string) SchemaOption {
	return func(s *Schema) {
		s.primaryKey = column
	}
}

// WithFields declares the writable columns. When set, Save writes only these
// columns; otherwise every field of the record is written.
func WithFields(fields ...string) SchemaOption {
	return func(s *Schema) {
		s.fields = append([]string(nil), fields...)
	}
}

// WithRules attaches validation rules checked by Validate and Save.
func WithRules(rules ...Rule) SchemaOption {
	return func(s *Schema) {
		s.rules = append(s.rules, rules...)
	}
}

// NewSchema creates the schema of model name. The table name defaults to the
// pluralized snake_case form of name: "BlogPost" maps to "blog_posts".
func NewSchema(name string, opts ...SchemaOption) *Schema {
	s := &Schema{
		name:       name,
		primaryKey: "id",
		relations:  make(map[string]*Relation),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.table == "" {
		s.table = TableName(name)
	}
	return s
}

// Name returns the model name.
func (s *Schema) Name() string { return s.name }

// Table returns the table name.
func (s *Schema) Table() string { return s.table }

// PrimaryKey returns the primary key column.
func (s *Schema) PrimaryKey() string { return s.primaryKey }

// Fields returns the declared columns, or nil when none were declared.
func (s *Schema) Fields() []string {
	if len(s.fields) == 0 {
		return nil
	}
	return append([]string(nil), s.fields...)
}

// writable filters fields down to the declared columns.
func (s *Schema) writable(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	if len(s.fields) == 0 {
		for k, v := range fields {
			out[k] = v
		}
		return out
	}
	for _, f := range s.fields {
		if v, ok := fields[f]; ok {
			out[f] = v
		}
	}
	if v, ok := fields[s.primaryKey]; ok {
		out[s.primaryKey] = v
	}
	return out
}

// TableName derives a table name from a model name.
func TableName(model string) string {
	return pluralize(toSnakeCase(model))
}

// toSnakeCase converts a string to snake_case, keeping acronyms together:
// "HTTPRequest" becomes "http_request".
func toSnakeCase(s string) string {
	runes := []rune(s)
	var result strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

func pluralize(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "z"),
		strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	default:
		return s + "s"
	}
}
