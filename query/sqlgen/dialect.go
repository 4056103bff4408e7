package sqlgen

import (
	"database/sql"
	"fmt"
	"strings"
)

// Dialect describes how a database spells placeholders and case-insensitive
// pattern matches.
type Dialect struct {
	Name string

	named      bool   // ":pN" placeholders bound with sql.Named
	positional bool   // "$N" placeholders
	likeOp     string // LIKE or ILIKE
	lower      bool   // wrap both sides of LIKE in LOWER()
	escape     bool   // append ESCAPE '\'
	returning  bool   // INSERT ... RETURNING is supported
}

var (
	// Named is the default dialect: ":p0", ":p1", ... bound by name. LOWER()
	// on both sides keeps pattern matches case-insensitive on any engine.
	Named = Dialect{Name: "named", named: true, likeOp: "LIKE", lower: true, escape: true}

	// SQLite accepts named parameters; its LIKE already ignores ASCII case
	// but has no default escape character.
	SQLite = Dialect{Name: "sqlite", named: true, likeOp: "LIKE", escape: true, returning: true}

	// Postgres uses "$1" placeholders and ILIKE, whose default escape is a backslash.
	Postgres = Dialect{Name: "postgres", positional: true, likeOp: "ILIKE", returning: true}

	// MySQL uses "?" placeholders; LOWER() keeps matches case-insensitive
	// regardless of column collation.
	MySQL = Dialect{Name: "mysql", likeOp: "LIKE", lower: true}

	// DuckDB uses "?" placeholders and ILIKE without a default escape.
	DuckDB = Dialect{Name: "duckdb", likeOp: "ILIKE", escape: true, returning: true}
)

// DialectFor maps a provider name to its dialect. Unknown providers get Named.
func DialectFor(provider string) Dialect {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres":
		return Postgres
	case "mysql":
		return MySQL
	case "sqlite", "sqlite3":
		return SQLite
	case "duckdb":
		return DuckDB
	default:
		return Named
	}
}

func (d Dialect) String() string { return d.Name }

// Placeholder returns the marker for the i-th (zero-based) parameter.
func (d Dialect) Placeholder(i int) string {
	switch {
	case d.named:
		return fmt.Sprintf(":p%d", i)
	case d.positional:
		return fmt.Sprintf("$%d", i+1)
	default:
		return "?"
	}
}

// Returning reports whether INSERT can return the new row's key.
func (d Dialect) Returning() bool { return d.returning }

// Bind converts compiled parameters into driver arguments.
func (d Dialect) Bind(args []any) []any {
	if !d.named {
		return args
	}
	out := make([]any, len(args))
	for i, v := range args {
		out[i] = sql.Named(fmt.Sprintf("p%d", i), v)
	}
	return out
}
