package filter

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// filterLexer defines the token types of the filter language.
var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Literals
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `-?\d+`},

	// Operators, longest first
	{Name: "Op", Pattern: `!=|<>|<=|>=|=|<|>|&`},
	{Name: "Punct", Pattern: `[(),]`},

	// Identifiers and keywords
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.]*`},

	{Name: "Whitespace", Pattern: `\s+`},
})

// Expression is a disjunction of conjunctions.
type Expression struct {
	Pos lexer.Position
	Or  []*AndExpr `@@ ( "or" @@ )*`
}

// AndExpr is a conjunction of unary terms.
type AndExpr struct {
	And []*Unary `@@ ( "and" @@ )*`
}

// Unary is an optionally negated predicate.
type Unary struct {
	Not       *Unary     `  "not" @@`
	Predicate *Predicate `| @@`
}

// Predicate is an operand optionally followed by an operator.
type Predicate struct {
	Left *Operand `@@`
	Tail *Tail    `@@?`
}

// Tail is the operator part of a predicate.
type Tail struct {
	Compare *Comparison `  @@`
	Pattern *Pattern    `| @@`
	IsNull  bool        `| @("is" "null")`
	In      []*Operand  `| "in" "(" @@ ( "," @@ )* ")"`
}

// Comparison is a binary comparison against a right-hand operand.
type Comparison struct {
	Op    string   `@( "=" | "!=" | "<>" | "<=" | ">=" | "<" | ">" )`
	Right *Operand `@@`
}

// Pattern is a string match against a quoted literal.
type Pattern struct {
	Op    string `@( "contains" | "startswith" | "endswith" )`
	Value string `@String`
}

// Operand is a term with an optional bit mask.
type Operand struct {
	Left *Term `@@`
	Mask *Term `( "&" @@ )?`
}

// Term is a literal, a column name or a parenthesized expression.
type Term struct {
	Group *Expression `  "(" @@ ")"`
	Str   *string     `| @String`
	Int   *int64      `| @Int`
	Bool  *string     `| @( "true" | "false" )`
	Ident *string     `| @Ident`
}
