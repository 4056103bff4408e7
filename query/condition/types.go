// Package condition builds typed predicate trees for WHERE clauses.
//
// A tree is assembled bottom-up from leaves (Column, Value) and combinators
// (Not, All, Any and the comparison methods on *Node). Every constructor
// checks operand types before it returns, so a tree that exists is a tree the
// SQL generator can lower without further validation.
package condition

// ValueType is the semantic type a node evaluates to.
type ValueType int

const (
	// TypeColumn is the wildcard type of a column reference. Its runtime type
	// is unknown at build time, so it is compatible with everything.
	TypeColumn ValueType = iota
	// TypeInteger is an integer value.
	TypeInteger
	// TypeBoolean is a truth value.
	TypeBoolean
	// TypeString is a character string.
	TypeString
)

func (t ValueType) String() string {
	switch t {
	case TypeColumn:
		return "column"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Kind is the operator a node represents.
type Kind int

const (
	KindColumn Kind = iota
	KindConstant
	KindAnd
	KindOr
	KindNot
	KindEq
	KindNeq
	KindLt
	KindLe
	KindGt
	KindGe
	KindContains
	KindStartsWith
	KindEndsWith
	KindIsNull
	KindIn
	KindBitAnd
)

var kindNames = map[Kind]string{
	KindColumn:     "column",
	KindConstant:   "constant",
	KindAnd:        "and",
	KindOr:         "or",
	KindNot:        "not",
	KindEq:         "eq",
	KindNeq:        "neq",
	KindLt:         "lt",
	KindLe:         "le",
	KindGt:         "gt",
	KindGe:         "ge",
	KindContains:   "contains",
	KindStartsWith: "starts_with",
	KindEndsWith:   "ends_with",
	KindIsNull:     "is_null",
	KindIn:         "in",
	KindBitAnd:     "bit_and",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsLeaf reports whether nodes of this kind carry a literal instead of children.
func (k Kind) IsLeaf() bool {
	return k == KindColumn || k == KindConstant
}

// IsComparison reports whether k is one of the binary comparison operators.
func (k Kind) IsComparison() bool {
	switch k {
	case KindEq, KindNeq, KindLt, KindLe, KindGt, KindGe:
		return true
	}
	return false
}

// IsPattern reports whether k is a string pattern match.
func (k Kind) IsPattern() bool {
	return k == KindContains || k == KindStartsWith || k == KindEndsWith
}

// IsJunction reports whether k joins an arbitrary number of predicates.
func (k Kind) IsJunction() bool {
	return k == KindAnd || k == KindOr
}

// Compatible reports whether values of type a and b may be compared.
// Columns match anything, equal types match, and integers stand in for
// booleans.
func Compatible(a, b ValueType) bool {
	if a == TypeColumn || b == TypeColumn || a == b {
		return true
	}
	return (a == TypeInteger && b == TypeBoolean) || (a == TypeBoolean && b == TypeInteger)
}

// predicateOperand reports whether t may appear under And, Or or Not.
func predicateOperand(t ValueType) bool {
	return t == TypeBoolean || t == TypeInteger || t == TypeColumn
}
