package condition

import (
	"reflect"
	"strings"
)

// Column references the column name. Names are emitted verbatim into SQL,
// so only trusted identifiers may be passed.
func Column(name string) (*Node, error) {
	if name == "" {
		return nil, invalidArgument("column", "empty column name")
	}
	return newLeaf(KindColumn, TypeColumn, name), nil
}

// Value wraps an integer, boolean or string literal as a constant.
// Strings that read as an integer ("42") or boolean ("true") are typed as
// such.
func Value(v any) (*Node, error) {
	lit, typ, err := literal("value", v)
	if err != nil {
		return nil, err
	}
	return newLeaf(KindConstant, typ, lit), nil
}

// Not negates cond.
func Not(cond *Node) (*Node, error) {
	if err := checkPredicate("not", cond); err != nil {
		return nil, err
	}
	return newBranch(KindNot, TypeBoolean, cond), nil
}

// All joins conds with AND.
func All(conds ...*Node) (*Node, error) {
	return junction("all", KindAnd, conds)
}

// Any joins conds with OR.
func Any(conds ...*Node) (*Node, error) {
	return junction("any", KindOr, conds)
}

func junction(op string, kind Kind, conds []*Node) (*Node, error) {
	if len(conds) == 0 {
		return nil, invalidArgument(op, "at least one condition is required")
	}
	children := make([]*Node, len(conds))
	for i, c := range conds {
		if err := checkPredicate(op, c); err != nil {
			return nil, err
		}
		children[i] = c
	}
	return newBranch(kind, TypeBoolean, children...), nil
}

func checkPredicate(op string, n *Node) error {
	if n == nil {
		return invalidArgument(op, "nil condition")
	}
	if n.kind == KindBitAnd {
		return invalidCondition(op, "bit_and must be compared before it is used as a predicate")
	}
	if !predicateOperand(n.typ) {
		return invalidCondition(op, "%s operand cannot be used as a predicate", n.typ)
	}
	return nil
}

// Predicate returns n unchanged when it can stand alone as a WHERE clause,
// the same rule And, Or and Not apply to their operands.
func Predicate(n *Node) (*Node, error) {
	if err := checkPredicate("predicate", n); err != nil {
		return nil, err
	}
	return n, nil
}

// operand turns a comparison argument into a node: nodes pass through and
// literals are wrapped with Value's typing rules.
func operand(op string, v any) (*Node, error) {
	if n, ok := v.(*Node); ok {
		if n == nil {
			return nil, invalidArgument(op, "nil condition")
		}
		return n, nil
	}
	lit, typ, err := literal(op, v)
	if err != nil {
		return nil, err
	}
	return newLeaf(KindConstant, typ, lit), nil
}

func (n *Node) compare(op string, kind Kind, other any) (*Node, error) {
	if n == nil {
		return nil, invalidArgument(op, "nil receiver")
	}
	rhs, err := operand(op, other)
	if err != nil {
		return nil, err
	}
	if !Compatible(n.typ, rhs.typ) {
		return nil, invalidCondition(op, "cannot compare %s with %s", n.typ, rhs.typ)
	}
	return newBranch(kind, TypeBoolean, n, rhs), nil
}

// Eq builds n = other.
func (n *Node) Eq(other any) (*Node, error) { return n.compare("eq", KindEq, other) }

// Neq builds n != other.
func (n *Node) Neq(other any) (*Node, error) { return n.compare("neq", KindNeq, other) }

// Lt builds n < other.
func (n *Node) Lt(other any) (*Node, error) { return n.compare("lt", KindLt, other) }

// Le builds n <= other.
func (n *Node) Le(other any) (*Node, error) { return n.compare("le", KindLe, other) }

// Gt builds n > other.
func (n *Node) Gt(other any) (*Node, error) { return n.compare("gt", KindGt, other) }

// Ge builds n >= other.
func (n *Node) Ge(other any) (*Node, error) { return n.compare("ge", KindGe, other) }

// EscapePattern escapes the LIKE metacharacters in s with a backslash.
// Backslashes go first so the escapes added for % and _ are not doubled.
func EscapePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func (n *Node) pattern(op string, kind Kind, s string) (*Node, error) {
	if n == nil {
		return nil, invalidArgument(op, "nil receiver")
	}
	if n.typ != TypeString && n.typ != TypeColumn {
		return nil, invalidCondition(op, "pattern match on %s operand", n.typ)
	}
	esc := EscapePattern(s)
	switch kind {
	case KindContains:
		esc = "%" + esc + "%"
	case KindStartsWith:
		esc = esc + "%"
	case KindEndsWith:
		esc = "%" + esc
	}
	// The pattern is always a string, even when s looks numeric.
	return newBranch(kind, TypeBoolean, n, newLeaf(KindConstant, TypeString, esc)), nil
}

// Contains matches values containing s, ignoring case.
func (n *Node) Contains(s string) (*Node, error) { return n.pattern("contains", KindContains, s) }

// StartsWith matches values beginning with s, ignoring case.
func (n *Node) StartsWith(s string) (*Node, error) {
	return n.pattern("starts_with", KindStartsWith, s)
}

// EndsWith matches values ending with s, ignoring case.
func (n *Node) EndsWith(s string) (*Node, error) { return n.pattern("ends_with", KindEndsWith, s) }

// IsNull tests n for NULL.
func (n *Node) IsNull() (*Node, error) {
	if n == nil {
		return nil, invalidArgument("is_null", "nil receiver")
	}
	return newBranch(KindIsNull, TypeBoolean, n), nil
}

// In tests membership of n in set, which must be a non-empty slice or array
// of literals and nodes. Each element is checked against n like a comparison.
func (n *Node) In(set any) (*Node, error) {
	if n == nil {
		return nil, invalidArgument("in", "nil receiver")
	}
	if set == nil {
		return nil, invalidArgument("in", "nil set")
	}
	rv := reflect.ValueOf(set)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, invalidArgument("in", "set must be a slice or array, got %T", set)
	}
	// Byte slices are text or blobs, not sets of small integers.
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, invalidArgument("in", "set must not be a byte slice, got %T", set)
	}
	if rv.Len() == 0 {
		return nil, invalidArgument("in", "empty set")
	}
	children := make([]*Node, 0, rv.Len()+1)
	children = append(children, n)
	for i := 0; i < rv.Len(); i++ {
		elem, err := operand("in", rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		if !Compatible(n.typ, elem.typ) {
			return nil, invalidCondition("in", "element %d: cannot compare %s with %s", i, n.typ, elem.typ)
		}
		children = append(children, elem)
	}
	return newBranch(KindIn, TypeBoolean, children...), nil
}

// BitAnd builds n & mask. The result is an integer meant to feed a further
// comparison, not a predicate of its own.
func (n *Node) BitAnd(mask any) (*Node, error) {
	if n == nil {
		return nil, invalidArgument("bit_and", "nil receiver")
	}
	if n.typ != TypeInteger && n.typ != TypeColumn {
		return nil, invalidCondition("bit_and", "%s operand", n.typ)
	}
	m, err := operand("bit_and", mask)
	if err != nil {
		return nil, err
	}
	if m.typ != TypeInteger && m.typ != TypeColumn {
		if _, isNode := mask.(*Node); isNode {
			return nil, invalidCondition("bit_and", "%s mask", m.typ)
		}
		return nil, invalidArgument("bit_and", "mask must be an integer, got %T", mask)
	}
	return newBranch(KindBitAnd, TypeInteger, n, m), nil
}
