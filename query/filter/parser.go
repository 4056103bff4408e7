// Package filter parses a small text language into condition trees:
//
//	age >= 18 and not (name contains "bot" or deleted_at is null)
//	(flags & 4) > 0 or id in (1, 2, 3)
//
// Keywords are case-insensitive. Bare identifiers are columns; quoted
// strings, integers and true/false are constants typed the way
// condition.Value types them.
package filter

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/satishbabariya/litemodel/query/condition"
)

// parser is the Participle parser instance.
var parser = participle.MustBuild[Expression](
	participle.Lexer(filterLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(2),
)

// Parse parses input into a condition tree. Syntax errors carry the
// position of the offending token; type errors are the condition package's.
func Parse(input string) (*condition.Node, error) {
	expr, err := parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	n, err := expr.build()
	if err != nil {
		return nil, err
	}
	return condition.Predicate(n)
}

// MustParse is Parse that panics on error.
func MustParse(input string) *condition.Node {
	n, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return n
}

func (e *Expression) build() (*condition.Node, error) {
	if len(e.Or) == 1 {
		return e.Or[0].build()
	}
	nodes := make([]*condition.Node, len(e.Or))
	for i, a := range e.Or {
		n, err := a.build()
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return condition.Any(nodes...)
}

func (a *AndExpr) build() (*condition.Node, error) {
	if len(a.And) == 1 {
		return a.And[0].build()
	}
	nodes := make([]*condition.Node, len(a.And))
	for i, u := range a.And {
		n, err := u.build()
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return condition.All(nodes...)
}

func (u *Unary) build() (*condition.Node, error) {
	if u.Not != nil {
		inner, err := u.Not.build()
		if err != nil {
			return nil, err
		}
		return condition.Not(inner)
	}
	return u.Predicate.build()
}

func (p *Predicate) build() (*condition.Node, error) {
	left, err := p.Left.build()
	if err != nil {
		return nil, err
	}
	if p.Tail == nil {
		return left, nil
	}

	t := p.Tail
	switch {
	case t.Compare != nil:
		right, err := t.Compare.Right.build()
		if err != nil {
			return nil, err
		}
		switch t.Compare.Op {
		case "=":
			return left.Eq(right)
		case "!=", "<>":
			return left.Neq(right)
		case "<":
			return left.Lt(right)
		case "<=":
			return left.Le(right)
		case ">":
			return left.Gt(right)
		default:
			return left.Ge(right)
		}

	case t.Pattern != nil:
		switch strings.ToLower(t.Pattern.Op) {
		case "contains":
			return left.Contains(t.Pattern.Value)
		case "startswith":
			return left.StartsWith(t.Pattern.Value)
		default:
			return left.EndsWith(t.Pattern.Value)
		}

	case t.IsNull:
		return left.IsNull()

	default:
		set := make([]*condition.Node, len(t.In))
		for i, o := range t.In {
			n, err := o.build()
			if err != nil {
				return nil, err
			}
			set[i] = n
		}
		return left.In(set)
	}
}

func (o *Operand) build() (*condition.Node, error) {
	left, err := o.Left.build()
	if err != nil {
		return nil, err
	}
	if o.Mask == nil {
		return left, nil
	}
	mask, err := o.Mask.build()
	if err != nil {
		return nil, err
	}
	return left.BitAnd(mask)
}

func (t *Term) build() (*condition.Node, error) {
	switch {
	case t.Group != nil:
		return t.Group.build()
	case t.Str != nil:
		return condition.Value(*t.Str)
	case t.Int != nil:
		return condition.Value(*t.Int)
	case t.Bool != nil:
		return condition.Value(strings.EqualFold(*t.Bool, "true"))
	default:
		return condition.Column(*t.Ident)
	}
}
