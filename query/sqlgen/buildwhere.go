// Package sqlgen provides WHERE clause building logic.
package sqlgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/satishbabariya/litemodel/query/condition"
)

// ErrUnsupportedNode is returned when a tree contains a kind the generator
// cannot lower.
var ErrUnsupportedNode = errors.New("unsupported condition node")

var comparisonOps = map[condition.Kind]string{
	condition.KindEq:  "=",
	condition.KindNeq: "!=",
	condition.KindLt:  "<",
	condition.KindLe:  "<=",
	condition.KindGt:  ">",
	condition.KindGe:  ">=",
}

// writer accumulates SQL text and parameters for one statement. Placeholder
// numbering follows the order parameters are appended.
type writer struct {
	dialect Dialect
	sb      strings.Builder
	args    []any
}

func (w *writer) bind(v any) {
	w.sb.WriteString(w.dialect.Placeholder(len(w.args)))
	w.args = append(w.args, v)
}

// buildCondition lowers n. Constants become parameters in pre-order, columns
// are written as bare identifiers.
func (w *writer) buildCondition(n *condition.Node) error {
	kind := n.Kind()
	switch {
	case kind == condition.KindColumn:
		name, _ := n.Literal()
		w.sb.WriteString(name.(string))

	case kind == condition.KindConstant:
		v, _ := n.Literal()
		w.bind(v)

	case kind.IsJunction():
		sep := " AND "
		if kind == condition.KindOr {
			sep = " OR "
		}
		w.sb.WriteByte('(')
		for i := 0; i < n.Len(); i++ {
			if i > 0 {
				w.sb.WriteString(sep)
			}
			if err := w.buildCondition(n.Child(i)); err != nil {
				return err
			}
		}
		w.sb.WriteByte(')')

	case kind == condition.KindNot:
		w.sb.WriteString("NOT (")
		if err := w.buildCondition(n.Child(0)); err != nil {
			return err
		}
		w.sb.WriteByte(')')

	case kind.IsComparison():
		if err := w.buildOperand(n.Child(0)); err != nil {
			return err
		}
		w.sb.WriteString(comparisonOps[kind])
		return w.buildOperand(n.Child(1))

	case kind.IsPattern():
		return w.buildPattern(n)

	case kind == condition.KindIsNull:
		if err := w.buildOperand(n.Child(0)); err != nil {
			return err
		}
		w.sb.WriteString(" IS NULL")

	case kind == condition.KindIn:
		if err := w.buildOperand(n.Child(0)); err != nil {
			return err
		}
		w.sb.WriteString(" IN (")
		for i := 1; i < n.Len(); i++ {
			if i > 1 {
				w.sb.WriteByte(',')
			}
			if err := w.buildOperand(n.Child(i)); err != nil {
				return err
			}
		}
		w.sb.WriteByte(')')

	case kind == condition.KindBitAnd:
		w.sb.WriteByte('(')
		if err := w.buildOperand(n.Child(0)); err != nil {
			return err
		}
		w.sb.WriteByte('&')
		if err := w.buildOperand(n.Child(1)); err != nil {
			return err
		}
		w.sb.WriteByte(')')

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedNode, kind)
	}
	return nil
}

// buildOperand writes an operand of an infix or postfix operator, adding
// parentheses around anything that does not already delimit itself.
func (w *writer) buildOperand(n *condition.Node) error {
	kind := n.Kind()
	if kind.IsLeaf() || kind.IsJunction() || kind == condition.KindBitAnd {
		return w.buildCondition(n)
	}
	w.sb.WriteByte('(')
	if err := w.buildCondition(n); err != nil {
		return err
	}
	w.sb.WriteByte(')')
	return nil
}

func (w *writer) buildPattern(n *condition.Node) error {
	d := w.dialect
	if d.lower {
		w.sb.WriteString("LOWER(")
	}
	if err := w.buildOperand(n.Child(0)); err != nil {
		return err
	}
	if d.lower {
		w.sb.WriteByte(')')
	}
	w.sb.WriteString(" " + d.likeOp + " ")
	if d.lower {
		w.sb.WriteString("LOWER(")
	}
	if err := w.buildOperand(n.Child(1)); err != nil {
		return err
	}
	if d.lower {
		w.sb.WriteByte(')')
	}
	if d.escape {
		w.sb.WriteString(` ESCAPE '\'`)
	}
	return nil
}
