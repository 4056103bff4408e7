package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is an immutable element of a condition tree. Leaves (columns and
// constants) carry a literal; every other kind carries children.
//
// Nodes are never modified after construction, so a subtree may be shared
// between several parents and a finished tree may be read from any number of
// goroutines.
type Node struct {
	kind     Kind
	typ      ValueType
	literal  any
	children []*Node
}

// Kind returns the operator of n.
func (n *Node) Kind() Kind { return n.kind }

// Type returns the value type n evaluates to.
func (n *Node) Type() ValueType { return n.typ }

// Literal returns the column name or constant value held by a leaf.
// Constants hold int64, bool or string.
func (n *Node) Literal() (any, bool) {
	if !n.kind.IsLeaf() {
		return nil, false
	}
	return n.literal, true
}

// Children returns a copy of the node's operands in order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// Child returns the i-th operand.
func (n *Node) Child(i int) *Node { return n.children[i] }

// String renders n for logs and test failures, e.g. and(eq(a, 1), is_null(b)).
func (n *Node) String() string {
	var sb strings.Builder
	n.format(&sb)
	return sb.String()
}

func (n *Node) format(sb *strings.Builder) {
	switch n.kind {
	case KindColumn:
		sb.WriteString(n.literal.(string))
		return
	case KindConstant:
		switch v := n.literal.(type) {
		case string:
			sb.WriteString(strconv.Quote(v))
		default:
			fmt.Fprint(sb, v)
		}
		return
	}
	sb.WriteString(n.kind.String())
	sb.WriteByte('(')
	for i, c := range n.children {
		if i > 0 {
			sb.WriteString(", ")
		}
		c.format(sb)
	}
	sb.WriteByte(')')
}

func newLeaf(kind Kind, typ ValueType, lit any) *Node {
	return &Node{kind: kind, typ: typ, literal: lit}
}

func newBranch(kind Kind, typ ValueType, children ...*Node) *Node {
	return &Node{kind: kind, typ: typ, children: children}
}

// Must returns n or panics if err is non-nil. It is meant for trees whose
// shape is fixed at compile time:
//
//	active := condition.Must(condition.Must(condition.Column("active")).Eq(true))
func Must(n *Node, err error) *Node {
	if err != nil {
		panic(err)
	}
	return n
}
