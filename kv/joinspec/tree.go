// Package joinspec implements the Spec Parser and Spec Tree components
// (§4.A, §4.B): parsing a textual join specification into a tree of join
// operator nodes, and the structural operations (toLeftJoin, isEmpty,
// trySplitFullJoin, Transform, column iteration) defined over that tree.
package joinspec

import (
	"fmt"

	"github.com/kvrowdb/joinengine/kv"
)

// Type is one of the eight algebraic join types. Right-variants are the
// left-variants with children swapped and the type code shifted by one, so
// that toLeftJoin can normalize RightOuter->LeftOuter and RightAnti->LeftAnti
// by subtracting one after swapping children.
type Type int

const (
	Inner Type = iota
	Straight
	LeftOuter
	RightOuter
	FullOuter
	LeftAnti
	RightAnti
	FullAnti
)

func (t Type) String() string {
	switch t {
	case Inner:
		return "INNER"
	case Straight:
		return "STRAIGHT"
	case LeftOuter:
		return "LEFT_OUTER"
	case RightOuter:
		return "RIGHT_OUTER"
	case FullOuter:
		return "FULL_OUTER"
	case LeftAnti:
		return "LEFT_ANTI"
	case RightAnti:
		return "RIGHT_ANTI"
	case FullAnti:
		return "FULL_ANTI"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// IsRightVariant reports whether t is RightOuter or RightAnti.
func (t Type) IsRightVariant() bool { return t == RightOuter || t == RightAnti }

// IsFull reports whether t is FullOuter or FullAnti, the two types a
// FullJoin node may wrap.
func (t Type) IsFull() bool { return t == FullOuter || t == FullAnti }

// Node is the sealed spec-tree node type. Concrete variants: Column, JoinOp,
// InnerJoins, FullJoin.
type Node interface {
	isNode()
	// String renders the node back to the §4.A surface syntax, used for the
	// canonical spec-text cache key and round-trip tests.
	String() string
}

// Column is a leaf: one table participates at this position.
type Column struct {
	Name  string
	Table kv.Table
}

func (*Column) isNode()        {}
func (c *Column) String() string { return c.Name }

// JoinOp is a binary operator combining two sources.
type JoinOp struct {
	Left, Right Node
	Type        Type
}

func (*JoinOp) isNode() {}

func (j *JoinOp) String() string {
	return fmt.Sprintf("%s %s %s", wrapParen(j.Left), typeSymbol(j.Type), wrapParen(j.Right))
}

func wrapParen(n Node) string {
	if _, ok := n.(*Column); ok {
		return n.String()
	}
	return "(" + n.String() + ")"
}

// InnerJoins is a commutative/associative group of two or more children, to
// be reordered by the planner.
type InnerJoins struct {
	Children []Node
}

func (*InnerJoins) isNode() {}

func (g *InnerJoins) String() string {
	s := ""
	for i, c := range g.Children {
		if i > 0 {
			s += " : "
		}
		s += wrapParen(c)
	}
	return s
}

// FullJoin wraps a JoinOp whose type is FullOuter or FullAnti, naming it
// with a unique ordinal so the scanner driver can address the whole
// subtree's eventual disjoint-union result by one Source name.
type FullJoin struct {
	Op      *JoinOp
	Ordinal string
}

func (*FullJoin) isNode() {}

func (f *FullJoin) String() string { return f.Op.String() }

func typeSymbol(t Type) string {
	switch t {
	case Inner:
		return ":"
	case Straight:
		return "::"
	case LeftOuter:
		return ">:"
	case RightOuter:
		return ":<"
	case FullOuter:
		return ">:<"
	case LeftAnti:
		return ">"
	case RightAnti:
		return "<"
	case FullAnti:
		return "><"
	default:
		return "?"
	}
}

// Transform applies fn bottom-up: every child is transformed first, then fn
// is called on the (possibly rebuilt) node itself. This is the Go-idiomatic
// rendering of "accept(visitor): structural walk returning a new node if any
// child was rewritten" (§4.B) — fn plays the role of the visitor, and
// Transform handles the structural recursion so callers only ever match on
// the node kinds they care about.
func Transform(n Node, fn func(Node) (Node, error)) (Node, error) {
	var rebuilt Node
	var err error
	switch v := n.(type) {
	case *Column:
		rebuilt = v
	case *JoinOp:
		left, e := Transform(v.Left, fn)
		if e != nil {
			return nil, e
		}
		right, e := Transform(v.Right, fn)
		if e != nil {
			return nil, e
		}
		if left == v.Left && right == v.Right {
			rebuilt = v
		} else {
			rebuilt = &JoinOp{Left: left, Right: right, Type: v.Type}
		}
	case *InnerJoins:
		children := make([]Node, len(v.Children))
		changed := false
		for i, c := range v.Children {
			nc, e := Transform(c, fn)
			if e != nil {
				return nil, e
			}
			children[i] = nc
			if nc != c {
				changed = true
			}
		}
		if changed {
			rebuilt = &InnerJoins{Children: children}
		} else {
			rebuilt = v
		}
	case *FullJoin:
		op, e := Transform(v.Op, fn)
		if e != nil {
			return nil, e
		}
		if op == Node(v.Op) {
			rebuilt = v
		} else {
			rebuilt = &FullJoin{Op: op.(*JoinOp), Ordinal: v.Ordinal}
		}
	default:
		return nil, fmt.Errorf("joinspec: unknown node type %T", n)
	}
	rebuilt, err = fn(rebuilt)
	return rebuilt, err
}

// Columns returns every Column leaf, in in-order (left-to-right) order.
func Columns(n Node) []*Column {
	var out []*Column
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Column:
			out = append(out, v)
		case *JoinOp:
			walk(v.Left)
			walk(v.Right)
		case *InnerJoins:
			for _, c := range v.Children {
				walk(c)
			}
		case *FullJoin:
			walk(v.Op)
		}
	}
	walk(n)
	return out
}

// ColumnIter is a lazy in-order iterator over a spec tree's leaf columns,
// built by pre-flattening the stack of not-yet-visited nodes rather than
// eagerly materializing the whole leaf list — useful for specs built at
// planning time where only the first few columns may be needed (e.g. the
// key matcher's early-exit).
type ColumnIter struct {
	stack []Node
}

// NewColumnIter starts an iterator positioned before the first column.
func NewColumnIter(n Node) *ColumnIter {
	return &ColumnIter{stack: []Node{n}}
}

// Next returns the next column leaf, or (nil, false) when exhausted.
func (it *ColumnIter) Next() (*Column, bool) {
	for len(it.stack) > 0 {
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		switch v := n.(type) {
		case *Column:
			return v, true
		case *JoinOp:
			// push right then left so left pops first
			it.stack = append(it.stack, v.Right, v.Left)
		case *InnerJoins:
			for i := len(v.Children) - 1; i >= 0; i-- {
				it.stack = append(it.stack, v.Children[i])
			}
		case *FullJoin:
			it.stack = append(it.stack, v.Op)
		}
	}
	return nil, false
}

// ToLeftJoin recursively rewrites every RightOuter/RightAnti JoinOp into its
// LeftOuter/LeftAnti equivalent by swapping children and decrementing the
// type code, per invariant 4. Returns the same node if no change was made.
func ToLeftJoin(n Node) (Node, error) {
	return Transform(n, func(n Node) (Node, error) {
		j, ok := n.(*JoinOp)
		if !ok || !j.Type.IsRightVariant() {
			return n, nil
		}
		return &JoinOp{Left: j.Right, Right: j.Left, Type: j.Type - 1}, nil
	})
}
