// Package queryplan implements the Plan Describer: a small tagged sum type
// of diagnostic plan nodes, plus a single pretty-printer that dispatches on
// node kind. Nodes are value types and structurally comparable, following
// the sealed QueryPlan hierarchy described for the join execution subsystem.
package queryplan

import (
	"fmt"
	"strings"
)

// Kind tags the variant a Node realizes. Only the fields relevant to that
// variant are meaningful; the rest are left zero.
type Kind int

const (
	FullScan Kind = iota
	RangeScan
	LoadOne
	Identity
	Filter
	Mapper
	Aggregator
	Grouper
	Exists
	Sort
	GroupSort
	NaturalJoin
	PrimaryJoin
	Empty
	DisjointUnion
	RangeUnion
	MergeUnion
	Concat
	MergeConcat
	NestedLoopsJoin
)

var kindNames = map[Kind]string{
	FullScan:        "full scan",
	RangeScan:       "range scan",
	LoadOne:         "load one",
	Identity:        "identity",
	Filter:          "filter",
	Mapper:          "map",
	Aggregator:      "aggregate",
	Grouper:         "group",
	Exists:          "exists",
	Sort:            "sort",
	GroupSort:       "group sort",
	NaturalJoin:     "natural join",
	PrimaryJoin:     "primary join",
	Empty:           "empty",
	DisjointUnion:   "disjoint union",
	RangeUnion:      "range union",
	MergeUnion:      "merge union",
	Concat:          "concat",
	MergeConcat:     "merge concat",
	NestedLoopsJoin: "nested loops join",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Level describes one level of a NestedLoopsJoin: the join type applied at
// this level, the source's name, and the argument assignments written after
// a successful match at this level (argIndex -> dotted column path).
type Level struct {
	Type        string
	Source      string
	Assignments map[int]string
}

// Node is a single plan tree node. Only the fields relevant to Kind are set.
type Node struct {
	Kind Kind

	// Table/index-scan fields (FullScan, RangeScan, LoadOne, Exists).
	Table      string
	KeyColumns []string
	Range      string

	// Generic descriptive fields (Mapper, Aggregator, Grouper, Sort, etc).
	Operation string
	GroupBy   []string

	// Filter text attached to Filter nodes, or a child carrying a remainder.
	FilterText string

	// Children, in positional order. Binary nodes (unions, joins) use the
	// first two; wrapping nodes (Filter, Exists) use the first.
	Children []*Node

	// NestedLoopsJoin-only.
	Levels []Level
}

// Equal reports whether two nodes are structurally identical. Two nodes that
// are otherwise identical but differ in Kind always compare unequal.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	if n.Table != o.Table || n.Range != o.Range || n.Operation != o.Operation || n.FilterText != o.FilterText {
		return false
	}
	if !equalStrings(n.KeyColumns, o.KeyColumns) || !equalStrings(n.GroupBy, o.GroupBy) {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	if len(n.Levels) != len(o.Levels) {
		return false
	}
	for i := range n.Levels {
		a, b := n.Levels[i], o.Levels[i]
		if a.Type != b.Type || a.Source != b.Source || len(a.Assignments) != len(b.Assignments) {
			return false
		}
		for k, v := range a.Assignments {
			if b.Assignments[k] != v {
				return false
			}
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String pretty-prints the node tree, one node per line, two-column indent.
func (n *Node) String() string {
	var sb strings.Builder
	n.print(&sb, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func (n *Node) print(sb *strings.Builder, depth int) {
	if n == nil {
		indent(sb, depth)
		sb.WriteString("<nil>\n")
		return
	}

	indent(sb, depth)
	sb.WriteString(n.Kind.String())
	if n.Table != "" {
		fmt.Fprintf(sb, " %s", n.Table)
	}
	sb.WriteString("\n")

	if len(n.KeyColumns) > 0 {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "key columns: %s\n", strings.Join(n.KeyColumns, ", "))
	}
	if n.Range != "" {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "range: %s\n", n.Range)
	}
	if n.Operation != "" {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "operation: %s\n", n.Operation)
	}
	if n.FilterText != "" {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "filter: %s\n", n.FilterText)
	}
	if len(n.GroupBy) > 0 {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "group by: %s\n", strings.Join(n.GroupBy, ", "))
	}
	for _, lvl := range n.Levels {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "level %s: %s\n", lvl.Type, lvl.Source)
		if len(lvl.Assignments) > 0 {
			indent(sb, depth+2)
			sb.WriteString("assignments: ")
			first := true
			for argIdx, path := range lvl.Assignments {
				if !first {
					sb.WriteString(", ")
				}
				fmt.Fprintf(sb, "?%d <- %s", argIdx, path)
				first = false
			}
			sb.WriteString("\n")
		}
	}
	for _, c := range n.Children {
		c.print(sb, depth+1)
	}
}

// WrapFilter wraps child in a Filter node, unless text is empty (in which
// case child is returned unwrapped) or the constant-false sentinel, in which
// case an Empty node replaces it entirely.
func WrapFilter(child *Node, text string) *Node {
	if text == "" {
		return child
	}
	if text == "false" {
		return &Node{Kind: Empty}
	}
	return &Node{Kind: Filter, FilterText: text, Children: []*Node{child}}
}

// WrapExists builds a childless Exists node for table and filterText:
// Exists replaces opening a full scanner with a boolean probe.
func WrapExists(table string, filterText string) *Node {
	return &Node{Kind: Exists, Table: table, FilterText: filterText}
}
