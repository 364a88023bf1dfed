package planner

import (
	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
	"github.com/kvrowdb/joinengine/kv/joinspec"
)

// Node is the sealed planned-tree node type. Concrete variants: PlannedColumn,
// PlannedFullJoin (both Sources), JoinLevel, and, only transiently during
// planning, innerJoinsGroup (folded away into a left-deep JoinLevel chain
// before Plan returns).
type Node interface {
	isPlannedNode()
}

// Source is the common per-leaf state every Column and FullJoin source
// carries after planning (§3): the scanner-pushable filter, the
// post-materialization remainder, the outer/anti null-padding predicate,
// the argument assignments this source writes after a match, and the set
// of earlier sources this source's bindings depend on.
type Source interface {
	Node
	SourceName() string
	GetFilter() filter.Filter
	SetFilter(filter.Filter)
	GetRemainder() filter.Filter
	SetRemainder(filter.Filter)
	GetPredicate() filter.Filter
	SetPredicate(filter.Filter)
	Assignments() map[int]string
	AddAssignment(arg int, path string)
	ArgSources() map[string]struct{}
	AddArgSource(name string)
}

// PlannedColumn is a single-table leaf source.
type PlannedColumn struct {
	Name_      string
	Table      kv.Table
	Filter_    filter.Filter
	Remainder_ filter.Filter
	Predicate_ filter.Filter
	Assign     map[int]string
	ArgSrc     map[string]struct{}
}

func newPlannedColumn(c *joinspec.Column) *PlannedColumn {
	return &PlannedColumn{
		Name_:      c.Name,
		Table:      c.Table,
		Filter_:    filter.True,
		Remainder_: filter.True,
		Predicate_: filter.True,
		Assign:     map[int]string{},
		ArgSrc:     map[string]struct{}{},
	}
}

func (*PlannedColumn) isPlannedNode()              {}
func (p *PlannedColumn) SourceName() string        { return p.Name_ }
func (p *PlannedColumn) GetFilter() filter.Filter  { return p.Filter_ }
func (p *PlannedColumn) SetFilter(f filter.Filter) { p.Filter_ = f }
func (p *PlannedColumn) GetRemainder() filter.Filter  { return p.Remainder_ }
func (p *PlannedColumn) SetRemainder(f filter.Filter) { p.Remainder_ = f }
func (p *PlannedColumn) GetPredicate() filter.Filter  { return p.Predicate_ }
func (p *PlannedColumn) SetPredicate(f filter.Filter) { p.Predicate_ = f }
func (p *PlannedColumn) Assignments() map[int]string  { return p.Assign }
func (p *PlannedColumn) AddAssignment(arg int, path string) { p.Assign[arg] = path }
func (p *PlannedColumn) ArgSources() map[string]struct{}    { return p.ArgSrc }
func (p *PlannedColumn) AddArgSource(name string)           { p.ArgSrc[name] = struct{}{} }

// JoinLevel is a binary join combinator: two child nodes joined under one
// of the eight algebraic types. After folding, this is also what an
// InnerJoins group becomes: a left-deep chain of Inner-typed JoinLevels in
// the planner's chosen order.
type JoinLevel struct {
	Left, Right Node
	Type        joinspec.Type
}

func (*JoinLevel) isPlannedNode() {}

// PlannedFullJoin is a FullJoin source, planned as an opaque pseudo-source:
// the planner never looks inside it for reordering or distribution beyond
// treating its full leaf-column set as "this source's columns". Its two
// disjoint-union sub-plans (First, Second) are built once planning of the
// outer tree is complete, against this source's own Filter/Remainder as the
// only predicate visible inside it (§4.F: "behaves like a Column level, but
// over the surrogate scanner produced by running the split plan").
type PlannedFullJoin struct {
	Name_      string
	Spec       *joinspec.FullJoin
	Filter_    filter.Filter
	Remainder_ filter.Filter
	Predicate_ filter.Filter
	Assign     map[int]string
	ArgSrc     map[string]struct{}

	First, Second *PlannedSpec
}

func newPlannedFullJoin(f *joinspec.FullJoin) *PlannedFullJoin {
	return &PlannedFullJoin{
		Name_:      f.Ordinal,
		Spec:       f,
		Filter_:    filter.True,
		Remainder_: filter.True,
		Predicate_: filter.True,
		Assign:     map[int]string{},
		ArgSrc:     map[string]struct{}{},
	}
}

func (*PlannedFullJoin) isPlannedNode()                 {}
func (p *PlannedFullJoin) SourceName() string           { return p.Name_ }
func (p *PlannedFullJoin) GetFilter() filter.Filter     { return p.Filter_ }
func (p *PlannedFullJoin) SetFilter(f filter.Filter)    { p.Filter_ = f }
func (p *PlannedFullJoin) GetRemainder() filter.Filter  { return p.Remainder_ }
func (p *PlannedFullJoin) SetRemainder(f filter.Filter) { p.Remainder_ = f }
func (p *PlannedFullJoin) GetPredicate() filter.Filter  { return p.Predicate_ }
func (p *PlannedFullJoin) SetPredicate(f filter.Filter) { p.Predicate_ = f }
func (p *PlannedFullJoin) Assignments() map[int]string  { return p.Assign }
func (p *PlannedFullJoin) AddAssignment(arg int, path string) { p.Assign[arg] = path }
func (p *PlannedFullJoin) ArgSources() map[string]struct{}    { return p.ArgSrc }
func (p *PlannedFullJoin) AddArgSource(name string)           { p.ArgSrc[name] = struct{}{} }

// innerJoinsGroup is the transient planned form of a joinspec.InnerJoins
// group, reordered in place by Phase 3 and folded into a JoinLevel chain
// before Plan returns.
type innerJoinsGroup struct {
	Children []Node
}

func (*innerJoinsGroup) isPlannedNode() {}

// PlannedSpec is the root artifact of planning: a tree of Sources and
// JoinLevels, the final residual filter, the total argument-slot count
// (including planner-injected slots), and the execution order of source
// names (outermost first) the scanner driver walks.
type PlannedSpec struct {
	Root        Node
	Residual    filter.Filter
	MaxArgument int
	Order       []string
	Sources     map[string]Source
}

// sourcesIn returns every leaf Source within node's subtree, in execution
// order.
func sourcesIn(node Node) []Source {
	var out []Source
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case Source:
			out = append(out, v)
		case *JoinLevel:
			walk(v.Left)
			walk(v.Right)
		case *innerJoinsGroup:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(node)
	return out
}

func sourceNamesIn(node Node) []string {
	srcs := sourcesIn(node)
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = s.SourceName()
	}
	return out
}
