package planner

import "github.com/kvrowdb/joinengine/kv"

// Sources exposes the planned tree's leaf sources, in execution order, to
// collaborators outside this package (the scanner driver, the launcher).
func Sources(node Node) []Source { return sourcesIn(node) }

// TableFor returns the concrete kv.Table backing src, if it is a
// single-table source.
func TableFor(src Source) (kv.Table, bool) { return findSourceTable(src) }

// MaxArgumentDeep returns the largest argument slot referenced anywhere in
// ps's tree, including inside any FullJoin source's finalized sub-plans.
// The driver sizes its argument array to this bound, and each FullJoin
// half's driver starts from its own copy of that array.
func MaxArgumentDeep(ps *PlannedSpec) int {
	max := ps.MaxArgument
	for _, src := range ps.Sources {
		if fj, ok := src.(*PlannedFullJoin); ok {
			if fj.First != nil {
				if m := MaxArgumentDeep(fj.First); m > max {
					max = m
				}
			}
			if fj.Second != nil {
				if m := MaxArgumentDeep(fj.Second); m > max {
					max = m
				}
			}
		}
	}
	return max
}

// flattenedRowType is the composite RowType exposed by a multi-source
// PlannedSpec once its JoinRow is flattened: one dotted "source.column"
// entry per column of every leaf source, in execution order.
type flattenedRowType struct {
	name string
	cols []kv.ColumnInfo
}

func (f *flattenedRowType) Name() string              { return f.name }
func (f *flattenedRowType) Columns() []kv.ColumnInfo   { return f.cols }
func (f *flattenedRowType) KeyColumns() []string       { return nil }
func (f *flattenedRowType) AlternateKeys() [][]string  { return nil }
func (f *flattenedRowType) Column(name string) (kv.ColumnInfo, bool) {
	for _, c := range f.cols {
		if c.Name == name {
			return c, true
		}
	}
	return kv.ColumnInfo{}, false
}

// FlattenRowType builds the composite row type a FullJoin's surrogate
// scanner exposes: the concatenation of its First sub-plan's sources'
// columns. Both halves come from splitting the same FullJoin and so hold
// the same sources; Second's rows are flattened in First's source order
// by the driver's disjoint union scanner, giving both the same shape.
func FlattenRowType(ps *PlannedSpec) kv.RowType {
	out := &flattenedRowType{name: "joined"}
	for _, name := range ps.Order {
		src := ps.Sources[name]
		switch v := src.(type) {
		case *PlannedColumn:
			for _, c := range v.Table.RowType().Columns() {
				out.cols = append(out.cols, kv.ColumnInfo{
					Name:     name + "." + c.Name,
					Type:     c.Type,
					Nullable: c.Nullable,
				})
			}
		case *PlannedFullJoin:
			if v.First == nil {
				continue
			}
			for _, c := range FlattenRowType(v.First).Columns() {
				out.cols = append(out.cols, kv.ColumnInfo{
					Name:     name + "." + c.Name,
					Type:     c.Type,
					Nullable: true,
				})
			}
		}
	}
	return out
}

// Arities maps each leaf source name in ps to its flattened column count,
// for JoinRow.Flatten.
func Arities(ps *PlannedSpec) map[string]int {
	out := map[string]int{}
	for _, name := range ps.Order {
		src := ps.Sources[name]
		switch v := src.(type) {
		case *PlannedColumn:
			out[name] = len(v.Table.RowType().Columns())
		case *PlannedFullJoin:
			if v.First != nil {
				n := 0
				for _, c := range FlattenRowType(v.First).Columns() {
					_ = c
					n++
				}
				out[name] = n
			}
		}
	}
	return out
}
