package rowexec

import (
	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
	"github.com/kvrowdb/joinengine/kv/joinspec"
	"github.com/kvrowdb/joinengine/kv/planner"
	"github.com/kvrowdb/joinengine/kv/queryplan"
)

// Describe is the Plan Describer's driver-side mapping (§4.G): it walks a
// PlannedSpec the same way a Driver would execute it and produces the
// diagnostic queryplan.Node tree, without opening any real scanner.
func Describe(ctx *kv.Context, txn kv.Transaction, ps *planner.PlannedSpec) (*queryplan.Node, error) {
	types, names := collectLevels(ps.Root, "")

	levels := make([]queryplan.Level, len(names))
	children := make([]*queryplan.Node, len(names))

	for i, name := range names {
		src := ps.Sources[name]
		node, err := describeSource(ctx, txn, src, types[i])
		if err != nil {
			return nil, err
		}
		levels[i] = queryplan.Level{Type: types[i], Source: name, Assignments: src.Assignments()}
		children[i] = node
	}

	return &queryplan.Node{Kind: queryplan.NestedLoopsJoin, Levels: levels, Children: children}, nil
}

// collectLevels walks the folded left-deep JoinLevel chain, recording, for
// each leaf source in execution order, the join type that introduces it
// (the empty string for the outermost/first source).
func collectLevels(node planner.Node, incoming string) (types, names []string) {
	switch v := node.(type) {
	case planner.Source:
		return []string{incoming}, []string{v.SourceName()}
	case *planner.JoinLevel:
		lt, ln := collectLevels(v.Left, incoming)
		rt, rn := collectLevels(v.Right, v.Type.String())
		return append(lt, rt...), append(ln, rn...)
	default:
		return nil, nil
	}
}

func describeSource(ctx *kv.Context, txn kv.Transaction, src planner.Source, incoming string) (*queryplan.Node, error) {
	switch v := src.(type) {
	case *planner.PlannedFullJoin:
		first, err := Describe(ctx, txn, v.First)
		if err != nil {
			return nil, err
		}
		second, err := Describe(ctx, txn, v.Second)
		if err != nil {
			return nil, err
		}
		return &queryplan.Node{Kind: queryplan.DisjointUnion, Children: []*queryplan.Node{first, second}}, nil

	case *planner.PlannedColumn:
		if v.GetFilter() == filter.False {
			return &queryplan.Node{Kind: queryplan.Empty}, nil
		}

		name := v.SourceName()
		filterText := stripSourcePrefix(filter.ReplaceArguments(v.GetFilter(), absArg), name).String()

		if incoming == joinspec.LeftAnti.String() && isConstTrue(v.GetRemainder()) && len(v.Assignments()) == 0 {
			return queryplan.WrapExists(v.Table.Name(), filterText), nil
		}

		base, err := v.Table.ScannerPlan(ctx, txn, filterText, nil)
		if err != nil {
			return nil, err
		}
		if !isConstTrue(v.GetRemainder()) {
			remainderText := stripSourcePrefix(filter.ReplaceArguments(v.GetRemainder(), absArg), name).String()
			base = queryplan.WrapFilter(base, remainderText)
		}
		return base, nil

	default:
		return nil, kv.ErrUnsupportedJoinType.New(src)
	}
}
