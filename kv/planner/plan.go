package planner

import (
	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
	"github.com/kvrowdb/joinengine/kv/joinspec"
)

// Config tunes planner behavior whose defaults are otherwise hard-coded
// source constants (§9 open questions).
type Config struct {
	// PermutationCutoff bounds the size of an InnerJoins group the planner
	// will exhaustively permute (Heap's algorithm is O(n!)). Groups larger
	// than this fall back to a greedy best-first heuristic. Zero means the
	// package default of 8.
	PermutationCutoff int

	// DisableNullAwareArguments turns off phase 4's negative-argument-index
	// branching for nullable hoisted columns (on by default, per §4.D phase
	// 4). Disabling it still performs the hoist, but never flags an index
	// negative, so the driver always uses the plain (non-null-aware)
	// filter variant.
	DisableNullAwareArguments bool
}

func (c Config) cutoff() int {
	if c.PermutationCutoff > 0 {
		return c.PermutationCutoff
	}
	return 8
}

// Plan runs the five-phase planning algorithm (§4.D) against a
// left-normalized spec tree and an overall predicate, producing a
// PlannedSpec.
func Plan(spec *joinspec.Spec, predicate filter.Filter, cfg Config) (*PlannedSpec, error) {
	normalized, err := joinspec.ToLeftJoin(spec.Root)
	if err != nil {
		return nil, err
	}

	// Phase 1: build planned nodes over a deep copy of the (normalized)
	// input tree, so planning can never mutate the caller's spec.
	root := convert(normalized)

	// CNF conversion; fall back to the predicate as-is on failure.
	cnf, err := filter.CNF(predicate)
	if err != nil {
		cnf = predicate
	}
	userMaxArg := filter.MaxArgument(cnf)

	// Phases 2 and 3, interleaved in one left-to-right walk.
	available := map[string]struct{}{}
	residual, err := distribute(root, cnf, available, cfg)
	if err != nil {
		return nil, err
	}

	root = foldInnerJoins(root)

	// Phase 4: argument propagation, in execution order.
	nextArg := userMaxArg + 1
	order := sourceNamesIn(root)
	for _, name := range order {
		src := findSource(root, name)
		nextArg = hoistColumnToColumn(root, src, name, nextArg, !cfg.DisableNullAwareArguments)
	}

	ps := &PlannedSpec{
		Root:        root,
		Residual:    residual,
		MaxArgument: nextArg - 1,
		Order:       order,
		Sources:     map[string]Source{},
	}
	for _, name := range order {
		ps.Sources[name] = findSource(root, name)
	}

	// Finalize any FullJoin pseudo-sources: plan their two disjoint-union
	// sub-specs now that this source's own Filter/Remainder are settled.
	if err := finalizeFullJoins(root, cfg); err != nil {
		return nil, err
	}

	return ps, nil
}

func convert(n joinspec.Node) Node {
	switch v := n.(type) {
	case *joinspec.Column:
		return newPlannedColumn(v)
	case *joinspec.FullJoin:
		return newPlannedFullJoin(v)
	case *joinspec.JoinOp:
		return &JoinLevel{Left: convert(v.Left), Right: convert(v.Right), Type: v.Type}
	case *joinspec.InnerJoins:
		children := make([]Node, len(v.Children))
		for i, c := range v.Children {
			children[i] = convert(c)
		}
		return &innerJoinsGroup{Children: children}
	default:
		panic("planner: unknown spec node type")
	}
}

func findSource(n Node, name string) Source {
	for _, s := range sourcesIn(n) {
		if s.SourceName() == name {
			return s
		}
	}
	return nil
}

func findSourceTable(src Source) (kv.Table, bool) {
	switch v := src.(type) {
	case *PlannedColumn:
		return v.Table, true
	default:
		return nil, false
	}
}

// foldInnerJoins replaces every innerJoinsGroup (now reordered in place by
// Phase 3) with a left-deep chain of Inner JoinLevels, so downstream
// components only ever see Column/FullJoin/JoinLevel nodes.
func foldInnerJoins(n Node) Node {
	switch v := n.(type) {
	case *innerJoinsGroup:
		children := make([]Node, len(v.Children))
		for i, c := range v.Children {
			children[i] = foldInnerJoins(c)
		}
		result := children[0]
		for _, c := range children[1:] {
			result = &JoinLevel{Left: result, Right: c, Type: joinspec.Inner}
		}
		return result
	case *JoinLevel:
		return &JoinLevel{Left: foldInnerJoins(v.Left), Right: foldInnerJoins(v.Right), Type: v.Type}
	default:
		return n
	}
}

func finalizeFullJoins(n Node, cfg Config) error {
	switch v := n.(type) {
	case *PlannedFullJoin:
		localPredicate := filter.And2(v.GetFilter(), v.GetRemainder())
		first, second, _ := joinspec.TrySplitFullJoin(v.Spec)
		firstSpec, err := Plan(&joinspec.Spec{Root: first}, localPredicate, cfg)
		if err != nil {
			return err
		}
		secondSpec, err := Plan(&joinspec.Spec{Root: second}, localPredicate, cfg)
		if err != nil {
			return err
		}
		v.First, v.Second = firstSpec, secondSpec
		return nil
	case *JoinLevel:
		if err := finalizeFullJoins(v.Left, cfg); err != nil {
			return err
		}
		return finalizeFullJoins(v.Right, cfg)
	default:
		return nil
	}
}
