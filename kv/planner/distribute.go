package planner

import (
	"github.com/kvrowdb/joinengine/kv/filter"
	"github.com/kvrowdb/joinengine/kv/joinspec"
)

// distribute is Phases 2 and 3 run as one left-to-right walk over the
// planned tree: at each leaf source, split the current residual into the
// conjuncts this source can consume and the rest; at an InnerJoins group,
// try permutations (or a greedy heuristic above the cutoff), scoring each
// by re-running this same distribution against a snapshot, then commit the
// winning order for real.
func distribute(node Node, residual filter.Filter, available map[string]struct{}, cfg Config) (filter.Filter, error) {
	switch v := node.(type) {
	case *PlannedColumn:
		return distributeLeaf(v, v.Name_, residual, available)
	case *PlannedFullJoin:
		return distributeLeaf(v, v.Name_, residual, available)
	case *JoinLevel:
		residual, err := distribute(v.Left, residual, available, cfg)
		if err != nil {
			return nil, err
		}
		addSourceNames(available, v.Left)
		residual, err = distribute(v.Right, residual, available, cfg)
		if err != nil {
			return nil, err
		}
		addSourceNames(available, v.Right)
		return residual, nil
	case *innerJoinsGroup:
		return distributeInnerJoins(v, residual, available, cfg)
	default:
		return residual, nil
	}
}

// distributeLeaf implements Phase 2 for a single Source: extract every
// conjunct of residual whose free columns are a subset of available ∪
// {name} and that references name, assign it to Filter, and return what's
// left. Predicate starts from the same extracted set but is weakened with
// filter.Retain: a conjunct that ties name to an already-bound source is
// exactly a match condition the real scan (Filter) already enforces, so it
// is replaced by True rather than kept, leaving Predicate true whenever
// name is the unmatched, null-extended side of an outer or anti join.
// Filter and Predicate diverge further in Phase 4, when Filter alone gets
// argument-hoisted.
func distributeLeaf(src Source, name string, residual filter.Filter, available map[string]struct{}) (filter.Filter, error) {
	thisCols := map[string]struct{}{name: {}}
	// A FullJoin source's columns are those of every leaf inside it.
	if fj, ok := src.(*PlannedFullJoin); ok {
		for _, c := range joinspec.Columns(fj.Spec) {
			thisCols[c.Name] = struct{}{}
		}
	}
	scope := unionSets(available, thisCols)

	extracted, rest := filter.Split(residual, func(c filter.Filter) bool {
		return filter.ReferencesAny(c, thisCols) && filter.ReferencesOnly(c, scope)
	})

	src.SetFilter(extracted)
	src.SetPredicate(filter.Retain(extracted, func(c filter.Filter) bool {
		return !filter.ReferencesAny(c, thisCols) || filter.ReferencesOnly(c, thisCols)
	}, filter.True))
	src.SetRemainder(filter.True)

	for s := range filter.SourcesOf(extracted) {
		if _, own := thisCols[s]; !own {
			src.AddArgSource(s)
		}
	}

	return rest, nil
}

func addSourceNames(set map[string]struct{}, node Node) {
	for _, name := range sourceNamesIn(node) {
		set[name] = struct{}{}
	}
}

func unionSets(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func cloneSet(a map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a))
	for k := range a {
		out[k] = struct{}{}
	}
	return out
}
