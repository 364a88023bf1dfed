package planner

import "github.com/kvrowdb/joinengine/kv/filter"

// distributeInnerJoins is Phase 3 (§4.D): pick the best execution order for
// an InnerJoins group, then run Phase 2's distribution for real against
// that order. "Best" is judged position-by-position, most significant
// position first, by a 4-tuple: key-match (descending), filter reduction
// score (descending), at-most-one-row tables first, grouped tables first.
// Groups at or under cfg.cutoff() are exhaustively permuted with Heap's
// algorithm; larger groups use a greedy best-first heuristic instead.
func distributeInnerJoins(v *innerJoinsGroup, residual filter.Filter, available map[string]struct{}, cfg Config) (filter.Filter, error) {
	n := len(v.Children)
	if n == 0 {
		return residual, nil
	}

	entrySnapshot := cloneSet(available)

	var order []int
	if n <= cfg.cutoff() {
		order = bestPermutation(v.Children, residual, entrySnapshot)
	} else {
		order = greedyOrder(v.Children, residual, entrySnapshot)
	}

	reordered := make([]Node, n)
	for i, idx := range order {
		reordered[i] = v.Children[idx]
	}
	v.Children = reordered

	// Restore available to the pre-group snapshot, then apply the winning
	// order for real, committing each child's Filter/Predicate/Remainder.
	for k := range available {
		delete(available, k)
	}
	for k := range entrySnapshot {
		available[k] = struct{}{}
	}

	for _, child := range v.Children {
		var err error
		residual, err = distribute(child, residual, available, cfg)
		if err != nil {
			return nil, err
		}
		addSourceNames(available, child)
	}

	return residual, nil
}

// positionScore is the 4-tuple judged at one position of a candidate order:
// higher is better in every component, compared in this field order.
type positionScore struct {
	keyMatch     int
	filterScore  uint64
	atMostOneRow int
	grouped      int
}

func less(a, b positionScore) bool {
	if a.keyMatch != b.keyMatch {
		return a.keyMatch < b.keyMatch
	}
	if a.filterScore != b.filterScore {
		return a.filterScore < b.filterScore
	}
	if a.atMostOneRow != b.atMostOneRow {
		return a.atMostOneRow < b.atMostOneRow
	}
	return a.grouped < b.grouped
}

// scoreAt computes the position tuple for placing child at a point in the
// order where availableHere is already bound, without mutating child or
// consuming anything from residual.
func scoreAt(child Node, residual filter.Filter, availableHere map[string]struct{}) positionScore {
	src, ok := child.(Source)
	if !ok {
		return positionScore{}
	}
	name := src.SourceName()
	scope := unionSets(availableHere, map[string]struct{}{name: {}})
	extracted, _ := filter.Split(residual, func(c filter.Filter) bool {
		return filter.ReferencesAny(c, map[string]struct{}{name: {}}) && filter.ReferencesOnly(c, scope)
	})

	keyMatch := 0
	if rt, ok := findSourceTable(src); ok {
		keyMatch = MatchKey(extracted, rt.RowType(), scope)
	}

	return positionScore{
		keyMatch:     keyMatch,
		filterScore:  Score(extracted, scope),
		atMostOneRow: boolToInt(keyMatch == 2),
		grouped:      0, // grouping is not modeled; every table compares equal here
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// vectorLess compares two full candidate orders position-by-position, most
// significant (first, i.e. outermost) position first.
func vectorLess(a, b []positionScore) bool {
	for i := range a {
		if less(a[i], b[i]) {
			return true
		}
		if less(b[i], a[i]) {
			return false
		}
	}
	return false
}

func scoreOrder(children []Node, order []int, residual filter.Filter, entrySnapshot map[string]struct{}) []positionScore {
	available := cloneSet(entrySnapshot)
	out := make([]positionScore, len(order))
	for i, idx := range order {
		child := children[idx]
		out[i] = scoreAt(child, residual, available)
		addSourceNames(available, child)
	}
	return out
}

// bestPermutation exhaustively enumerates every ordering of children's
// indices with Heap's algorithm and keeps the one whose score vector is
// lexicographically greatest.
func bestPermutation(children []Node, residual filter.Filter, entrySnapshot map[string]struct{}) []int {
	n := len(children)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	best := append([]int(nil), indices...)
	bestScore := scoreOrder(children, best, residual, entrySnapshot)

	consider := func(candidate []int) {
		s := scoreOrder(children, candidate, residual, entrySnapshot)
		if vectorLess(bestScore, s) {
			bestScore = s
			best = append([]int(nil), candidate...)
		}
	}

	// Heap's algorithm.
	c := make([]int, n)
	cur := append([]int(nil), indices...)
	consider(cur)
	i := 0
	for i < n {
		if c[i] < i {
			if i%2 == 0 {
				cur[0], cur[i] = cur[i], cur[0]
			} else {
				cur[c[i]], cur[i] = cur[i], cur[c[i]]
			}
			consider(cur)
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}

	return best
}

// greedyOrder builds an order one position at a time, at each step picking
// whichever remaining child scores best given what's bound so far. Used
// above the permutation cutoff, where exhaustive search is infeasible.
func greedyOrder(children []Node, residual filter.Filter, entrySnapshot map[string]struct{}) []int {
	n := len(children)
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	available := cloneSet(entrySnapshot)

	var order []int
	for len(remaining) > 0 {
		bestPos := 0
		bestScore := scoreAt(children[remaining[0]], residual, available)
		for i := 1; i < len(remaining); i++ {
			s := scoreAt(children[remaining[i]], residual, available)
			if less(bestScore, s) {
				bestScore = s
				bestPos = i
			}
		}
		chosen := remaining[bestPos]
		order = append(order, chosen)
		addSourceNames(available, children[chosen])
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}
	return order
}
