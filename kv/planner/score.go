// Package planner implements the Filter Scorer / Key Matcher (§4.C) and the
// five-phase Planner (§4.D): distributing the predicate across levels,
// reordering inner-join groups, hoisting column-to-column comparisons into
// argument bindings, and producing a PlannedSpec plus residual filter.
package planner

import (
	"math"
	"strings"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
)

const (
	strongWeight uint64 = 1 << 42
	mediumWeight uint64 = 1 << 21
	weakWeight   uint64 = 1
)

// Score computes a 64-bit saturating score for how effectively f reduces a
// scan, given the set of columns/sources currently available (bound by
// earlier levels plus the scoring source's own columns). AND sums child
// scores with saturation; OR takes the pessimistic minimum; a leaf whose
// referenced column(s) aren't all in available contributes zero.
func Score(f filter.Filter, available map[string]struct{}) uint64 {
	switch v := f.(type) {
	case filter.And:
		var sum uint64
		for _, c := range v.Children {
			sum = saturatingAdd(sum, Score(c, available))
		}
		return sum
	case filter.Or:
		if len(v.Children) == 0 {
			return 0
		}
		min := Score(v.Children[0], available)
		for _, c := range v.Children[1:] {
			if s := Score(c, available); s < min {
				min = s
			}
		}
		return min
	case filter.ColumnToArg:
		if !inSet(available, v.Column) {
			return 0
		}
		return weightFor(v.Op)
	case filter.ColumnToColumn:
		if !inSet(available, v.Left) || !inSet(available, v.Right) {
			return 0
		}
		return weightFor(v.Op)
	case filter.ColumnIsNull:
		if !inSet(available, v.Column) {
			return 0
		}
		return weakWeight
	case filter.ColumnIsNotNull:
		if !inSet(available, v.Column) {
			return 0
		}
		return weakWeight
	default:
		return 0
	}
}

func weightFor(op filter.Op) uint64 {
	switch {
	case op == filter.Eq:
		return strongWeight
	case op.IsRange():
		return mediumWeight
	default:
		return weakWeight
	}
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func inSet(available map[string]struct{}, column string) bool {
	if _, ok := available[column]; ok {
		return true
	}
	_, ok := available[prefixOf(column)]
	return ok
}

func prefixOf(column string) string {
	if i := strings.IndexByte(column, '.'); i >= 0 {
		return column[:i]
	}
	return column
}

func lastComponent(column string) string {
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		return column[i+1:]
	}
	return column
}

// MatchKey reports whether f exactly matches rt's primary key (2), one of
// its alternate keys (1), or neither (0). A match requires every key column
// to be tied down by an == comparison (against an argument or an available
// column) inside an AND; an OR matches only if every branch matches.
func MatchKey(f filter.Filter, rt kv.RowType, available map[string]struct{}) int {
	bound := boundEqualityColumns(f, available)
	if pk := rt.KeyColumns(); len(pk) > 0 && allBound(pk, bound) {
		return 2
	}
	for _, ak := range rt.AlternateKeys() {
		if allBound(ak, bound) {
			return 1
		}
	}
	return 0
}

func allBound(keyCols []string, bound map[string]bool) bool {
	for _, k := range keyCols {
		if !bound[k] {
			return false
		}
	}
	return true
}

// boundEqualityColumns returns the set of (bare, last-path-component) column
// names that f guarantees are tied to a concrete value by == somewhere in
// an AND context; for OR, only columns bound in every branch are included.
// A column-to-column == binds one side only when the other side is in
// available.
func boundEqualityColumns(f filter.Filter, available map[string]struct{}) map[string]bool {
	switch v := f.(type) {
	case filter.And:
		out := map[string]bool{}
		for _, c := range v.Children {
			for k := range boundEqualityColumns(c, available) {
				out[k] = true
			}
		}
		return out
	case filter.Or:
		if len(v.Children) == 0 {
			return map[string]bool{}
		}
		sets := make([]map[string]bool, len(v.Children))
		for i, c := range v.Children {
			sets[i] = boundEqualityColumns(c, available)
		}
		out := map[string]bool{}
		for k := range sets[0] {
			all := true
			for _, s := range sets[1:] {
				if !s[k] {
					all = false
					break
				}
			}
			if all {
				out[k] = true
			}
		}
		return out
	case filter.ColumnToArg:
		if v.Op == filter.Eq {
			return map[string]bool{lastComponent(v.Column): true}
		}
	case filter.ColumnToColumn:
		if v.Op == filter.Eq {
			out := map[string]bool{}
			if inSet(available, v.Right) {
				out[lastComponent(v.Left)] = true
			}
			if inSet(available, v.Left) {
				out[lastComponent(v.Right)] = true
			}
			return out
		}
	}
	return map[string]bool{}
}
