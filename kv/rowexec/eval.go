// Package rowexec implements the Predicate Evaluator (§4.E) and the
// nested-loops Scanner Driver (§4.F): the engine that walks a PlannedSpec,
// opens and steps per-source scanners, and yields materialized JoinRows.
package rowexec

import (
	"fmt"
	"sort"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
)

// Evaluator evaluates filter.Filter expressions against a materialized
// JoinRow, resolving dotted column paths via each source's RowType.
type Evaluator struct {
	Types map[string]kv.RowType
}

// NewEvaluator builds an Evaluator bound to the given source-name -> table
// row-type mapping, used to resolve a column's position within its
// source's flat Row.
func NewEvaluator(types map[string]kv.RowType) *Evaluator {
	return &Evaluator{Types: types}
}

// Eval implements the conceptual evaluate(filter, joinRow, args) -> bool
// function of §4.E, with short-circuit AND/OR.
func (e *Evaluator) Eval(f filter.Filter, row *kv.JoinRow, args []interface{}) (bool, error) {
	switch v := f.(type) {
	case filter.Const:
		return v.Value, nil
	case filter.And:
		for _, c := range v.Children {
			ok, err := e.Eval(c, row, args)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case filter.Or:
		for _, c := range v.Children {
			ok, err := e.Eval(c, row, args)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case filter.ColumnIsNull:
		val, null, err := e.resolve(v.Column, row)
		if err != nil {
			return false, err
		}
		return null || val == nil, nil
	case filter.ColumnIsNotNull:
		val, null, err := e.resolve(v.Column, row)
		if err != nil {
			return false, err
		}
		return !null && val != nil, nil
	case filter.ColumnToArg:
		left, leftNull, err := e.resolve(v.Column, row)
		if err != nil {
			return false, err
		}
		idx := v.Arg
		if idx < 0 {
			idx = -idx
		}
		if idx < 1 || idx > len(args) {
			return false, kv.ErrTooFewArguments.New(idx, len(args))
		}
		right := args[idx-1]
		return compare(v.Op, left, leftNull, right, right == nil)
	case filter.ColumnToColumn:
		left, leftNull, err := e.resolve(v.Left, row)
		if err != nil {
			return false, err
		}
		right, rightNull, err := e.resolve(v.Right, row)
		if err != nil {
			return false, err
		}
		return compare(v.Op, left, leftNull, right, rightNull)
	default:
		return false, kv.ErrPredicateEval.New(fmt.Sprintf("unknown filter node %T", f))
	}
}

// EvalFlat evaluates f against a single flat Row (bare, un-prefixed column
// names) rather than a materialized JoinRow. A storage-layer Table
// implementation filters its own rows client-side with this, against the
// table-relative filter text a Driver hands to NewScanner/AnyRows.
func EvalFlat(f filter.Filter, row kv.Row, rt kv.RowType, args []interface{}) (bool, error) {
	switch v := f.(type) {
	case filter.Const:
		return v.Value, nil
	case filter.And:
		for _, c := range v.Children {
			ok, err := EvalFlat(c, row, rt, args)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case filter.Or:
		for _, c := range v.Children {
			ok, err := EvalFlat(c, row, rt, args)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case filter.ColumnIsNull:
		val, null, err := resolveFlat(v.Column, row, rt)
		if err != nil {
			return false, err
		}
		return null || val == nil, nil
	case filter.ColumnIsNotNull:
		val, null, err := resolveFlat(v.Column, row, rt)
		if err != nil {
			return false, err
		}
		return !null && val != nil, nil
	case filter.ColumnToArg:
		left, leftNull, err := resolveFlat(v.Column, row, rt)
		if err != nil {
			return false, err
		}
		idx := v.Arg
		if idx < 0 {
			idx = -idx
		}
		if idx < 1 || idx > len(args) {
			return false, kv.ErrTooFewArguments.New(idx, len(args))
		}
		right := args[idx-1]
		return compare(v.Op, left, leftNull, right, right == nil)
	case filter.ColumnToColumn:
		left, leftNull, err := resolveFlat(v.Left, row, rt)
		if err != nil {
			return false, err
		}
		right, rightNull, err := resolveFlat(v.Right, row, rt)
		if err != nil {
			return false, err
		}
		return compare(v.Op, left, leftNull, right, rightNull)
	default:
		return false, kv.ErrPredicateEval.New(fmt.Sprintf("unknown filter node %T", f))
	}
}

func resolveFlat(column string, row kv.Row, rt kv.RowType) (value interface{}, isNull bool, err error) {
	idx := columnIndex(rt, column)
	if idx < 0 || idx >= len(row) {
		return nil, false, kv.ErrUnknownColumn.New(column)
	}
	v := row[idx]
	return v, v == nil, nil
}

// resolve looks up a "source.column[.subcolumn...]" path against row. The
// first component selects the source slot; the remainder is the column's
// full declared name within that source's RowType. An unbound (null-padded)
// source slot fails the enclosing leaf — this is the "jump to the fail
// label on null prefix" contract.
func (e *Evaluator) resolve(path string, row *kv.JoinRow) (value interface{}, isNull bool, err error) {
	source, column := splitPath(path)
	slot := row.Get(source)
	if slot == nil {
		return nil, true, nil
	}
	rt, ok := e.Types[source]
	if !ok {
		return nil, false, kv.ErrUnknownColumn.New(path)
	}
	idx := columnIndex(rt, column)
	if idx < 0 || idx >= len(slot) {
		return nil, false, kv.ErrUnknownColumn.New(path)
	}
	v := slot[idx]
	return v, v == nil, nil
}

func splitPath(path string) (source, column string) {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			return path[:i], path[i+1:]
		}
	}
	return path, ""
}

func columnIndex(rt kv.RowType, name string) int {
	for i, c := range rt.Columns() {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// compare dispatches a two-sided comparison under the null-precedence rule
// ("null compares higher than non-null by default", with == / != returning
// false / true on mixed nullness) and the IN/NOT_IN linear-membership rule.
func compare(op filter.Op, left interface{}, leftNull bool, right interface{}, rightNull bool) (bool, error) {
	if op == filter.In || op == filter.NotIn {
		return compareIn(op, left, leftNull, right)
	}

	if leftNull || rightNull {
		switch op {
		case filter.Eq:
			return false, nil
		case filter.Neq:
			return true, nil
		default:
			// Range comparisons against null follow the "null sorts
			// higher" rule via CompareValues directly below.
		}
	}

	c, err := kv.CompareValues(nilIf(left, leftNull), nilIf(right, rightNull))
	if err != nil {
		return false, err
	}

	switch op {
	case filter.Eq:
		return c == 0, nil
	case filter.Neq:
		return c != 0, nil
	case filter.Ge:
		return c >= 0, nil
	case filter.Lt:
		return c < 0, nil
	case filter.Le:
		return c <= 0, nil
	case filter.Gt:
		return c > 0, nil
	default:
		return false, kv.ErrPredicateEval.New(fmt.Sprintf("unsupported operator %s", op))
	}
}

func nilIf(v interface{}, isNull bool) interface{} {
	if isNull {
		return nil
	}
	return v
}

// compareIn implements IN / NOT_IN: right must be a slice, walked with
// per-element equality (CompareValues == 0). A long array is sorted and
// binary-searched instead of scanned linearly; correctness is identical
// either way since equality here is a strict total order over one type at
// a time (the sort only reorders, never drops, candidates).
func compareIn(op filter.Op, left interface{}, leftNull bool, right interface{}) (bool, error) {
	if leftNull {
		return op == filter.NotIn, nil
	}

	elems, err := toSlice(right)
	if err != nil {
		return false, err
	}

	const linearCutoff = 32
	var found bool
	if len(elems) <= linearCutoff {
		for _, e := range elems {
			c, err := kv.CompareValues(left, e)
			if err != nil {
				return false, err
			}
			if c == 0 {
				found = true
				break
			}
		}
	} else {
		sort.Slice(elems, func(i, j int) bool {
			c, _ := kv.CompareValues(elems[i], elems[j])
			return c < 0
		})
		i := sort.Search(len(elems), func(i int) bool {
			c, _ := kv.CompareValues(elems[i], left)
			return c >= 0
		})
		found = i < len(elems) && func() bool {
			c, _ := kv.CompareValues(elems[i], left)
			return c == 0
		}()
	}

	if op == filter.In {
		return found, nil
	}
	return !found, nil
}

func toSlice(v interface{}) ([]interface{}, error) {
	switch s := v.(type) {
	case []interface{}:
		return s, nil
	case nil:
		return nil, nil
	default:
		return nil, kv.ErrPredicateEval.New(fmt.Sprintf("IN argument must be an array, got %T", v))
	}
}
