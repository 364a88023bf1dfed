package planner

import (
	"strings"

	"github.com/kvrowdb/joinengine/kv/filter"
)

// hoistColumnToColumn is Phase 4 (§4.D) applied to one source, in execution
// order: every ColumnToColumn leaf in src's Filter that ties this source's
// column to an already-bound earlier source's column is replaced by a fresh
// ColumnToArg, with the producer source gaining an argument assignment and
// this source recording the producer as an argument dependency. Clauses
// comparing two columns of this same source are left untouched (valid
// scanner filter text as-is). It returns the updated next-argument counter.
func hoistColumnToColumn(root Node, src Source, name string, nextArg int, nullAware bool) int {
	newFilter := filter.Map(src.GetFilter(), func(c filter.Filter) filter.Filter {
		ctc, ok := c.(filter.ColumnToColumn)
		if !ok {
			return c
		}
		leftSrc, rightSrc := prefixOf(ctc.Left), prefixOf(ctc.Right)

		var thisCol, otherCol, otherSrcName string
		var thisIsRight bool
		switch {
		case leftSrc == name && rightSrc != name:
			thisCol, otherCol, otherSrcName = ctc.Left, ctc.Right, rightSrc
		case rightSrc == name && leftSrc != name:
			thisCol, otherCol, otherSrcName, thisIsRight = ctc.Right, ctc.Left, leftSrc, true
		default:
			return c
		}

		producer := findSource(root, otherSrcName)
		if producer == nil {
			// otherSrcName isn't a bound earlier source (e.g. it hasn't been
			// planned yet, or is unknown) — leave the clause unconverted.
			return c
		}

		argIdx := nextArg
		nextArg++

		nullable := nullAware && columnNullable(root, thisCol) != columnNullable(root, otherCol)
		signed := argIdx
		if nullable {
			signed = -argIdx
		}

		producer.AddAssignment(signed, relativePath(otherCol, otherSrcName))
		src.AddArgSource(otherSrcName)

		op := ctc.Op
		if thisIsRight {
			op = flipOp(op)
		}
		return filter.ColumnToArg{Column: thisCol, Op: op, Arg: signed}
	})
	src.SetFilter(newFilter)
	return nextArg
}

func flipOp(op filter.Op) filter.Op {
	switch op {
	case filter.Lt:
		return filter.Gt
	case filter.Gt:
		return filter.Lt
	case filter.Le:
		return filter.Ge
	case filter.Ge:
		return filter.Le
	default:
		return op
	}
}

// relativePath strips the "srcName." prefix from a dotted column path,
// leaving the path to copy out of the current row once it's bound.
func relativePath(col, srcName string) string {
	prefix := srcName + "."
	if strings.HasPrefix(col, prefix) {
		return col[len(prefix):]
	}
	return col
}

// RelativePath is relativePath exported for rowexec's filter-text rendering,
// which needs the same srcName-prefix stripping before handing a filter
// string to a table that only knows its own bare column names.
func RelativePath(col, srcName string) string {
	return relativePath(col, srcName)
}

// columnNullable looks up whether a dotted column path resolves to a
// nullable column of its source's table. FullJoin sources have no single
// table to consult and are conservatively treated as non-nullable here;
// the driver's null-padding already accounts for their overall nullability
// independent of this per-column check.
func columnNullable(root Node, column string) bool {
	srcName := prefixOf(column)
	src := findSource(root, srcName)
	if src == nil {
		return false
	}
	col, ok := findSourceTable(src)
	if !ok {
		return false
	}
	info, ok := col.RowType().Column(relativePath(column, srcName))
	if !ok {
		return false
	}
	return info.Nullable
}
