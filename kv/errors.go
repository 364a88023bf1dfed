package kv

import "gopkg.in/src-d/go-errors.v1"

// Error kinds for the join execution subsystem. All but ScannerIOError and
// PredicateEvalError originate inside this package; those two wrap errors
// raised by external scanner/storage collaborators before they reach the
// caller of NewScanner.
var (
	// ErrSpecSyntax covers unmatched parens, unknown operators, and trailing
	// garbage in a join specification.
	ErrSpecSyntax = errors.NewKind("join spec syntax error: %s")

	// ErrUnknownColumn is raised when a spec identifier does not name a
	// declared column of the joining row type.
	ErrUnknownColumn = errors.NewKind("unknown column %q")

	// ErrDuplicateColumn is raised when two Column leaves share a name.
	ErrDuplicateColumn = errors.NewKind("duplicate column %q in join spec")

	// ErrTypeMismatch is raised when a caller-supplied table handle's row
	// type does not match a Column's declared type.
	ErrTypeMismatch = errors.NewKind("column %q: table row type %q does not match declared type %q")

	// ErrUnsupportedJoinType is raised when a right-variant join type
	// survives past left-normalization, or an unknown type code is seen.
	ErrUnsupportedJoinType = errors.NewKind("unsupported join type %v")

	// ErrTooFewArguments is raised when the caller's argument slice is
	// shorter than the planned spec's maximum referenced argument index.
	ErrTooFewArguments = errors.NewKind("query requires at least %d arguments, got %d")

	// ErrScannerIO wraps a failure from an underlying per-table scanner.
	ErrScannerIO = errors.NewKind("scanner error")

	// ErrPredicateEval wraps a domain-conversion failure while coercing
	// argument or column values during predicate evaluation.
	ErrPredicateEval = errors.NewKind("predicate evaluation error")

	// ErrClosedOrUnmodifiable is returned for load/exists calls made
	// directly against a join result, which is read-only by nature.
	ErrClosedOrUnmodifiable = errors.NewKind("join results are read-only")

	// ErrTooManyInnerJoins describes an InnerJoins group larger than the
	// planner's permutation cutoff. The planner does not return it: it
	// plans such a group greedily instead.
	ErrTooManyInnerJoins = errors.NewKind("inner join group of %d tables exceeds permutation cutoff %d")
)
