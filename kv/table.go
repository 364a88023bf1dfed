package kv

import "github.com/kvrowdb/joinengine/kv/queryplan"

// Transaction is opaque to the join subsystem; it is threaded through every
// scanner call and its lifecycle is controlled entirely by the caller.
type Transaction interface{}

// Scanner is a streaming, restartable iterator over one table's rows,
// already filtered by whatever filter text was supplied to NewScanner.
//
// Step/Row/Close mirror the source system's cursor contract exactly: Step
// advances past a previously-returned row (nil to pull the first row) and
// Row peeks at the scanner's current row without advancing, so the driver
// can "restore" a level's slot from Row() after a caller supplies a fresh
// JoinRow instance (see the restartability rule in §4.F).
type Scanner interface {
	// Step advances the scanner and returns the next row, or (nil, nil) at
	// end of stream. current is the row most recently returned by this
	// scanner; an implementation may ignore it (kvstore's cursor-backed
	// scanner does, since its cursor tracks its own position).
	Step(ctx *Context, current Row) (Row, error)

	// Row returns the scanner's current row without advancing, or nil
	// before the first Step or after exhaustion.
	Row() Row

	// Close releases any resources the scanner holds. Idempotent.
	Close(ctx *Context) error
}

// Table is the per-leaf-table scanner factory external collaborator (§6).
// One Table exists per Column leaf's table handle.
type Table interface {
	// Name identifies the table for diagnostics and error messages.
	Name() string

	// RowType describes the table's columns and keys.
	RowType() RowType

	// NewScanner opens a scanner over this table. row, when non-nil, seeds
	// the scanner at a particular starting point (used by restart); most
	// callers pass nil. filterText, when empty, means "no filter" (a full
	// scan). args supplies bind values for any ?N placeholders in
	// filterText.
	NewScanner(ctx *Context, txn Transaction, row Row, filterText string, args []interface{}) (Scanner, error)

	// AnyRows is the boolean fast-path used for the left-anti
	// last-source optimization: does at least one row matching filterText
	// exist, without materializing it.
	AnyRows(ctx *Context, txn Transaction, filterText string, args []interface{}) (bool, error)

	// ScannerPlan describes, for diagnostics, what NewScanner would do for
	// the given filter text without actually opening a scanner.
	ScannerPlan(ctx *Context, txn Transaction, filterText string, args []interface{}) (*queryplan.Node, error)

	// IsEmpty is the static emptiness fast-path used by the spec tree's
	// isEmpty() (§4.B): does this table currently contain zero rows.
	IsEmpty(ctx *Context, txn Transaction) (bool, error)
}
