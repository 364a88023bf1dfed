package rowexec

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
	"github.com/kvrowdb/joinengine/kv/joinspec"
	"github.com/kvrowdb/joinengine/kv/planner"
)

// Driver is the nested-loops Scanner Driver (§4.F): it owns one runner per
// level of a PlannedSpec and exposes the "loop(joinRow, jumpIn)" contract as
// a Step/Close pair over a single, reused *kv.JoinRow.
type Driver struct {
	ctx  *kv.Context
	txn  kv.Transaction
	spec *planner.PlannedSpec
	eval *Evaluator
	args []interface{}
	row  *kv.JoinRow
	root runner
	leaves []sourceRunner // execution order, for restartability
	closed bool
}

// NewDriver compiles ps into a running driver bound to txn. The driver owns
// its own argument array, sized to the largest argument slot referenced
// anywhere in ps's tree (including any FullJoin sources' finalized
// sub-plans); userArgs is copied into its low end so the caller's slice can
// never be mutated by the planner-injected assignments (§5's "argument
// array" rule).
func NewDriver(ctx *kv.Context, txn kv.Transaction, ps *planner.PlannedSpec, userArgs []interface{}) (*Driver, error) {
	args := make([]interface{}, planner.MaxArgumentDeep(ps))
	copy(args, userArgs)
	return newDriver(ctx, txn, ps, args)
}

func newDriver(ctx *kv.Context, txn kv.Transaction, ps *planner.PlannedSpec, args []interface{}) (*Driver, error) {
	types := map[string]kv.RowType{}
	for _, name := range ps.Order {
		switch v := ps.Sources[name].(type) {
		case *planner.PlannedColumn:
			types[name] = v.Table.RowType()
		case *planner.PlannedFullJoin:
			if v.First != nil {
				types[name] = planner.FlattenRowType(v.First)
			}
		}
	}

	d := &Driver{
		ctx:  ctx,
		txn:  txn,
		spec: ps,
		eval: NewEvaluator(types),
		args: args,
		row:  kv.NewJoinRow(ps.Order),
	}

	root, err := buildRunner(ps.Root, d)
	if err != nil {
		return nil, err
	}
	d.root = root
	return d, nil
}

// Step advances the driver and returns the next accepted joined row, or
// (nil, nil) at end of stream. jumpIn mirrors §4.F's loop contract: false
// starts over from the outermost level, true resumes at the innermost
// suspension point left by the previous call.
func (d *Driver) Step(jumpIn bool) (*kv.JoinRow, error) {
	if d.closed {
		return nil, nil
	}
	d.restoreColumns()
	yielded, err := d.root.loop(jumpIn)
	if err != nil {
		return nil, err
	}
	if !yielded {
		return nil, nil
	}
	return d.row, nil
}

// Close is idempotent and releases every per-level scanner (other sources
// optimized to a "does any row exist?" probe never held one).
func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.root.close()
}

// restoreColumns re-syncs every non-last source's JoinRow slot from its
// scanner's current row, per §4.F's restartability rule: if a slot is nil
// but the level's scanner still has a current row, the slot was cleared
// (e.g. by an outer join's null-padding) and must be rebound before
// resuming.
func (d *Driver) restoreColumns() {
	for i, src := range d.leaves {
		if i == len(d.leaves)-1 {
			continue
		}
		if d.row.Get(src.name()) == nil {
			if cur := src.currentRow(); cur != nil {
				d.row.Set(src.name(), cur.Clone())
			}
		}
	}
}

// runner is one level of the compiled plan tree.
type runner interface {
	loop(jumpIn bool) (bool, error)
	close() error
}

// sourceRunner is a leaf level: a Column or FullJoin source.
type sourceRunner interface {
	runner
	name() string
	currentRow() kv.Row
}

func buildRunner(node planner.Node, d *Driver) (runner, error) {
	switch v := node.(type) {
	case *planner.PlannedColumn:
		r := newColumnRunner(v, d)
		d.leaves = append(d.leaves, r)
		return r, nil
	case *planner.PlannedFullJoin:
		r, err := newFullJoinRunner(v, d)
		if err != nil {
			return nil, err
		}
		d.leaves = append(d.leaves, r)
		return r, nil
	case *planner.JoinLevel:
		return newJoinRunner(v, d)
	default:
		return nil, kv.ErrUnsupportedJoinType.New(node)
	}
}

// collectNegativeArgs returns, in ascending order, the distinct |Arg|
// values of every ColumnToArg leaf in f whose Arg is negative (a
// null-aware branch point per phase 4).
func collectNegativeArgs(f filter.Filter) []int {
	seen := map[int]struct{}{}
	var walk func(filter.Filter)
	walk = func(f filter.Filter) {
		switch v := f.(type) {
		case filter.And:
			for _, c := range v.Children {
				walk(c)
			}
		case filter.Or:
			for _, c := range v.Children {
				walk(c)
			}
		case filter.ColumnToArg:
			if v.Arg < 0 {
				seen[-v.Arg] = struct{}{}
			}
		}
	}
	walk(f)
	out := make([]int, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func absArg(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// buildFilterText realizes §4.F step 3: pick the null-aware variant of f
// for every negative-indexed comparison whose argument is currently null,
// then flip every remaining negative index positive before rendering. name
// is the owning source's alias; it's stripped off every column reference
// first, since a table only knows its own bare column names.
func buildFilterText(f filter.Filter, args []interface{}, name string) string {
	for _, idx := range collectNegativeArgs(f) {
		if idx-1 < len(args) && args[idx-1] == nil {
			f = filter.ArgumentAsNull(f, idx)
		}
	}
	f = filter.ReplaceArguments(f, absArg)
	return stripSourcePrefix(f, name).String()
}

// stripSourcePrefix rewrites every column reference in f from its dotted
// "name.col" form to the bare "col" a concrete Table expects, mirroring
// planner.relativePath's stripping convention.
func stripSourcePrefix(f filter.Filter, name string) filter.Filter {
	return filter.Map(f, func(c filter.Filter) filter.Filter {
		switch v := c.(type) {
		case filter.ColumnToArg:
			v.Column = planner.RelativePath(v.Column, name)
			return v
		case filter.ColumnToColumn:
			v.Left = planner.RelativePath(v.Left, name)
			v.Right = planner.RelativePath(v.Right, name)
			return v
		case filter.ColumnIsNull:
			v.Column = planner.RelativePath(v.Column, name)
			return v
		case filter.ColumnIsNotNull:
			v.Column = planner.RelativePath(v.Column, name)
			return v
		default:
			return c
		}
	})
}

// isConstTrue reports whether f is the literal TRUE filter — used to
// detect the trivial remainder/predicate that makes the left-anti
// "does any row exist?" optimization (§4.F, Column level step 1) eligible.
func isConstTrue(f filter.Filter) bool {
	c, ok := f.(filter.Const)
	return ok && c.Value
}

// columnRunner is the Column-level driver state (§4.F).
type columnRunner struct {
	src    *planner.PlannedColumn
	driver *Driver
	table  kv.Table

	scanner kv.Scanner

	antiProbeEligible bool
	probeStarted      bool
	probeResult       bool
}

func newColumnRunner(v *planner.PlannedColumn, d *Driver) *columnRunner {
	return &columnRunner{src: v, driver: d, table: v.Table}
}

func (r *columnRunner) name() string { return r.src.SourceName() }

func (r *columnRunner) currentRow() kv.Row {
	if r.scanner == nil {
		return nil
	}
	return r.scanner.Row()
}

func (r *columnRunner) loop(jumpIn bool) (bool, error) {
	if r.antiProbeEligible {
		return r.probeLoop(jumpIn)
	}

	span, spanCtx := r.driver.ctx.StartSpan("rowexec.scan." + r.name())
	defer span.Finish()

	if r.scanner == nil {
		text := buildFilterText(r.src.GetFilter(), r.driver.args, r.name())
		r.driver.ctx.Log.WithField("source", r.name()).Debug("opening scanner")
		s, err := r.table.NewScanner(spanCtx, r.driver.txn, nil, text, r.driver.args)
		if err != nil {
			r.driver.ctx.Log.WithField("source", r.name()).WithError(err).Warn("scanner open failed")
			return false, kv.ErrScannerIO.New(errors.Wrap(err, "open scanner"))
		}
		r.scanner = s
	}

	for {
		row, err := r.scanner.Step(spanCtx, r.scanner.Row())
		if err != nil {
			r.driver.ctx.Log.WithField("source", r.name()).WithError(err).Warn("scanner step failed")
			return false, kv.ErrScannerIO.New(errors.Wrap(err, "step scanner"))
		}
		if row == nil {
			if err := r.scanner.Close(r.driver.ctx); err != nil {
				return false, kv.ErrScannerIO.New(errors.Wrap(err, "close scanner"))
			}
			r.scanner = nil
			return false, nil
		}

		r.driver.row.Set(r.name(), row)

		ok, err := r.driver.eval.Eval(r.src.GetRemainder(), r.driver.row, r.driver.args)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}

		if err := r.writeAssignments(row); err != nil {
			return false, err
		}
		return true, nil
	}
}

func (r *columnRunner) writeAssignments(row kv.Row) error {
	for argIdx, path := range r.src.Assignments() {
		idx := columnIndex(r.table.RowType(), path)
		if idx < 0 || idx >= len(row) {
			return kv.ErrUnknownColumn.New(path)
		}
		pos := absArg(argIdx) - 1
		if pos < 0 || pos >= len(r.driver.args) {
			return kv.ErrTooFewArguments.New(absArg(argIdx), len(r.driver.args))
		}
		r.driver.args[pos] = row[idx]
	}
	return nil
}

// probeLoop runs one exists probe per fresh entry (jumpIn false), using the
// arguments bound for the current left tuple; resuming after a probe that
// matched reports exhaustion.
func (r *columnRunner) probeLoop(jumpIn bool) (bool, error) {
	if jumpIn && r.probeStarted {
		return false, nil
	}
	r.probeStarted = true
	span, spanCtx := r.driver.ctx.StartSpan("rowexec.exists." + r.name())
	defer span.Finish()
	text := buildFilterText(r.src.GetFilter(), r.driver.args, r.name())
	ok, err := r.table.AnyRows(spanCtx, r.driver.txn, text, r.driver.args)
	if err != nil {
		return false, kv.ErrScannerIO.New(errors.Wrap(err, "exists probe"))
	}
	r.probeResult = ok
	return ok, nil
}

func (r *columnRunner) close() error {
	if r.scanner == nil {
		return nil
	}
	err := r.scanner.Close(r.driver.ctx)
	r.scanner = nil
	return err
}

// fullJoinRunner is the FullJoin-level driver state: a Column level over
// the surrogate scanner produced by running the split plan as a disjoint
// union (§4.F, §4.H).
type fullJoinRunner struct {
	src    *planner.PlannedFullJoin
	driver *Driver
	union  *disjointUnionScanner
}

func newFullJoinRunner(v *planner.PlannedFullJoin, d *Driver) (*fullJoinRunner, error) {
	u, err := newDisjointUnionScanner(d.ctx, d.txn, v, d.args)
	if err != nil {
		return nil, err
	}
	return &fullJoinRunner{src: v, driver: d, union: u}, nil
}

func (r *fullJoinRunner) name() string      { return r.src.SourceName() }
func (r *fullJoinRunner) currentRow() kv.Row { return r.union.current }

func (r *fullJoinRunner) loop(jumpIn bool) (bool, error) {
	for {
		row, err := r.union.Step()
		if err != nil {
			return false, err
		}
		if row == nil {
			return false, nil
		}
		r.driver.row.Set(r.name(), row)
		for argIdx, path := range r.src.Assignments() {
			idx := columnIndex(planner.FlattenRowType(r.union.first), path)
			if idx < 0 || idx >= len(row) {
				return false, kv.ErrUnknownColumn.New(path)
			}
			pos := absArg(argIdx) - 1
			if pos < 0 || pos >= len(r.driver.args) {
				return false, kv.ErrTooFewArguments.New(absArg(argIdx), len(r.driver.args))
			}
			r.driver.args[pos] = row[idx]
		}
		return true, nil
	}
}

func (r *fullJoinRunner) close() error {
	return r.union.Close()
}

// joinRunner is a JoinOp level: Inner/Straight/LeftOuter/LeftAnti only —
// RightOuter/RightAnti are rewritten away by joinspec.ToLeftJoin before
// planning ever sees them.
type joinRunner struct {
	left, right runner
	typ         joinspec.Type
	driver      *Driver

	ready       bool
	matched     bool
	predicate   filter.Filter
	rightLeaves []string
}

func newJoinRunner(v *planner.JoinLevel, d *Driver) (runner, error) {
	left, err := buildRunner(v.Left, d)
	if err != nil {
		return nil, err
	}
	right, err := buildRunner(v.Right, d)
	if err != nil {
		return nil, err
	}

	jr := &joinRunner{left: left, right: right, typ: v.Type, driver: d}

	rightSources := planner.Sources(v.Right)
	jr.predicate = filter.True
	for _, s := range rightSources {
		jr.predicate = filter.And2(jr.predicate, s.GetPredicate())
		jr.rightLeaves = append(jr.rightLeaves, s.SourceName())
	}

	if v.Type == joinspec.LeftAnti {
		if cr, ok := right.(*columnRunner); ok && len(rightSources) == 1 {
			if isConstTrue(cr.src.GetRemainder()) && len(cr.src.Assignments()) == 0 {
				cr.antiProbeEligible = true
			}
		}
	}

	return jr, nil
}

func (j *joinRunner) loop(jumpIn bool) (bool, error) {
	if !jumpIn {
		leftYielded, err := j.left.loop(false)
		if err != nil {
			return false, err
		}
		if !leftYielded {
			return false, nil
		}
		j.ready = false
		j.matched = false
	}

	rj := jumpIn
	for {
		rightYielded, err := j.right.loop(rj)
		if err != nil {
			return false, err
		}

		switch j.typ {
		case joinspec.Inner, joinspec.Straight:
			if rightYielded {
				return true, nil
			}
			leftYielded, err := j.left.loop(false)
			if err != nil {
				return false, err
			}
			if !leftYielded {
				return false, nil
			}
			rj = false

		case joinspec.LeftOuter:
			// A real right-side match is always emitted; it never by
			// itself decides whether the null-padded row also gets
			// emitted for this left tuple (that's exhaustion's job,
			// gated on matched below).
			if rightYielded {
				j.matched = true
				return true, nil
			}
			if j.ready {
				leftYielded, err := j.left.loop(false)
				if err != nil {
					return false, err
				}
				if !leftYielded {
					return false, nil
				}
				j.ready = false
				j.matched = false
				rj = false
				continue
			}
			j.ready = true
			if !j.matched {
				j.clearRight()
				ok, err := j.driver.eval.Eval(j.predicate, j.driver.row, j.driver.args)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			leftYielded, err := j.left.loop(false)
			if err != nil {
				return false, err
			}
			if !leftYielded {
				return false, nil
			}
			j.ready = false
			j.matched = false
			rj = false

		case joinspec.LeftAnti:
			// A real right-side match rules out this left tuple for
			// LEFT_ANTI, but isn't itself emitted; keep draining the
			// right side so its runner reaches a clean exhausted state
			// before the next left tuple starts.
			if rightYielded {
				j.matched = true
				rj = true
				continue
			}
			if j.ready {
				if err := j.right.close(); err != nil {
					return false, err
				}
				leftYielded, err := j.left.loop(false)
				if err != nil {
					return false, err
				}
				if !leftYielded {
					return false, nil
				}
				j.ready = false
				j.matched = false
				rj = false
				continue
			}
			j.ready = true
			if !j.matched {
				j.clearRight()
				ok, err := j.driver.eval.Eval(j.predicate, j.driver.row, j.driver.args)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			leftYielded, err := j.left.loop(false)
			if err != nil {
				return false, err
			}
			if !leftYielded {
				return false, nil
			}
			j.ready = false
			j.matched = false
			rj = false

		default:
			return false, kv.ErrUnsupportedJoinType.New(j.typ)
		}
	}
}

func (j *joinRunner) clearRight() {
	for _, name := range j.rightLeaves {
		j.driver.row.Set(name, nil)
	}
}

func (j *joinRunner) close() error {
	if err := j.left.close(); err != nil {
		return err
	}
	return j.right.close()
}
