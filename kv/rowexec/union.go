package rowexec

import (
	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/planner"
)

// disjointUnionScanner runs a FullJoin's two split sub-plans (§4.H) as
// independent drivers and round-robins their flattened output rows,
// presenting them as a single Column-shaped stream to the enclosing
// fullJoinRunner. Rows of both halves are flattened in First's source
// order, so every row has the shape planner.FlattenRowType(first) reports.
type disjointUnionScanner struct {
	first, second *planner.PlannedSpec
	a, b          *Driver
	aArities      map[string]int
	bArities      map[string]int

	aDone, bDone       bool
	aStarted, bStarted bool
	takeA              bool // which side to pull from next, for round-robining

	current kv.Row
}

// newDisjointUnionScanner gives each half's driver its own copy of
// sharedArgs: the halves are planned separately and number their hoisted
// argument slots from the same starting index.
func newDisjointUnionScanner(ctx *kv.Context, txn kv.Transaction, v *planner.PlannedFullJoin, sharedArgs []interface{}) (*disjointUnionScanner, error) {
	a, err := newDriver(ctx, txn, v.First, append([]interface{}(nil), sharedArgs...))
	if err != nil {
		return nil, err
	}
	b, err := newDriver(ctx, txn, v.Second, append([]interface{}(nil), sharedArgs...))
	if err != nil {
		return nil, err
	}
	return &disjointUnionScanner{
		first:    v.First,
		second:   v.Second,
		a:        a,
		b:        b,
		aArities: planner.Arities(v.First),
		bArities: planner.Arities(v.Second),
		takeA:    true,
	}, nil
}

// Step pulls the next row of the union, alternating sides while both still
// have rows, then draining whichever side remains.
func (u *disjointUnionScanner) Step() (kv.Row, error) {
	for {
		if u.aDone && u.bDone {
			u.current = nil
			return nil, nil
		}

		pullA := u.takeA && !u.aDone
		if u.takeA && u.aDone {
			pullA = !u.bDone
		}
		if !u.takeA && u.bDone {
			pullA = !u.aDone
		}

		if pullA {
			row, err := u.a.Step(u.aStarted)
			u.aStarted = true
			if err != nil {
				return nil, err
			}
			u.takeA = false
			if row == nil {
				u.aDone = true
				continue
			}
			u.current = row.Flatten(u.aArities)
			return u.current, nil
		}

		row, err := u.b.Step(u.bStarted)
		u.bStarted = true
		if err != nil {
			return nil, err
		}
		u.takeA = true
		if row == nil {
			u.bDone = true
			continue
		}
		var flat kv.Row
		for _, name := range u.first.Order {
			slot := row.Get(name)
			if slot == nil {
				slot = make(kv.Row, u.bArities[name])
			}
			flat = append(flat, slot...)
		}
		u.current = flat
		return u.current, nil
	}
}

func (u *disjointUnionScanner) Close() error {
	errA := u.a.Close()
	errB := u.b.Close()
	if errA != nil {
		return errA
	}
	return errB
}
