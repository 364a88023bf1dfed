package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
)

type testRowTypeStub struct {
	name string
	keys []string
	alt  [][]string
}

func (rt *testRowTypeStub) Name() string                              { return rt.name }
func (rt *testRowTypeStub) Columns() []kv.ColumnInfo                   { return nil }
func (rt *testRowTypeStub) KeyColumns() []string                      { return rt.keys }
func (rt *testRowTypeStub) AlternateKeys() [][]string                 { return rt.alt }
func (rt *testRowTypeStub) Column(name string) (kv.ColumnInfo, bool)  { return kv.ColumnInfo{}, false }

func TestScoreEqualityOutweighsRange(t *testing.T) {
	available := map[string]struct{}{"orders": {}}
	eq := Score(filter.ColumnToArg{Column: "orders.id", Op: filter.Eq, Arg: 1}, available)
	rng := Score(filter.ColumnToArg{Column: "orders.id", Op: filter.Ge, Arg: 1}, available)
	weak := Score(filter.ColumnToArg{Column: "orders.id", Op: filter.In, Arg: 1}, available)

	require.Greater(t, eq, rng)
	require.Greater(t, rng, weak)
}

func TestScoreUnavailableColumnIsZero(t *testing.T) {
	available := map[string]struct{}{"orders": {}}
	s := Score(filter.ColumnToArg{Column: "customers.id", Op: filter.Eq, Arg: 1}, available)
	require.Zero(t, s)
}

func TestScoreAndSumsOrTakesMin(t *testing.T) {
	available := map[string]struct{}{"orders": {}}
	eq := filter.ColumnToArg{Column: "orders.id", Op: filter.Eq, Arg: 1}
	rng := filter.ColumnToArg{Column: "orders.id", Op: filter.Ge, Arg: 2}

	and := Score(filter.And{Children: []filter.Filter{eq, rng}}, available)
	require.Equal(t, Score(eq, available)+Score(rng, available), and)

	or := Score(filter.Or{Children: []filter.Filter{eq, rng}}, available)
	require.Equal(t, Score(rng, available), or, "OR takes the pessimistic (smaller) branch")
}

func TestMatchKeyPrimaryKey(t *testing.T) {
	f := filter.ColumnToArg{Column: "orders.id", Op: filter.Eq, Arg: 1}
	rt := &testRowTypeStub{name: "orders", keys: []string{"id"}}
	require.Equal(t, 2, MatchKey(f, rt, nil))
}

func TestMatchKeyAlternateKey(t *testing.T) {
	f := filter.And2(
		filter.ColumnToArg{Column: "orders.a", Op: filter.Eq, Arg: 1},
		filter.ColumnToArg{Column: "orders.b", Op: filter.Eq, Arg: 2},
	)
	rt := &testRowTypeStub{name: "orders", keys: []string{"id"}, alt: [][]string{{"a", "b"}}}
	require.Equal(t, 1, MatchKey(f, rt, nil))
}

func TestMatchKeyNoMatch(t *testing.T) {
	f := filter.ColumnToArg{Column: "orders.name", Op: filter.Eq, Arg: 1}
	rt := &testRowTypeStub{name: "orders", keys: []string{"id"}}
	require.Equal(t, 0, MatchKey(f, rt, nil))
}

func TestMatchKeyRequiresAllKeyColumnsBound(t *testing.T) {
	f := filter.ColumnToArg{Column: "orders.id", Op: filter.Ge, Arg: 1} // range, not equality
	rt := &testRowTypeStub{name: "orders", keys: []string{"id"}}
	require.Equal(t, 0, MatchKey(f, rt, nil))
}

func TestMatchKeyORRequiresEveryBranchBound(t *testing.T) {
	f := filter.Or2(
		filter.ColumnToArg{Column: "orders.id", Op: filter.Eq, Arg: 1},
		filter.ColumnToArg{Column: "orders.name", Op: filter.Eq, Arg: 2},
	)
	rt := &testRowTypeStub{name: "orders", keys: []string{"id"}}
	require.Equal(t, 0, MatchKey(f, rt, nil), "the second OR branch never binds id")
}
