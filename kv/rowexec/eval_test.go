package rowexec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
)

type testRowType struct {
	name    string
	columns []kv.ColumnInfo
}

func (rt *testRowType) Name() string             { return rt.name }
func (rt *testRowType) Columns() []kv.ColumnInfo  { return rt.columns }
func (rt *testRowType) KeyColumns() []string      { return nil }
func (rt *testRowType) AlternateKeys() [][]string { return nil }
func (rt *testRowType) Column(name string) (kv.ColumnInfo, bool) {
	for _, c := range rt.columns {
		if c.Name == name {
			return c, true
		}
	}
	return kv.ColumnInfo{}, false
}

func ordersType() *testRowType {
	return &testRowType{name: "orders", columns: []kv.ColumnInfo{
		{Name: "id", Type: kv.TypeInt64},
		{Name: "customer_id", Type: kv.TypeInt64},
	}}
}

func customersType() *testRowType {
	return &testRowType{name: "customers", columns: []kv.ColumnInfo{
		{Name: "id", Type: kv.TypeInt64},
		{Name: "name", Type: kv.TypeString},
	}}
}

func TestEvalColumnToArg(t *testing.T) {
	e := NewEvaluator(map[string]kv.RowType{"orders": ordersType()})
	jr := kv.NewJoinRow([]string{"orders"})
	jr.Set("orders", kv.Row{int64(1), int64(7)})

	ok, err := e.Eval(filter.ColumnToArg{Column: "orders.id", Op: filter.Eq, Arg: 1}, jr, []interface{}{int64(1)})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Eval(filter.ColumnToArg{Column: "orders.id", Op: filter.Eq, Arg: 1}, jr, []interface{}{int64(2)})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalColumnToColumnAcrossSources(t *testing.T) {
	e := NewEvaluator(map[string]kv.RowType{
		"orders":    ordersType(),
		"customers": customersType(),
	})
	jr := kv.NewJoinRow([]string{"orders", "customers"})
	jr.Set("orders", kv.Row{int64(1), int64(7)})
	jr.Set("customers", kv.Row{int64(7), "alice"})

	ok, err := e.Eval(filter.ColumnToColumn{Left: "orders.customer_id", Op: filter.Eq, Right: "customers.id"}, jr, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalNullExtendedSourceFailsLeaf(t *testing.T) {
	e := NewEvaluator(map[string]kv.RowType{
		"orders":    ordersType(),
		"customers": customersType(),
	})
	jr := kv.NewJoinRow([]string{"orders", "customers"})
	jr.Set("orders", kv.Row{int64(1), int64(7)})
	// customers left unbound (null-extended side of an outer join)

	ok, err := e.Eval(filter.ColumnToColumn{Left: "orders.customer_id", Op: filter.Eq, Right: "customers.id"}, jr, nil)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = e.Eval(filter.ColumnIsNull{Column: "customers.id"}, jr, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalAndOrShortCircuit(t *testing.T) {
	e := NewEvaluator(map[string]kv.RowType{"orders": ordersType()})
	jr := kv.NewJoinRow([]string{"orders"})
	jr.Set("orders", kv.Row{int64(1), int64(7)})

	f := filter.And2(
		filter.ColumnToArg{Column: "orders.id", Op: filter.Eq, Arg: 1},
		filter.ColumnToArg{Column: "orders.customer_id", Op: filter.Eq, Arg: 2},
	)
	ok, err := e.Eval(f, jr, []interface{}{int64(1), int64(7)})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Eval(f, jr, []interface{}{int64(1), int64(999)})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalInMembership(t *testing.T) {
	e := NewEvaluator(map[string]kv.RowType{"orders": ordersType()})
	jr := kv.NewJoinRow([]string{"orders"})
	jr.Set("orders", kv.Row{int64(1), int64(7)})

	f := filter.ColumnToArg{Column: "orders.customer_id", Op: filter.In, Arg: 1}
	ok, err := e.Eval(f, jr, []interface{}{[]interface{}{int64(5), int64(7), int64(9)}})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Eval(f, jr, []interface{}{[]interface{}{int64(5), int64(9)}})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalTooFewArguments(t *testing.T) {
	e := NewEvaluator(map[string]kv.RowType{"orders": ordersType()})
	jr := kv.NewJoinRow([]string{"orders"})
	jr.Set("orders", kv.Row{int64(1), int64(7)})

	_, err := e.Eval(filter.ColumnToArg{Column: "orders.id", Op: filter.Eq, Arg: 1}, jr, nil)
	require.Error(t, err)
	require.True(t, kv.ErrTooFewArguments.Is(err))
}

func TestEvalFlatAgainstSingleRow(t *testing.T) {
	rt := ordersType()
	row := kv.Row{int64(1), int64(7)}

	ok, err := EvalFlat(filter.ColumnToArg{Column: "id", Op: filter.Eq, Arg: 1}, row, rt, []interface{}{int64(1)})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = EvalFlat(filter.ColumnToArg{Column: "customer_id", Op: filter.Gt, Arg: 1}, row, rt, []interface{}{int64(1)})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvalFlatUnknownColumn(t *testing.T) {
	rt := ordersType()
	row := kv.Row{int64(1), int64(7)}

	_, err := EvalFlat(filter.ColumnIsNull{Column: "missing"}, row, rt, nil)
	require.Error(t, err)
	require.True(t, kv.ErrUnknownColumn.Is(err))
}
