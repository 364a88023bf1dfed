package rowexec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
	"github.com/kvrowdb/joinengine/kv/joinspec"
	"github.com/kvrowdb/joinengine/kv/planner"
	"github.com/kvrowdb/joinengine/kvstore"
)

func openDriverStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store, err := kvstore.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func ordersDriverType() kv.RowType {
	return kvstore.NewStaticRowType("orders", []kv.ColumnInfo{
		{Name: "id", Type: kv.TypeInt64, KeyRole: kv.PrimaryKeyColumn},
		{Name: "customer_id", Type: kv.TypeInt64},
	})
}

func customersDriverType() kv.RowType {
	return kvstore.NewStaticRowType("customers", []kv.ColumnInfo{
		{Name: "id", Type: kv.TypeInt64, KeyRole: kv.PrimaryKeyColumn},
		{Name: "name", Type: kv.TypeString},
	})
}

// seedDriverTables builds orders/customers tables and seeds them with two
// orders against one matched customer and one dangling customer_id, so
// inner and outer join behavior can both be exercised against real data.
func seedDriverTables(t *testing.T, store *kvstore.Store) (ordersTable, customersTable *kvstore.Table) {
	t.Helper()
	ordersTable, err := store.Table("orders", ordersDriverType())
	require.NoError(t, err)
	customersTable, err = store.Table("customers", customersDriverType())
	require.NoError(t, err)

	wtxn, err := store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, customersTable.Put(wtxn, []interface{}{int64(1)}, kv.Row{int64(1), "alice"}))
	require.NoError(t, ordersTable.Put(wtxn, []interface{}{int64(1)}, kv.Row{int64(1), int64(1)}))
	require.NoError(t, ordersTable.Put(wtxn, []interface{}{int64(2)}, kv.Row{int64(2), int64(99)}))
	require.NoError(t, wtxn.Commit())
	return ordersTable, customersTable
}

func buildDriverSpec(t *testing.T, text string, ordersTable, customersTable *kvstore.Table) *joinspec.Spec {
	t.Helper()
	decls := []joinspec.ColumnDecl{
		{Name: "orders", Declared: ordersDriverType(), Table: ordersTable},
		{Name: "customers", Declared: customersDriverType(), Table: customersTable},
	}
	spec, err := joinspec.Parse(text, decls)
	require.NoError(t, err)
	return spec
}

func TestDriverInnerJoinYieldsOnlyMatchedRows(t *testing.T) {
	store := openDriverStore(t)
	ordersTable, customersTable := seedDriverTables(t, store)
	spec := buildDriverSpec(t, "orders : customers", ordersTable, customersTable)

	predicate := filter.ColumnToColumn{Left: "orders.customer_id", Op: filter.Eq, Right: "customers.id"}
	ps, err := planner.Plan(spec, predicate, planner.Config{})
	require.NoError(t, err)

	ctx := kv.NewContext(context.Background())
	txn, err := store.Begin(false)
	require.NoError(t, err)
	defer txn.Rollback()

	d, err := NewDriver(ctx, txn, ps, nil)
	require.NoError(t, err)
	defer d.Close()

	row, err := d.Step(false)
	require.NoError(t, err)
	require.NotNil(t, row, "the matched order should yield exactly one joined row")
	orderRow := row.Get("orders")
	require.Equal(t, int64(1), orderRow[0])
	customerRow := row.Get("customers")
	require.Equal(t, "alice", customerRow[1])

	row, err = d.Step(true)
	require.NoError(t, err)
	require.Nil(t, row, "the dangling order has no matching customer and is dropped")
}

func TestDriverLeftOuterJoinNullPadsUnmatched(t *testing.T) {
	store := openDriverStore(t)
	ordersTable, customersTable := seedDriverTables(t, store)
	spec := buildDriverSpec(t, "orders >: customers", ordersTable, customersTable)

	predicate := filter.ColumnToColumn{Left: "orders.customer_id", Op: filter.Eq, Right: "customers.id"}
	ps, err := planner.Plan(spec, predicate, planner.Config{})
	require.NoError(t, err)

	ctx := kv.NewContext(context.Background())
	txn, err := store.Begin(false)
	require.NoError(t, err)
	defer txn.Rollback()

	d, err := NewDriver(ctx, txn, ps, nil)
	require.NoError(t, err)
	defer d.Close()

	var matchedNames []interface{}
	jumpIn := false
	for {
		row, err := d.Step(jumpIn)
		require.NoError(t, err)
		if row == nil {
			break
		}
		customerRow := row.Get("customers")
		if customerRow == nil {
			matchedNames = append(matchedNames, nil)
		} else {
			matchedNames = append(matchedNames, customerRow[1])
		}
		jumpIn = true
	}
	require.ElementsMatch(t, []interface{}{"alice", nil}, matchedNames, "every order appears, unmatched ones null-padded")
}

func TestDriverFullJoinUnionsBothSidesDisjointly(t *testing.T) {
	store := openDriverStore(t)
	ordersTable, customersTable := seedDriverTables(t, store)
	// add a second customer with no matching order, so the union scanner's
	// second (anti) sub-plan has a row to contribute too
	wtxn, err := store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, customersTable.Put(wtxn, []interface{}{int64(2)}, kv.Row{int64(2), "bob"}))
	require.NoError(t, wtxn.Commit())

	spec := buildDriverSpec(t, "orders >:< customers", ordersTable, customersTable)
	predicate := filter.ColumnToColumn{Left: "orders.customer_id", Op: filter.Eq, Right: "customers.id"}
	ps, err := planner.Plan(spec, predicate, planner.Config{})
	require.NoError(t, err)

	ctx := kv.NewContext(context.Background())
	txn, err := store.Begin(false)
	require.NoError(t, err)
	defer txn.Rollback()

	d, err := NewDriver(ctx, txn, ps, nil)
	require.NoError(t, err)
	defer d.Close()

	var flattened []kv.Row
	jumpIn := false
	for {
		row, err := d.Step(jumpIn)
		require.NoError(t, err)
		if row == nil {
			break
		}
		flattened = append(flattened, row.Get(ps.Order[0]))
		jumpIn = true
	}

	require.Len(t, flattened, 3, "matched order, dangling order, and dangling customer each appear once")

	contains := func(want interface{}) bool {
		for _, row := range flattened {
			for _, v := range row {
				if v == want {
					return true
				}
			}
		}
		return false
	}
	require.True(t, contains("alice"), "the matched customer's row must surface somewhere in the union")
	require.True(t, contains("bob"), "the unmatched second customer's row must surface via the anti sub-plan")
	require.True(t, contains(int64(99)), "the dangling order's customer_id must still surface")
}
