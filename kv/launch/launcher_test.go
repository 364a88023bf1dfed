package launch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/joinspec"
	"github.com/kvrowdb/joinengine/kv/planner"
	"github.com/kvrowdb/joinengine/kv/queryplan"
	"github.com/kvrowdb/joinengine/kvstore"
)

func openLaunchStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store, err := kvstore.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func launchDecls(t *testing.T, store *kvstore.Store) []joinspec.ColumnDecl {
	t.Helper()
	ordersRT := kvstore.NewStaticRowType("orders", []kv.ColumnInfo{
		{Name: "id", Type: kv.TypeInt64, KeyRole: kv.PrimaryKeyColumn},
		{Name: "customer_id", Type: kv.TypeInt64},
	})
	customersRT := kvstore.NewStaticRowType("customers", []kv.ColumnInfo{
		{Name: "id", Type: kv.TypeInt64, KeyRole: kv.PrimaryKeyColumn},
		{Name: "name", Type: kv.TypeString},
	})
	ordersTable, err := store.Table("orders", ordersRT)
	require.NoError(t, err)
	customersTable, err := store.Table("customers", customersRT)
	require.NoError(t, err)

	wtxn, err := store.Begin(true)
	require.NoError(t, err)
	require.NoError(t, customersTable.Put(wtxn, []interface{}{int64(1)}, kv.Row{int64(1), "alice"}))
	require.NoError(t, ordersTable.Put(wtxn, []interface{}{int64(1)}, kv.Row{int64(1), int64(1)}))
	require.NoError(t, wtxn.Commit())

	return []joinspec.ColumnDecl{
		{Name: "orders", Declared: ordersRT, Table: ordersTable},
		{Name: "customers", Declared: customersRT, Table: customersTable},
	}
}

func TestCompileAndLaunchRoundTrip(t *testing.T) {
	store := openLaunchStore(t)
	decls := launchDecls(t, store)

	reg, err := NewRegistry(planner.Config{}, 0)
	require.NoError(t, err)

	plan, err := reg.Compile("orders,customers", "orders : customers", "orders.customer_id == customers.id", decls)
	require.NoError(t, err)

	ctx := kv.NewContext(context.Background())
	txn, err := store.Begin(false)
	require.NoError(t, err)
	defer txn.Rollback()

	session, err := plan.Launch(ctx, txn, nil)
	require.NoError(t, err)
	defer session.Close()

	row, err := session.Step(false)
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, int64(1), row[0])
	require.Equal(t, "alice", row[3])

	row, err = session.Step(true)
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestCompileCachesIdenticalQueries(t *testing.T) {
	store := openLaunchStore(t)
	decls := launchDecls(t, store)

	reg, err := NewRegistry(planner.Config{}, 0)
	require.NoError(t, err)

	p1, err := reg.Compile("orders,customers", "orders : customers", "orders.customer_id==customers.id", decls)
	require.NoError(t, err)
	p2, err := reg.Compile("orders,customers", "orders : customers", "orders.customer_id  ==  customers.id", decls)
	require.NoError(t, err)

	require.Same(t, p1.compiled, p2.compiled, "whitespace-only differences canonicalize to the same cache entry")
}

func TestCompileDistinguishesDifferentSpecText(t *testing.T) {
	store := openLaunchStore(t)
	decls := launchDecls(t, store)

	reg, err := NewRegistry(planner.Config{}, 0)
	require.NoError(t, err)

	p1, err := reg.Compile("orders,customers", "orders : customers", "true", decls)
	require.NoError(t, err)
	p2, err := reg.Compile("orders,customers", "orders >: customers", "true", decls)
	require.NoError(t, err)

	require.NotSame(t, p1.compiled, p2.compiled)
}

func TestDescribeViaPlan(t *testing.T) {
	store := openLaunchStore(t)
	decls := launchDecls(t, store)

	reg, err := NewRegistry(planner.Config{}, 0)
	require.NoError(t, err)

	plan, err := reg.Compile("orders,customers", "orders : customers", "true", decls)
	require.NoError(t, err)

	ctx := kv.NewContext(context.Background())
	txn, err := store.Begin(false)
	require.NoError(t, err)
	defer txn.Rollback()

	node, err := plan.Describe(ctx, txn)
	require.NoError(t, err)
	require.Equal(t, queryplan.NestedLoopsJoin, node.Kind)
}
