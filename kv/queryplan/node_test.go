package queryplan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapFilterNoTextReturnsChildUnwrapped(t *testing.T) {
	child := &Node{Kind: FullScan, Table: "orders"}
	require.Same(t, child, WrapFilter(child, ""))
}

func TestWrapFilterFalseTextIsEmptyNode(t *testing.T) {
	child := &Node{Kind: FullScan, Table: "orders"}
	out := WrapFilter(child, "false")
	require.Equal(t, Empty, out.Kind)
}

func TestWrapFilterWrapsOtherwise(t *testing.T) {
	child := &Node{Kind: FullScan, Table: "orders"}
	out := WrapFilter(child, "id == ?1")
	require.Equal(t, Filter, out.Kind)
	require.Equal(t, "id == ?1", out.FilterText)
	require.Len(t, out.Children, 1)
	require.Same(t, child, out.Children[0])
}

func TestWrapExists(t *testing.T) {
	n := WrapExists("orders", "id == ?1")
	require.Equal(t, Exists, n.Kind)
	require.Equal(t, "orders", n.Table)
	require.Equal(t, "id == ?1", n.FilterText)
}

func TestNodeEqual(t *testing.T) {
	a := &Node{Kind: FullScan, Table: "orders", KeyColumns: []string{"id"}}
	b := &Node{Kind: FullScan, Table: "orders", KeyColumns: []string{"id"}}
	require.True(t, a.Equal(b))

	c := &Node{Kind: FullScan, Table: "customers", KeyColumns: []string{"id"}}
	require.False(t, a.Equal(c))

	require.False(t, a.Equal(nil))
	var nilNode *Node
	require.True(t, nilNode.Equal(nil))
}

func TestNodeEqualComparesLevels(t *testing.T) {
	a := &Node{Kind: NestedLoopsJoin, Levels: []Level{
		{Type: "INNER", Source: "orders", Assignments: map[int]string{1: "orders.id"}},
	}}
	b := &Node{Kind: NestedLoopsJoin, Levels: []Level{
		{Type: "INNER", Source: "orders", Assignments: map[int]string{1: "orders.id"}},
	}}
	require.True(t, a.Equal(b))

	c := &Node{Kind: NestedLoopsJoin, Levels: []Level{
		{Type: "INNER", Source: "customers", Assignments: map[int]string{1: "orders.id"}},
	}}
	require.False(t, a.Equal(c))
}

func TestStringPrintsNestedTree(t *testing.T) {
	n := WrapFilter(&Node{Kind: FullScan, Table: "orders", KeyColumns: []string{"id"}}, "id == ?1")
	s := n.String()
	require.Contains(t, s, "filter")
	require.Contains(t, s, "full scan orders")
	require.Contains(t, s, "id == ?1")
}

func TestKindStringFallback(t *testing.T) {
	require.Equal(t, "full scan", FullScan.String())
	require.Contains(t, Kind(999).String(), "kind(999)")
}
