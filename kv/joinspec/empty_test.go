package joinspec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvrowdb/joinengine/kv"
)

func col(name string, empty bool) *Column {
	rt := &fakeRowType{name: name, columns: []kv.ColumnInfo{{Name: "id", Type: kv.TypeInt64}}}
	return &Column{Name: name, Table: &fakeTable{rt: rt, empty: empty}}
}

func TestIsEmptyColumn(t *testing.T) {
	ctx := kv.NewContext(context.Background())

	empty, err := IsEmpty(ctx, nil, col("a", true))
	require.NoError(t, err)
	require.True(t, empty)

	empty, err = IsEmpty(ctx, nil, col("a", false))
	require.NoError(t, err)
	require.False(t, empty)
}

func TestIsEmptyInnerJoins(t *testing.T) {
	ctx := kv.NewContext(context.Background())

	group := &InnerJoins{Children: []Node{col("a", false), col("b", true), col("c", false)}}
	empty, err := IsEmpty(ctx, nil, group)
	require.NoError(t, err)
	require.True(t, empty, "any empty member makes the whole inner group empty")
}

func TestIsEmptyLeftOuterDependsOnlyOnLeft(t *testing.T) {
	ctx := kv.NewContext(context.Background())

	op := &JoinOp{Left: col("a", true), Right: col("b", false), Type: LeftOuter}
	empty, err := IsEmpty(ctx, nil, op)
	require.NoError(t, err)
	require.True(t, empty)

	op = &JoinOp{Left: col("a", false), Right: col("b", true), Type: LeftOuter}
	empty, err = IsEmpty(ctx, nil, op)
	require.NoError(t, err)
	require.False(t, empty, "LEFT OUTER never goes empty just because the right side is")
}

func TestIsEmptyLeftAnti(t *testing.T) {
	ctx := kv.NewContext(context.Background())

	// left-anti is empty if the left side is empty, or the right side is
	// non-empty (everything on the left gets excluded).
	op := &JoinOp{Left: col("a", false), Right: col("b", false), Type: LeftAnti}
	empty, err := IsEmpty(ctx, nil, op)
	require.NoError(t, err)
	require.True(t, empty)

	op = &JoinOp{Left: col("a", false), Right: col("b", true), Type: LeftAnti}
	empty, err = IsEmpty(ctx, nil, op)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestIsEmptyFullOuterAndFullAnti(t *testing.T) {
	ctx := kv.NewContext(context.Background())

	fullOuter := &FullJoin{Op: &JoinOp{Left: col("a", true), Right: col("b", true), Type: FullOuter}}
	empty, err := IsEmpty(ctx, nil, fullOuter)
	require.NoError(t, err)
	require.True(t, empty)

	fullOuter = &FullJoin{Op: &JoinOp{Left: col("a", true), Right: col("b", false), Type: FullOuter}}
	empty, err = IsEmpty(ctx, nil, fullOuter)
	require.NoError(t, err)
	require.False(t, empty, "FULL OUTER only empties when both sides are empty")

	fullAnti := &FullJoin{Op: &JoinOp{Left: col("a", true), Right: col("b", false), Type: FullAnti}}
	empty, err = IsEmpty(ctx, nil, fullAnti)
	require.NoError(t, err)
	require.False(t, empty, "FULL ANTI is non-empty when exactly one side has rows")
}
