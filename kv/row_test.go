package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinRowGetSetIndex(t *testing.T) {
	jr := NewJoinRow([]string{"a", "b"})
	require.Equal(t, 0, jr.Index("a"))
	require.Equal(t, 1, jr.Index("b"))
	require.Equal(t, -1, jr.Index("c"))

	jr.Set("a", Row{1, 2})
	require.Equal(t, Row{1, 2}, jr.Get("a"))
	require.Nil(t, jr.Get("b"))

	jr.Set("c", Row{9})
	require.Nil(t, jr.Get("c"), "Set on an unknown name is a no-op")
}

func TestJoinRowCloneIsIndependent(t *testing.T) {
	jr := NewJoinRow([]string{"a"})
	jr.Set("a", Row{1, 2})

	cp := jr.Clone()
	cp.Get("a")[0] = 99

	require.Equal(t, 1, jr.Get("a")[0], "mutating the clone must not affect the original")
}

func TestJoinRowFlattenPadsNullSlots(t *testing.T) {
	jr := NewJoinRow([]string{"a", "b"})
	jr.Set("a", Row{1, 2})

	out := jr.Flatten(map[string]int{"a": 2, "b": 3})
	require.Equal(t, Row{1, 2, nil, nil, nil}, out)
}

func TestRowCloneNil(t *testing.T) {
	var r Row
	require.Nil(t, r.Clone())
}
