package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCNFOfPlainAndIsUnchanged(t *testing.T) {
	a := ColumnToArg{Column: "a", Op: Eq, Arg: 1}
	b := ColumnToArg{Column: "b", Op: Eq, Arg: 2}
	f, err := CNF(And2(a, b))
	require.NoError(t, err)
	require.Equal(t, And2(a, b), f)
}

func TestCNFDistributesOrOverAnd(t *testing.T) {
	a := ColumnToArg{Column: "a", Op: Eq, Arg: 1}
	b := ColumnToArg{Column: "b", Op: Eq, Arg: 2}
	c := ColumnToArg{Column: "c", Op: Eq, Arg: 3}

	// (a AND b) OR c  ==  (a OR c) AND (b OR c)
	f, err := CNF(Or2(And2(a, b), c))
	require.NoError(t, err)

	and, ok := f.(And)
	require.True(t, ok)
	require.Len(t, and.Children, 2)
	for _, clause := range and.Children {
		or, ok := clause.(Or)
		require.True(t, ok)
		require.Contains(t, or.Children, c)
	}
}

func TestCNFGivesUpOnExplosiveDistribution(t *testing.T) {
	// An OR of N two-leaf ANDs distributes into a cross product of 2^N
	// clauses; with N large enough that exceeds maxCNFClauses.
	var children []Filter
	for i := 0; i < 16; i++ {
		children = append(children, And2(
			ColumnToArg{Column: "a", Op: Eq, Arg: i*2 + 1},
			ColumnToArg{Column: "b", Op: Eq, Arg: i*2 + 2},
		))
	}
	_, err := CNF(Or2(children...))
	require.ErrorIs(t, err, ErrComplex)
}
