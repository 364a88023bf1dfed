package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareValuesNullOrdering(t *testing.T) {
	c, err := CompareValues(nil, 1)
	require.NoError(t, err)
	require.Equal(t, 1, c)

	c, err = CompareValues(1, nil)
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = CompareValues(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, c)
}

func TestCompareValuesSignedUnsigned(t *testing.T) {
	c, err := CompareValues(int32(-1), uint32(1))
	require.NoError(t, err)
	require.Less(t, c, 0)

	c, err = CompareValues(uint64(5), int64(5))
	require.NoError(t, err)
	require.Equal(t, 0, c)
}

func TestCompareValuesStrings(t *testing.T) {
	c, err := CompareValues("abc", "abd")
	require.NoError(t, err)
	require.Equal(t, -1, c)
}

func TestCompareValuesFloats(t *testing.T) {
	c, err := CompareValues(float64(1.5), int(1))
	require.NoError(t, err)
	require.Equal(t, 1, c)
}

func TestCompareFloatsNaN(t *testing.T) {
	nan := float64(0)
	nan /= nan

	c, err := CompareFloats(nan, 1.0)
	require.NoError(t, err)
	require.Equal(t, 1, c, "NaN should sort above non-NaN")

	c, err = CompareFloats(nan, nan)
	require.NoError(t, err)
	require.Equal(t, 0, c, "NaN should equal NaN deterministically")
}

func TestFloatEqualCanonicalizesNegativeZero(t *testing.T) {
	eq, err := FloatEqual(-0.0, 0.0)
	require.NoError(t, err)
	require.True(t, eq)
}
