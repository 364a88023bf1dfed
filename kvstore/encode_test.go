package kvstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvrowdb/joinengine/kv"
)

func TestEncodeDecodeRowRoundTrip(t *testing.T) {
	row := kv.Row{int64(7), "alice", true, nil}
	data, err := encodeRow(row)
	require.NoError(t, err)

	out, err := decodeRow(data)
	require.NoError(t, err)
	require.Equal(t, kv.Row{int64(7), "alice", true, nil}, out)
}

func TestEncodeKeyDeterministic(t *testing.T) {
	a, err := encodeKey([]interface{}{int64(1), "x"})
	require.NoError(t, err)
	b, err := encodeKey([]interface{}{int64(1), "x"})
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := encodeKey([]interface{}{int64(2), "x"})
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}
