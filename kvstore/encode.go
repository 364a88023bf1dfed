package kvstore

import (
	msgpack "gopkg.in/vmihailenco/msgpack.v2"

	"github.com/kvrowdb/joinengine/kv"
)

// encodeRow serializes a row's columns as a msgpack array, so a bucket's
// values round-trip through the same loosely-typed interface{} domain the
// predicate evaluator operates on.
func encodeRow(row kv.Row) ([]byte, error) {
	return msgpack.Marshal([]interface{}(row))
}

func decodeRow(data []byte) (kv.Row, error) {
	var vals []interface{}
	if err := msgpack.Unmarshal(data, &vals); err != nil {
		return nil, err
	}
	return normalizeRow(vals), nil
}

// normalizeRow widens msgpack's decoded integer/float kinds back toward the
// ones CompareValues expects to see (msgpack.v2 decodes every signed
// integer as int64 and every float as float64 already, but map/slice-typed
// columns come back as []interface{}/map[interface{}]interface{} that are
// passed through unchanged since this row type's columns are all scalar).
func normalizeRow(vals []interface{}) kv.Row {
	return kv.Row(vals)
}

// encodeKey serializes a row's key-column values (in KeyColumns order) into
// the bytes used as the bucket key.
func encodeKey(key []interface{}) ([]byte, error) {
	return msgpack.Marshal(key)
}
