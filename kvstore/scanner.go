package kvstore

import (
	"github.com/boltdb/bolt"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
	"github.com/kvrowdb/joinengine/kv/rowexec"
)

// scanner is a cursor-backed kv.Scanner over one bucket, filtering rows
// client-side since bolt itself understands nothing but byte-ordered keys.
type scanner struct {
	bucket  *bolt.Bucket
	cursor  *bolt.Cursor
	rt      kv.RowType
	filter  filter.Filter
	args    []interface{}

	started bool
	current kv.Row
}

// Step advances past current (ignored: bolt's cursor already tracks its
// own position) and returns the next row matching the scanner's filter, or
// (nil, nil) at end of bucket.
func (s *scanner) Step(ctx *kv.Context, current kv.Row) (kv.Row, error) {
	if s.cursor == nil {
		s.cursor = s.bucket.Cursor()
	}

	var k, v []byte
	if !s.started {
		k, v = s.cursor.First()
		s.started = true
	} else {
		k, v = s.cursor.Next()
	}

	for k != nil {
		row, err := decodeRow(v)
		if err != nil {
			return nil, err
		}
		ok, err := rowexec.EvalFlat(s.filter, row, s.rt, s.args)
		if err != nil {
			return nil, err
		}
		if ok {
			s.current = row
			return row, nil
		}
		k, v = s.cursor.Next()
	}

	s.current = nil
	return nil, nil
}

// Row returns the scanner's current row without advancing.
func (s *scanner) Row() kv.Row { return s.current }

// Close is a no-op: the cursor holds no resources beyond the transaction
// it was carved from, and that transaction's lifecycle belongs to whoever
// called Store.Begin.
func (s *scanner) Close(ctx *kv.Context) error { return nil }
