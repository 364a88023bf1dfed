package kvstore

import (
	"github.com/boltdb/bolt"

	"github.com/kvrowdb/joinengine/kv"
	"github.com/kvrowdb/joinengine/kv/filter"
	"github.com/kvrowdb/joinengine/kv/queryplan"
)

// Table is the bucket-backed kv.Table implementation. Rows are stored
// msgpack-encoded, keyed by rt's declared primary key columns when it has
// one, or by an auto-incrementing bucket sequence otherwise.
type Table struct {
	store  *Store
	bucket []byte
	rt     kv.RowType
}

func (t *Table) Name() string      { return string(t.bucket) }
func (t *Table) RowType() kv.RowType { return t.rt }

// Put writes row under key (in rt.KeyColumns order), or appends it under a
// fresh sequence number when key is empty. txn must be a writable
// transaction from Store.Begin.
func (t *Table) Put(txn *Txn, key []interface{}, row kv.Row) error {
	b := txn.tx.Bucket(t.bucket)
	k, err := t.rowKey(b, key)
	if err != nil {
		return err
	}
	v, err := encodeRow(row)
	if err != nil {
		return err
	}
	return b.Put(k, v)
}

// Delete removes the row stored under key.
func (t *Table) Delete(txn *Txn, key []interface{}) error {
	b := txn.tx.Bucket(t.bucket)
	k, err := encodeKey(key)
	if err != nil {
		return err
	}
	return b.Delete(k)
}

func (t *Table) rowKey(b *bolt.Bucket, key []interface{}) ([]byte, error) {
	if len(key) == 0 {
		seq, err := b.NextSequence()
		if err != nil {
			return nil, err
		}
		return encodeKey([]interface{}{seq})
	}
	return encodeKey(key)
}

// NewScanner opens a streaming scan over the bucket, filtered client-side
// by filterText (parsed against rt's bare column names, per the scanner
// driver's column-relative filter text contract). row is accepted for
// interface parity with kv.Table but unused: this implementation restarts
// every scan from its own cursor position rather than seeding from a
// caller-supplied row.
func (t *Table) NewScanner(ctx *kv.Context, txn kv.Transaction, row kv.Row, filterText string, args []interface{}) (kv.Scanner, error) {
	tx, err := asTxn(txn)
	if err != nil {
		return nil, err
	}
	f, err := parseFilterText(filterText, t.rt)
	if err != nil {
		return nil, err
	}
	b := tx.Bucket(t.bucket)
	return &scanner{bucket: b, rt: t.rt, filter: f, args: args}, nil
}

// AnyRows reports whether at least one row of the bucket matches
// filterText, stopping at the first match instead of scanning to exhaustion.
func (t *Table) AnyRows(ctx *kv.Context, txn kv.Transaction, filterText string, args []interface{}) (bool, error) {
	s, err := t.NewScanner(ctx, txn, nil, filterText, args)
	if err != nil {
		return false, err
	}
	defer s.Close(ctx)
	row, err := s.Step(ctx, nil)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// IsEmpty reports whether the bucket currently holds zero keys.
func (t *Table) IsEmpty(ctx *kv.Context, txn kv.Transaction) (bool, error) {
	tx, err := asTxn(txn)
	if err != nil {
		return false, err
	}
	b := tx.Bucket(t.bucket)
	k, _ := b.Cursor().First()
	return k == nil, nil
}

// ScannerPlan describes what NewScanner would do for filterText: a full
// bucket scan, wrapped in a Filter node when the text isn't trivially true.
func (t *Table) ScannerPlan(ctx *kv.Context, txn kv.Transaction, filterText string, args []interface{}) (*queryplan.Node, error) {
	base := &queryplan.Node{Kind: queryplan.FullScan, Table: t.Name(), KeyColumns: t.rt.KeyColumns()}
	if filterText == filter.True.String() {
		return base, nil
	}
	return queryplan.WrapFilter(base, filterText), nil
}

func parseFilterText(text string, rt kv.RowType) (filter.Filter, error) {
	if text == "" {
		return filter.True, nil
	}
	cols := make(map[string]struct{}, len(rt.Columns()))
	for _, c := range rt.Columns() {
		cols[c.Name] = struct{}{}
	}
	return filter.Parse(text, cols)
}
