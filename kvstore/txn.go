package kvstore

import "github.com/boltdb/bolt"

// Txn is the concrete kv.Transaction this package hands the join
// subsystem: a single bolt transaction, opened and closed entirely outside
// the scanner driver's control, as kv.Transaction's contract requires.
type Txn struct {
	tx *bolt.Tx
}

// Begin opens a transaction against the store. writable transactions block
// all other writers (bolt's usual single-writer rule); read-only
// transactions may run concurrently with each other and with a writer.
func (s *Store) Begin(writable bool) (*Txn, error) {
	tx, err := s.db.Begin(writable)
	if err != nil {
		return nil, err
	}
	return &Txn{tx: tx}, nil
}

// Commit commits a writable transaction.
func (t *Txn) Commit() error {
	return t.tx.Commit()
}

// Rollback discards the transaction. Safe to call on a read-only
// transaction to release it once a scan is done.
func (t *Txn) Rollback() error {
	return t.tx.Rollback()
}

func asTxn(txn interface{}) (*bolt.Tx, error) {
	t, ok := txn.(*Txn)
	if !ok {
		return nil, errTransactionType(txn)
	}
	return t.tx, nil
}
