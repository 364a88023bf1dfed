package kvstore

import "gopkg.in/src-d/go-errors.v1"

// ErrBadTransaction is raised when a caller hands a kv.Transaction value
// that didn't originate from this package's Store.Begin.
var ErrBadTransaction = errors.NewKind("kvstore: not a kvstore transaction: %T")

func errTransactionType(txn interface{}) error {
	return ErrBadTransaction.New(txn)
}
