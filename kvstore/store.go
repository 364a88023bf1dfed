// Package kvstore is a bbolt-backed implementation of kv.Table: the one
// concrete storage collaborator the join execution subsystem is specified
// against, backing each leaf source with its own bucket in a single bolt
// database file.
package kvstore

import (
	"github.com/boltdb/bolt"

	"github.com/kvrowdb/joinengine/kv"
)

// Store owns one bolt database file and hands out Tables backed by its
// buckets. Safe for concurrent use; bolt itself serializes writers and
// allows concurrent readers.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bolt database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Table opens (creating if necessary) the named bucket and returns a
// kv.Table bound to rt. rt's declared KeyColumns, if any, become the row
// key; rows of a keyless row type are keyed by an auto-incrementing bucket
// sequence instead.
func (s *Store) Table(name string, rt kv.RowType) (*Table, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Table{store: s, bucket: []byte(name), rt: rt}, nil
}
