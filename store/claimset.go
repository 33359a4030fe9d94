// SPDX-License-Identifier: MIT

package store

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	"provernet-core/types"
)

var claimedValue = []byte{1}

// ClaimSet is the persistent set of consumed claim hashes. Absence of a
// key means Unclaimed; keys are written once and never deleted.
type ClaimSet struct {
	db *badger.DB
}

// NewClaimSet opens the claimed-set store under dataDir.
func NewClaimSet(dataDir string) (*ClaimSet, error) {
	db, err := Open(dataDir, "claimed")
	if err != nil {
		return nil, err
	}
	return &ClaimSet{db: db}, nil
}

// Close releases the underlying store.
func (s *ClaimSet) Close() error {
	return s.db.Close()
}

// Seen reports whether h has already been consumed.
func (s *ClaimSet) Seen(h types.Hash) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(h[:])
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// MarkWith marks h claimed and runs fn inside the same transaction.
// If fn fails, or if h turns out to be already claimed, nothing is
// persisted: the mark and fn's acceptance stand or fall together.
// fn's own side effects are outside the transaction: if the commit
// fails after fn succeeded, the caller sees an error with fn's effects
// applied and must compensate.
func (s *ClaimSet) MarkWith(h types.Hash, fn func() error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(h[:])
		if err == nil {
			return errors.New("hash already claimed")
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(h[:], claimedValue); err != nil {
			return err
		}
		return fn()
	})
}
