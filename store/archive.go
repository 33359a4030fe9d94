// SPDX-License-Identifier: MIT

package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"provernet-core/types"
)

// Archive is the persistent record of settled assignments, keyed by
// block id. It replaces chain storage for this engine: a block id that
// appears here has had its assignment settled.
type Archive struct {
	db *badger.DB
}

// NewArchive opens the settlement archive under dataDir.
func NewArchive(dataDir string) (*Archive, error) {
	db, err := Open(dataDir, "settlements")
	if err != nil {
		return nil, err
	}
	return &Archive{db: db}, nil
}

// Close releases the underlying store.
func (a *Archive) Close() error {
	return a.db.Close()
}

func archiveKey(blockID uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, blockID)
	return key
}

// PutSettlement persists the settled-assignment record for a block.
func (a *Archive) PutSettlement(blockID uint64, ev *types.AssignmentSettledEvent) error {
	if ev == nil {
		return errors.New("nil settlement event")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(archiveKey(blockID), data)
	})
}

// DeleteSettlement removes the record for a block whose settlement was
// rolled back after the write.
func (a *Archive) DeleteSettlement(blockID uint64) error {
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(archiveKey(blockID))
	})
}

// GetSettlement loads the settled-assignment record for a block.
// Returns nil when the block has no settled assignment.
func (a *Archive) GetSettlement(blockID uint64) (*types.AssignmentSettledEvent, error) {
	var ev *types.AssignmentSettledEvent
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(archiveKey(blockID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decoded types.AssignmentSettledEvent
			if err := json.Unmarshal(val, &decoded); err != nil {
				return err
			}
			ev = &decoded
			return nil
		})
	})
	return ev, err
}
