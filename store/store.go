// SPDX-License-Identifier: MIT

// Package store provides the badger-backed persistent stores: the
// airdrop claimed-set and the settled-assignment archive.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
)

// Open opens (creating if needed) a named key-value store under
// dataDir/store/<name>.
func Open(dataDir, name string) (*badger.DB, error) {
	dir := filepath.Join(dataDir, "store", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create store dir %s: %w", dir, err)
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithSyncWrites(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cannot open store %s: %w", name, err)
	}
	return db, nil
}
