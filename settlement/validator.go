// SPDX-License-Identifier: MIT

package settlement

import (
	"provernet-core/types"
)

// Validate checks the structural and temporal validity of an assignment
// against the current block context. All four conditions surface as the
// single ErrAssignmentInvalid kind; no partial diagnostics, no side
// effects.
func Validate(a *types.Assignment, bc *types.BlockContext, now uint64, blockNumber uint64) error {
	if a == nil || bc == nil {
		return ErrAssignmentInvalid
	}
	if now > a.Expiry {
		return ErrAssignmentInvalid
	}
	if !a.MetaHash.IsZero() && a.MetaHash != bc.MetaHash {
		return ErrAssignmentInvalid
	}
	if a.MaxBlockID != 0 && bc.BlockID > a.MaxBlockID {
		return ErrAssignmentInvalid
	}
	if a.MaxProposedIn != 0 && blockNumber > a.MaxProposedIn {
		return ErrAssignmentInvalid
	}
	return nil
}
