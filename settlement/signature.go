// SPDX-License-Identifier: MIT

package settlement

import (
	"fmt"

	"provernet-core/types"
)

// VerifySignature recomputes the domain-separated commitment hash and
// checks that the assignment's signature is a valid authorization by
// signer. The signer capability is polymorphic: a registered program
// authority is consulted if one exists, otherwise plain key recovery.
func VerifySignature(
	a *types.Assignment,
	verifying types.Address,
	blobHash types.Hash,
	signer types.Address,
	registry *types.AuthorityRegistry,
) error {
	if a == nil {
		return ErrInvalidSignature
	}

	h := types.ComputeCommitmentHash(a, verifying, blobHash)

	auth := registry.Resolve(signer)
	if err := auth.Authorize(h, a.Signature); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
