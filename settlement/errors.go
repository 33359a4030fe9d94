// SPDX-License-Identifier: MIT

package settlement

import "errors"

// Failure kinds. Each one is fatal to the enclosing call; the engine
// reverts every effect of the call before returning it.
var (
	// ErrAssignmentInvalid covers expiry, metadata-hash, block-id and
	// proposed-in violations as one aggregated kind.
	ErrAssignmentInvalid = errors.New("assignment expired or invalid")

	// ErrInvalidSignature means the commitment hash was not authorized
	// by the assigned prover.
	ErrInvalidSignature = errors.New("invalid assignment signature")

	// ErrInsufficientFee means the native value sent with the call does
	// not cover fee plus tip (native fee) or tip (token fee).
	ErrInsufficientFee = errors.New("insufficient fee")

	// ErrTierNotFound means no tier-list entry matches the block's
	// minimum required tier.
	ErrTierNotFound = errors.New("tier not found")

	// ErrUnknownFeeToken means the assignment references a token the
	// engine was not configured with.
	ErrUnknownFeeToken = errors.New("unknown fee token")

	// ErrUntrustedCaller means someone other than the configured block
	// proposer invoked the settlement entrypoint.
	ErrUntrustedCaller = errors.New("caller is not the trusted proposer")

	// ErrReentrantCall means an external recipient tried to re-enter
	// the engine during an in-flight settlement.
	ErrReentrantCall = errors.New("reentrant settlement call")
)
