// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"math/big"
)

/*
   PROVERNET ASSIGNMENT MODEL
   - FeeToken zero address = native currency sentinel
   - MaxBlockID / MaxProposedIn zero = unbounded
   - MetaHash zero = unchecked
   - Fee lookup is first-match over the tier list
*/

// TierFee binds a service tier id to the fee charged for it.
type TierFee struct {
	Tier uint16   `json:"tier"`
	Fee  *big.Int `json:"fee"`
}

// Assignment is a prover's signed off-ledger commitment to prove a block
// under the listed tier fees, valid only within the bounds it carries.
type Assignment struct {
	FeeToken      Address   `json:"feeToken"` // zero = native currency
	Expiry        uint64    `json:"expiry"`   // unix seconds
	MaxBlockID    uint64    `json:"maxBlockId"`
	MaxProposedIn uint64    `json:"maxProposedIn"`
	MetaHash      Hash      `json:"metaHash"`
	TierFees      []TierFee `json:"tierFees"`
	Signature     []byte    `json:"signature"`
}

// SettlementRequest is what the block proposer submits alongside value:
// the signed assignment plus an optional tip for the fee recipient.
type SettlementRequest struct {
	Assignment Assignment `json:"assignment"`
	Tip        *big.Int   `json:"tip"`
}

// BlockContext carries the proposed-block inputs the assignment is
// checked against. Read-only to the engine.
type BlockContext struct {
	MetaHash       Hash     `json:"metaHash"`
	BlockID        uint64   `json:"blockId"`
	MinTier        uint16   `json:"minTier"`
	BlobHash       Hash     `json:"blobHash"`
	AssignedProver Address  `json:"assignedProver"`
	LivenessBond   *big.Int `json:"livenessBond"`
}

// UsesNativeCurrency reports whether the fee is paid in native currency.
func (a *Assignment) UsesNativeCurrency() bool {
	return a.FeeToken.IsZero()
}

// FindTierFee scans the tier list for the first entry matching tier.
// Duplicate tier ids are permitted; only the first is honored.
func (a *Assignment) FindTierFee(tier uint16) (*big.Int, bool) {
	for _, tf := range a.TierFees {
		if tf.Tier == tier {
			if tf.Fee == nil {
				return big.NewInt(0), true
			}
			return new(big.Int).Set(tf.Fee), true
		}
	}
	return nil, false
}

// ValidateBasic performs stateless structural checks.
func (a *Assignment) ValidateBasic() error {
	if a == nil {
		return errors.New("nil assignment")
	}
	if a.Expiry == 0 {
		return errors.New("assignment has no expiry")
	}
	// An empty tier list is structurally fine; the fee lookup surfaces
	// it as a missing tier.
	for _, tf := range a.TierFees {
		if tf.Fee != nil && tf.Fee.Sign() < 0 {
			return errors.New("negative tier fee")
		}
	}
	return nil
}

// ValidateBasic checks the request wrapper.
func (r *SettlementRequest) ValidateBasic() error {
	if r == nil {
		return errors.New("nil settlement request")
	}
	if r.Tip != nil && r.Tip.Sign() < 0 {
		return errors.New("negative tip")
	}
	return r.Assignment.ValidateBasic()
}

// TipAmount returns the tip, treating nil as zero.
func (r *SettlementRequest) TipAmount() *big.Int {
	if r.Tip == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(r.Tip)
}
