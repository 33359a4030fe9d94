// SPDX-License-Identifier: MIT

package settlement

import (
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"provernet-core/types"
)

// Receipt describes the result of a settled assignment.
type Receipt struct {
	Prover  types.Address `json:"prover"`
	BlockID uint64        `json:"blockId"`
	Fee     *big.Int      `json:"fee"`
	Tip     *big.Int      `json:"tip"`
	Refund  *big.Int      `json:"refund"`
	Bond    *big.Int      `json:"bond"`
}

// Archiver persists the settled-assignment record. Optional; a nil
// archiver skips persistence. DeleteSettlement undoes a record whose
// settlement failed after the write.
type Archiver interface {
	PutSettlement(blockID uint64, ev *types.AssignmentSettledEvent) error
	DeleteSettlement(blockID uint64) error
}

// EngineParams configures a settlement engine.
type EngineParams struct {
	// SelfAddress is the verifying engine address bound into every
	// commitment hash. Signatures do not transfer between engines.
	SelfAddress types.Address

	// TrustedProposer is the only caller allowed to submit settlements.
	TrustedProposer types.Address

	// TipRecipient receives native tips. A zero recipient burns them.
	TipRecipient types.Address

	// ForwardBudget bounds recipient hooks run during fee forwarding.
	ForwardBudget uint64
}

// Engine verifies prover assignments and settles their fees atomically
// against the native ledger and any configured fee tokens.
type Engine struct {
	params      EngineParams
	state       *types.StateDB
	tokens      map[types.Address]types.Token // injected typed refs, no name registry
	authorities *types.AuthorityRegistry
	forwarder   *BoundedForwarder
	sink        types.EventSink
	archive     Archiver

	// entered guards against reentrant invocation while an external
	// transfer may hand control to untrusted code.
	entered atomic.Bool
}

// NewEngine wires a settlement engine. tokens maps fee-token addresses
// to their transfer capability; sink and archive may be nil.
func NewEngine(
	params EngineParams,
	state *types.StateDB,
	tokens map[types.Address]types.Token,
	authorities *types.AuthorityRegistry,
	sink types.EventSink,
	archive Archiver,
) *Engine {
	if tokens == nil {
		tokens = make(map[types.Address]types.Token)
	}
	if authorities == nil {
		authorities = types.NewAuthorityRegistry()
	}
	return &Engine{
		params:      params,
		state:       state,
		tokens:      tokens,
		authorities: authorities,
		forwarder:   NewBoundedForwarder(params.ForwardBudget),
		sink:        sink,
		archive:     archive,
	}
}

// Forwarder exposes the bounded forwarder for hook registration.
func (e *Engine) Forwarder() *BoundedForwarder {
	return e.forwarder
}

// Authorities exposes the signer capability registry.
func (e *Engine) Authorities() *types.AuthorityRegistry {
	return e.authorities
}

// RegisterToken injects a fee-token capability at configuration time.
func (e *Engine) RegisterToken(addr types.Address, tok types.Token) {
	e.tokens[addr] = tok
}

// ComputeCommitmentHash is the pure hash provers sign off-ledger.
func (e *Engine) ComputeCommitmentHash(a *types.Assignment, blobHash types.Hash) types.Hash {
	return types.ComputeCommitmentHash(a, e.params.SelfAddress, blobHash)
}

// OnAssignmentSettlement is the trusted entrypoint: it checks caller
// identity, decodes the proposer's input and runs the settlement. The
// caller is also the payer; nativeValue is the native currency sent
// along with the call.
func (e *Engine) OnAssignmentSettlement(
	caller types.Address,
	bc *types.BlockContext,
	encodedInput []byte,
	nativeValue *big.Int,
	now uint64,
	blockNumber uint64,
) (*Receipt, error) {
	if caller != e.params.TrustedProposer {
		return nil, ErrUntrustedCaller
	}

	req, err := types.DecodeSettlementRequest(encodedInput)
	if err != nil {
		return nil, fmt.Errorf("malformed settlement input: %w", err)
	}

	return e.Settle(req, bc, caller, nativeValue, now, blockNumber)
}

// Settle runs validation, signature verification and the value
// transfers for one assignment. All effects commit together or not at
// all: any failure reverts the state snapshot taken at entry.
func (e *Engine) Settle(
	req *types.SettlementRequest,
	bc *types.BlockContext,
	payer types.Address,
	nativeValue *big.Int,
	now uint64,
	blockNumber uint64,
) (*Receipt, error) {
	if !e.entered.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer e.entered.Store(false)

	if err := req.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssignmentInvalid, err)
	}
	if bc == nil {
		return nil, ErrAssignmentInvalid
	}
	if nativeValue == nil {
		nativeValue = big.NewInt(0)
	}
	if nativeValue.Sign() < 0 {
		return nil, errors.New("negative native value")
	}

	a := &req.Assignment

	// Every validity check passes before any value transfer starts.
	if err := Validate(a, bc, now, blockNumber); err != nil {
		return nil, err
	}
	if err := VerifySignature(a, e.params.SelfAddress, bc.BlobHash, bc.AssignedProver, e.authorities); err != nil {
		return nil, err
	}

	snap := e.state.Snapshot()
	receipt, pullFee, err := e.execute(a, bc, payer, nativeValue, req.TipAmount())
	if err != nil {
		e.state.RevertToSnapshot(snap)
		return nil, err
	}

	ev := &types.AssignmentSettledEvent{
		Prover:     bc.AssignedProver,
		MetaHash:   bc.MetaHash,
		BlockID:    bc.BlockID,
		Assignment: *a,
	}
	if e.archive != nil {
		if err := e.archive.PutSettlement(bc.BlockID, ev); err != nil {
			e.state.RevertToSnapshot(snap)
			return nil, fmt.Errorf("archive write failed: %w", err)
		}
	}

	// The token fee pull runs last: it is the one effect the state
	// snapshot cannot revert, so nothing fallible may follow it.
	if pullFee != nil {
		if err := pullFee(); err != nil {
			e.state.RevertToSnapshot(snap)
			if e.archive != nil {
				_ = e.archive.DeleteSettlement(bc.BlockID)
			}
			return nil, err
		}
	}

	e.state.CommitSnapshot(snap)

	if e.sink != nil {
		e.sink.Emit(types.Event{Kind: types.EventAssignmentSettled, Settlement: ev})
	}

	return receipt, nil
}

// execute performs the transfer sequence. The caller holds the
// reentrancy flag and the state snapshot. A token-priced fee is not
// pulled here: the returned closure defers it past the archive write,
// because the snapshot cannot revert a token transfer.
func (e *Engine) execute(
	a *types.Assignment,
	bc *types.BlockContext,
	payer types.Address,
	nativeValue *big.Int,
	tip *big.Int,
) (*Receipt, func() error, error) {
	prover := bc.AssignedProver

	// 1. Liveness bond: prover pays the party that advanced the block.
	bond := bc.LivenessBond
	if bond == nil {
		bond = big.NewInt(0)
	}
	if bond.Sign() > 0 {
		if err := e.state.Transfer(prover, payer, bond); err != nil {
			return nil, nil, fmt.Errorf("bond transfer failed: %w", err)
		}
	}

	// 2. First-match fee lookup over the tier list.
	fee, ok := a.FindTierFee(bc.MinTier)
	if !ok {
		return nil, nil, ErrTierNotFound
	}

	// Escrow the caller-provided native value before splitting it.
	if nativeValue.Sign() > 0 {
		if err := e.state.SubBalance(payer, nativeValue); err != nil {
			return nil, nil, fmt.Errorf("payer cannot cover provided value: %w", err)
		}
	}

	var pullFee func() error
	refund := new(big.Int)
	if a.UsesNativeCurrency() {
		// 3. Native fee: provided must cover fee + tip; the remainder
		// is refunded exactly.
		need := new(big.Int).Add(fee, tip)
		if nativeValue.Cmp(need) < 0 {
			return nil, nil, ErrInsufficientFee
		}
		refund.Sub(nativeValue, need)

		if err := e.forwarder.Forward(e.state, payer, prover, fee); err != nil {
			return nil, nil, err
		}
	} else {
		// 4. Token fee: provided native value only needs to cover the
		// tip; the fee is pulled through the token's interface.
		if nativeValue.Cmp(tip) < 0 {
			return nil, nil, ErrInsufficientFee
		}
		refund.Sub(nativeValue, tip)

		tok, ok := e.tokens[a.FeeToken]
		if !ok {
			return nil, nil, ErrUnknownFeeToken
		}
		pullFee = func() error {
			if err := tok.TransferFrom(payer, prover, fee); err != nil {
				return fmt.Errorf("token fee transfer failed: %w", err)
			}
			return nil
		}
	}

	// 5. Tip to the designated recipient; a zero recipient burns it.
	if tip.Sign() > 0 {
		if err := e.state.AddBalance(e.params.TipRecipient, tip); err != nil {
			return nil, nil, err
		}
	}

	// 6. Exact remainder back to the payer.
	if refund.Sign() > 0 {
		if err := e.state.AddBalance(payer, refund); err != nil {
			return nil, nil, err
		}
	}

	return &Receipt{
		Prover:  prover,
		BlockID: bc.BlockID,
		Fee:     fee,
		Tip:     tip,
		Refund:  refund,
		Bond:    new(big.Int).Set(bond),
	}, pullFee, nil
}
