// SPDX-License-Identifier: MIT

package claim

import (
	"errors"
	"math/big"

	"provernet-core/types"
)

// NativePayout credits claimed amounts in native currency, drawn from a
// funded treasury account.
type NativePayout struct {
	State    *types.StateDB
	Treasury types.Address
}

func (n *NativePayout) Execute(p *Payload) error {
	if n.State == nil {
		return errors.New("native payout has no ledger")
	}
	amount := p.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() == 0 {
		return nil
	}
	return n.State.Transfer(n.Treasury, p.Recipient, amount)
}

// Revert returns a paid-out amount to the treasury when the claim mark
// failed to persist after execution.
func (n *NativePayout) Revert(p *Payload) error {
	if n.State == nil {
		return errors.New("native payout has no ledger")
	}
	amount := p.Amount
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	return n.State.Transfer(p.Recipient, n.Treasury, amount)
}

// TokenPayout pulls claimed amounts from a token treasury through the
// token's pull-transfer interface.
type TokenPayout struct {
	Token    types.Token
	Treasury types.Address
}

func (t *TokenPayout) Execute(p *Payload) error {
	if t.Token == nil {
		return errors.New("token payout has no token")
	}
	amount := p.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() == 0 {
		return nil
	}
	return t.Token.TransferFrom(t.Treasury, p.Recipient, amount)
}
