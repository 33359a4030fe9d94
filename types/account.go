// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"math/big"
)

// Account represents a single native-currency account.
type Account struct {
	Address Address  `json:"address"`
	Balance *big.Int `json:"balance"`
	Nonce   uint64   `json:"nonce"`
}

// NewAccount initializes a zeroed account for a given address.
func NewAccount(addr Address) *Account {
	return &Account{
		Address: addr,
		Balance: big.NewInt(0),
		Nonce:   0,
	}
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	if a == nil {
		return nil
	}

	balCopy := big.NewInt(0)
	if a.Balance != nil {
		balCopy.Set(a.Balance)
	}

	return &Account{
		Address: a.Address,
		Balance: balCopy,
		Nonce:   a.Nonce,
	}
}

func (a *Account) AddBalance(amount *big.Int) error {
	if a == nil {
		return errors.New("nil account")
	}
	if amount == nil || amount.Sign() < 0 {
		return errors.New("amount must be non-negative")
	}
	a.Balance.Add(a.Balance, amount)
	return nil
}

func (a *Account) SubBalance(amount *big.Int) error {
	if a == nil {
		return errors.New("nil account")
	}
	if amount == nil || amount.Sign() < 0 {
		return errors.New("amount must be non-negative")
	}
	if a.Balance.Cmp(amount) < 0 {
		return errors.New("insufficient balance")
	}
	a.Balance.Sub(a.Balance, amount)
	return nil
}

func (a *Account) IncrementNonce() error {
	if a == nil {
		return errors.New("nil account")
	}
	a.Nonce++
	return nil
}
