// SPDX-License-Identifier: MIT

package core

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"provernet-core/types"
)

type GenesisAccount struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type GenesisTokenBalance struct {
	Address   string `json:"address"`
	Balance   string `json:"balance"`
	Allowance string `json:"allowance"` // granted to the engine-side puller, may be empty
	Spender   string `json:"spender"`
}

type Genesis struct {
	Alloc       []GenesisAccount      `json:"alloc"`
	TokenAlloc  []GenesisTokenBalance `json:"token_alloc"`
	AirdropRoot string                `json:"airdrop_root"`
}

func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open genesis file: %w", err)
	}
	var g Genesis
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("invalid genesis json: %w", err)
	}
	return &g, nil
}

// ApplyGenesis boots initial balances and allowances from genesis.json.
// Returns the bootstrap airdrop root (zero hash when unset).
func ApplyGenesis(state *types.StateDB, token *types.LedgerToken, g *Genesis) (types.Hash, error) {
	// 1. Alloc - premint native supply
	for _, acc := range g.Alloc {
		addr, err := types.ParseAddress(acc.Address)
		if err != nil {
			return types.Hash{}, fmt.Errorf("bad genesis account %s: %w", acc.Address, err)
		}
		amount, ok := new(big.Int).SetString(acc.Balance, 10)
		if !ok {
			return types.Hash{}, fmt.Errorf("non-numeric balance for %s", acc.Address)
		}
		if amount.Sign() < 0 {
			return types.Hash{}, fmt.Errorf("negative genesis balance for %s", acc.Address)
		}
		if err := state.Mint(addr, amount); err != nil {
			return types.Hash{}, fmt.Errorf("mint failed %s: %w", acc.Address, err)
		}
	}

	// 2. Token alloc - balances plus optional pull allowances
	for _, tb := range g.TokenAlloc {
		if token == nil {
			return types.Hash{}, fmt.Errorf("token_alloc present but no token configured")
		}
		addr, err := types.ParseAddress(tb.Address)
		if err != nil {
			return types.Hash{}, fmt.Errorf("bad token account %s: %w", tb.Address, err)
		}
		amount, ok := new(big.Int).SetString(tb.Balance, 10)
		if !ok || amount.Sign() < 0 {
			return types.Hash{}, fmt.Errorf("invalid token balance for %s", tb.Address)
		}
		if err := token.Mint(addr, amount); err != nil {
			return types.Hash{}, fmt.Errorf("token mint failed %s: %w", tb.Address, err)
		}

		if tb.Allowance != "" {
			spender, err := types.ParseAddress(tb.Spender)
			if err != nil {
				return types.Hash{}, fmt.Errorf("bad spender for %s: %w", tb.Address, err)
			}
			allowed, ok := new(big.Int).SetString(tb.Allowance, 10)
			if !ok || allowed.Sign() < 0 {
				return types.Hash{}, fmt.Errorf("invalid allowance for %s", tb.Address)
			}
			if err := token.Approve(addr, spender, allowed); err != nil {
				return types.Hash{}, fmt.Errorf("approve failed %s: %w", tb.Address, err)
			}
		}
	}

	// 3. Bootstrap airdrop root
	if g.AirdropRoot == "" {
		return types.ZeroHash(), nil
	}
	root, err := types.ParseHash(g.AirdropRoot)
	if err != nil {
		return types.Hash{}, fmt.Errorf("invalid airdrop_root: %w", err)
	}
	return root, nil
}
