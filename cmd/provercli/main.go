// SPDX-License-Identifier: MIT

// provercli is the off-ledger companion tool: key generation,
// assignment signing, and airdrop tree construction.
package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"provernet-core/claim"
	"provernet-core/merkle"
	"provernet-core/types"
)

var (
	flagKey    string
	flagEngine string
	flagBlob   string
	flagLeaf   string
)

func main() {
	root := &cobra.Command{
		Use:   "provercli",
		Short: "Prover-side tooling for assignment signing and airdrop proofs",
	}

	keygen := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new prover keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := types.NewWallet()
			if err != nil {
				return err
			}
			privHex, err := types.PrivateKeyToHex(wallet.PrivateKey)
			if err != nil {
				return err
			}
			fmt.Println("address:", wallet.Address.String())
			fmt.Println("private:", privHex)
			return nil
		},
	}

	hash := &cobra.Command{
		Use:   "hash <assignment.json>",
		Short: "Compute the commitment hash for an assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, engine, blob, err := loadSigningInputs(args[0])
			if err != nil {
				return err
			}
			h := types.ComputeCommitmentHash(a, engine, blob)
			fmt.Println(h.String())
			return nil
		},
	}
	hash.Flags().StringVar(&flagEngine, "engine", "", "verifying engine address")
	hash.Flags().StringVar(&flagBlob, "blob", "", "content blob hash")

	sign := &cobra.Command{
		Use:   "sign <assignment.json>",
		Short: "Sign an assignment and print the signed record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagKey == "" {
				return fmt.Errorf("--key is required")
			}
			priv, err := types.PrivateKeyFromHex(flagKey)
			if err != nil {
				return err
			}
			a, engine, blob, err := loadSigningInputs(args[0])
			if err != nil {
				return err
			}
			if err := types.SignAssignment(a, engine, blob, priv); err != nil {
				return err
			}
			out, err := json.MarshalIndent(a, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	sign.Flags().StringVar(&flagKey, "key", "", "hex-encoded prover private key")
	sign.Flags().StringVar(&flagEngine, "engine", "", "verifying engine address")
	sign.Flags().StringVar(&flagBlob, "blob", "", "content blob hash")

	airdropRoot := &cobra.Command{
		Use:   "root <snapshot.json>",
		Short: "Build the airdrop merkle root from a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, _, err := loadSnapshotTree(args[0])
			if err != nil {
				return err
			}
			fmt.Println(tree.Root().String())
			return nil
		},
	}

	airdropProof := &cobra.Command{
		Use:   "proof <snapshot.json>",
		Short: "Generate the membership proof for one snapshot entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagLeaf == "" {
				return fmt.Errorf("--recipient is required")
			}
			tree, payloads, err := loadSnapshotTree(args[0])
			if err != nil {
				return err
			}
			recipient, err := types.ParseAddress(flagLeaf)
			if err != nil {
				return err
			}
			for _, p := range payloads {
				if p.Recipient != recipient {
					continue
				}
				proof, ok := tree.Prove(p.LeafHash())
				if !ok {
					return fmt.Errorf("leaf missing from tree")
				}
				out := make([]string, 0, len(proof))
				for _, h := range proof {
					out = append(out, h.String())
				}
				encoded, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(encoded))
				return nil
			}
			return fmt.Errorf("recipient %s not in snapshot", recipient)
		},
	}
	airdropProof.Flags().StringVar(&flagLeaf, "recipient", "", "recipient address to prove")

	root.AddCommand(keygen, hash, sign, airdropRoot, airdropProof)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadSigningInputs(path string) (*types.Assignment, types.Address, types.Hash, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, types.Address{}, types.Hash{}, err
	}
	var a types.Assignment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, types.Address{}, types.Hash{}, fmt.Errorf("invalid assignment json: %w", err)
	}

	engine, err := types.ParseAddress(flagEngine)
	if err != nil {
		return nil, types.Address{}, types.Hash{}, fmt.Errorf("invalid --engine: %w", err)
	}
	blob, err := types.ParseHash(flagBlob)
	if err != nil {
		return nil, types.Address{}, types.Hash{}, fmt.Errorf("invalid --blob: %w", err)
	}
	return &a, engine, blob, nil
}

type snapshotEntry struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

func loadSnapshotTree(path string) (*merkle.Tree, []*claim.Payload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var entries []snapshotEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil, fmt.Errorf("invalid snapshot json: %w", err)
	}

	payloads := make([]*claim.Payload, 0, len(entries))
	leaves := make([]types.Hash, 0, len(entries))
	for _, e := range entries {
		addr, err := types.ParseAddress(e.Recipient)
		if err != nil {
			return nil, nil, fmt.Errorf("bad snapshot recipient %s: %w", e.Recipient, err)
		}
		amount, ok := new(big.Int).SetString(e.Amount, 10)
		if !ok || amount.Sign() < 0 {
			return nil, nil, fmt.Errorf("bad snapshot amount for %s", e.Recipient)
		}
		p := &claim.Payload{Recipient: addr, Amount: amount}
		payloads = append(payloads, p)
		leaves = append(leaves, p.LeafHash())
	}

	return merkle.NewTree(leaves), payloads, nil
}
