// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"provernet-core/claim"
	"provernet-core/merkle"
	"provernet-core/settlement"
	"provernet-core/store"
	"provernet-core/types"
)

func main() {
	fmt.Println("Launching PROVERNET Settlement Simulation...")

	state := types.NewStateDB()
	sink := types.NewMemorySink()

	proverKey, proverAddr, _ := types.GenerateKey()
	_, proposerAddr, _ := types.GenerateKey()
	engineAddr := types.Address{0x10}
	tipAddr := types.Address{0x77}

	engine := settlement.NewEngine(settlement.EngineParams{
		SelfAddress:     engineAddr,
		TrustedProposer: proposerAddr,
		TipRecipient:    tipAddr,
		ForwardBudget:   settlement.DefaultForwardBudget,
	}, state, nil, nil, sink, nil)

	fmt.Println("Prover Address:  ", proverAddr)
	fmt.Println("Proposer Address:", proposerAddr)

	// ---------------- FUNDING ---------------- //
	oneEth := big.NewInt(1e18)
	state.Mint(proposerAddr, new(big.Int).Mul(big.NewInt(100), oneEth))
	state.Mint(proverAddr, new(big.Int).Mul(big.NewInt(10), oneEth)) // liveness bond collateral

	// -------------- ASSIGNMENT -------------- //
	blobHash := types.Hash{0xbb}
	assignment := types.Assignment{
		Expiry:   uint64(time.Now().Add(time.Hour).Unix()),
		TierFees: []types.TierFee{{Tier: 1, Fee: big.NewInt(100)}},
	}
	if err := types.SignAssignment(&assignment, engineAddr, blobHash, proverKey); err != nil {
		log.Fatal("SIGN ERROR:", err)
	}

	req := &types.SettlementRequest{Assignment: assignment, Tip: big.NewInt(10)}
	encoded, _ := types.EncodeSettlementRequest(req)

	bc := &types.BlockContext{
		BlockID:        1,
		MinTier:        1,
		BlobHash:       blobHash,
		AssignedProver: proverAddr,
		LivenessBond:   oneEth,
	}

	now := uint64(time.Now().Unix())
	receipt, err := engine.OnAssignmentSettlement(proposerAddr, bc, encoded, big.NewInt(150), now, 1)
	if err != nil {
		log.Fatal("SETTLEMENT REJECTED:", err)
	}
	fmt.Printf("SETTLED: fee %s, tip %s, refund %s\n", receipt.Fee, receipt.Tip, receipt.Refund)

	// ---------------- AIRDROP ---------------- //
	dataDir, err := os.MkdirTemp("", "provernet-demo")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dataDir)

	claimSet, err := store.NewClaimSet(dataDir)
	if err != nil {
		log.Fatal("STORE ERROR:", err)
	}
	defer claimSet.Close()

	treasury := types.Address{0x99}
	state.Mint(treasury, new(big.Int).Mul(big.NewInt(1000), oneEth))

	_, aliceAddr, _ := types.GenerateKey()
	_, bobAddr, _ := types.GenerateKey()
	payloads := []*claim.Payload{
		{Recipient: aliceAddr, Amount: big.NewInt(500)},
		{Recipient: bobAddr, Amount: big.NewInt(750)},
	}
	leaves := make([]types.Hash, len(payloads))
	for i, p := range payloads {
		leaves[i] = p.LeafHash()
	}
	tree := merkle.NewTree(leaves)

	verifier := claim.NewVerifier(tree.Root(), claimSet,
		&claim.NativePayout{State: state, Treasury: treasury}, sink)

	proof, _ := tree.Prove(payloads[0].LeafHash())
	h, err := verifier.Claim(payloads[0], proof)
	if err != nil {
		log.Fatal("CLAIM REJECTED:", err)
	}
	fmt.Println("CLAIMED:", h)

	if _, err := verifier.Claim(payloads[0], proof); err != nil {
		fmt.Println("SECOND CLAIM REJECTED:", err)
	}

	// ----------- FINAL INFO ----------- //
	fmt.Println("Final State:")
	fmt.Println("Prover Balance:  ", state.GetBalance(proverAddr))
	fmt.Println("Proposer Balance:", state.GetBalance(proposerAddr))
	fmt.Println("Tip Recipient:   ", state.GetBalance(tipAddr))
	fmt.Println("Alice Balance:   ", state.GetBalance(aliceAddr))
	fmt.Println("Events Emitted:  ", len(sink.Events()))
}
