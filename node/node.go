// SPDX-License-Identifier: MIT

package node

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"provernet-core/claim"
	"provernet-core/core"
	"provernet-core/publisher"
	"provernet-core/settlement"
	"provernet-core/store"
	"provernet-core/types"
)

// Node wires the settlement engine, the claim verifier and their
// persistent stores, and keeps the published airdrop root fresh.
type Node struct {
	mu sync.RWMutex

	Cfg      core.Config
	State    *types.StateDB
	Token    *types.LedgerToken
	Engine   *settlement.Engine
	Claims   *claim.Verifier
	Events   *types.MemorySink
	ClaimSet *store.ClaimSet
	Archive  *store.Archive

	pub *publisher.Client
	log *zap.Logger

	running bool
	stopCh  chan struct{}
}

// New builds a node from engine config, applying genesis when a
// genesis file is configured.
func New(cfg core.Config, logger *zap.Logger) (*Node, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("node")

	state := types.NewStateDB()
	token := types.NewLedgerToken()
	sink := types.NewMemorySink()

	airdropRoot := types.ZeroHash()
	if cfg.Airdrop.Root != "" {
		root, err := types.ParseHash(cfg.Airdrop.Root)
		if err != nil {
			return nil, fmt.Errorf("invalid configured airdrop root: %w", err)
		}
		airdropRoot = root
	}

	if cfg.Node.GenesisFile != "" {
		g, err := core.LoadGenesis(cfg.Node.GenesisFile)
		if err != nil {
			return nil, err
		}
		root, err := core.ApplyGenesis(state, token, g)
		if err != nil {
			return nil, err
		}
		if !root.IsZero() {
			airdropRoot = root
		}
		log.Info("genesis applied", zap.Int("accounts", len(g.Alloc)))
	}

	params, err := engineParams(cfg)
	if err != nil {
		return nil, err
	}

	claimSet, err := store.NewClaimSet(cfg.Node.DataDir)
	if err != nil {
		return nil, err
	}
	archive, err := store.NewArchive(cfg.Node.DataDir)
	if err != nil {
		_ = claimSet.Close()
		return nil, err
	}

	engine := settlement.NewEngine(params, state, nil, nil, sink, archive)

	if cfg.Engine.FeeToken != "" {
		tokenAddr, err := types.ParseAddress(cfg.Engine.FeeToken)
		if err != nil {
			_ = claimSet.Close()
			_ = archive.Close()
			return nil, fmt.Errorf("invalid fee_token: %w", err)
		}
		engine.RegisterToken(tokenAddr, token)
	}

	treasury, err := types.ParseAddress(cfg.Airdrop.Treasury)
	if err != nil {
		_ = claimSet.Close()
		_ = archive.Close()
		return nil, fmt.Errorf("invalid airdrop treasury: %w", err)
	}

	exec := &claim.NativePayout{State: state, Treasury: treasury}
	claims := claim.NewVerifier(airdropRoot, claimSet, exec, sink)

	n := &Node{
		Cfg:      cfg,
		State:    state,
		Token:    token,
		Engine:   engine,
		Claims:   claims,
		Events:   sink,
		ClaimSet: claimSet,
		Archive:  archive,
		log:      log,
		stopCh:   make(chan struct{}),
	}

	if cfg.Airdrop.PublisherURL != "" {
		n.pub = publisher.NewClient(cfg.Airdrop.PublisherURL)
	}

	return n, nil
}

func engineParams(cfg core.Config) (settlement.EngineParams, error) {
	var params settlement.EngineParams

	engineAddr, err := types.ParseAddress(cfg.Engine.EngineAddress)
	if err != nil {
		return params, fmt.Errorf("invalid engine_address: %w", err)
	}
	params.SelfAddress = engineAddr
	params.ForwardBudget = cfg.Engine.ForwardBudget

	if cfg.Engine.TrustedProposer != "" {
		proposer, err := types.ParseAddress(cfg.Engine.TrustedProposer)
		if err != nil {
			return params, fmt.Errorf("invalid trusted_proposer: %w", err)
		}
		params.TrustedProposer = proposer
	}
	if cfg.Engine.TipRecipient != "" {
		tip, err := types.ParseAddress(cfg.Engine.TipRecipient)
		if err != nil {
			return params, fmt.Errorf("invalid tip_recipient: %w", err)
		}
		params.TipRecipient = tip
	}

	return params, nil
}

// BondAmount parses the configured default liveness bond.
func (n *Node) BondAmount() *big.Int {
	amount, ok := new(big.Int).SetString(n.Cfg.Engine.BondAmount, 10)
	if !ok {
		return big.NewInt(0)
	}
	return amount
}

func (n *Node) Start() {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return
	}
	n.running = true
	n.mu.Unlock()

	n.log.Info("node started")

	if n.pub != nil {
		go n.rootPollLoop()
	}
}

func (n *Node) Stop() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.running = false
	close(n.stopCh)
	n.mu.Unlock()

	if err := n.ClaimSet.Close(); err != nil {
		n.log.Warn("claim set close failed", zap.Error(err))
	}
	if err := n.Archive.Close(); err != nil {
		n.log.Warn("archive close failed", zap.Error(err))
	}

	n.log.Info("node stopped")
}

// rootPollLoop keeps the claim verifier's root in sync with the
// off-ledger publisher.
func (n *Node) rootPollLoop() {
	interval := time.Duration(n.Cfg.Airdrop.PollSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.stopCh:
			return
		case <-ticker.C:
			root, updated, err := n.pub.FetchNewRoot()
			if errors.Is(err, publisher.ErrNoPublisher) {
				n.log.Debug("no published root yet")
				continue
			}
			if err != nil {
				n.log.Warn("root fetch failed", zap.Error(err))
				continue
			}
			if updated {
				n.Claims.SetRoot(root)
				n.log.Info("airdrop root updated", zap.String("root", root.String()))
			}
		}
	}
}
