// SPDX-License-Identifier: MIT

package claim

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"provernet-core/merkle"
	"provernet-core/store"
	"provernet-core/types"
)

type claimEnv struct {
	verifier *Verifier
	state    *types.StateDB
	sink     *types.MemorySink
	tree     *merkle.Tree
	payloads []*Payload
	treasury types.Address
}

func newClaimEnv(t *testing.T, exec Executor) *claimEnv {
	t.Helper()

	state := types.NewStateDB()
	sink := types.NewMemorySink()
	treasury := types.Address{0x99}
	require.NoError(t, state.Mint(treasury, big.NewInt(10_000)))

	payloads := []*Payload{
		{Recipient: types.Address{0x01}, Amount: big.NewInt(500)},
		{Recipient: types.Address{0x02}, Amount: big.NewInt(750)},
		{Recipient: types.Address{0x03}, Amount: big.NewInt(250)},
	}
	leaves := make([]types.Hash, len(payloads))
	for i, p := range payloads {
		leaves[i] = p.LeafHash()
	}
	tree := merkle.NewTree(leaves)

	set, err := store.NewClaimSet(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = set.Close() })

	if exec == nil {
		exec = &NativePayout{State: state, Treasury: treasury}
	}

	return &claimEnv{
		verifier: NewVerifier(tree.Root(), set, exec, sink),
		state:    state,
		sink:     sink,
		tree:     tree,
		payloads: payloads,
		treasury: treasury,
	}
}

func TestClaimSucceedsOnce(t *testing.T) {
	env := newClaimEnv(t, nil)
	p := env.payloads[0]

	proof, ok := env.tree.Prove(p.LeafHash())
	require.True(t, ok)

	h, err := env.verifier.Claim(p, proof)
	require.NoError(t, err)
	require.Equal(t, p.LeafHash(), h)

	require.Equal(t, int64(500), env.state.GetBalance(p.Recipient).Int64())
	require.Equal(t, int64(9_500), env.state.GetBalance(env.treasury).Int64())

	events := env.sink.Events()
	require.Len(t, events, 1)
	require.Equal(t, types.EventClaimed, events[0].Kind)
	require.Equal(t, h, events[0].Claim.Hash)
}

func TestClaimReplayRejected(t *testing.T) {
	env := newClaimEnv(t, nil)
	p := env.payloads[0]

	proof, ok := env.tree.Prove(p.LeafHash())
	require.True(t, ok)

	_, err := env.verifier.Claim(p, proof)
	require.NoError(t, err)

	// Identical second call, same still-valid proof.
	_, err = env.verifier.Claim(p, proof)
	require.ErrorIs(t, err, ErrAlreadyClaimed)

	// The entitlement was paid exactly once.
	require.Equal(t, int64(500), env.state.GetBalance(p.Recipient).Int64())
	require.Len(t, env.sink.Events(), 1)
}

func TestClaimInvalidProof(t *testing.T) {
	env := newClaimEnv(t, nil)
	p := env.payloads[0]

	// A proof for a different leaf does not reconstruct the root.
	wrongProof, ok := env.tree.Prove(env.payloads[1].LeafHash())
	require.True(t, ok)

	_, err := env.verifier.Claim(p, wrongProof)
	require.ErrorIs(t, err, ErrInvalidProof)

	// State untouched; the payload can still be claimed correctly.
	require.Equal(t, int64(0), env.state.GetBalance(p.Recipient).Int64())

	proof, ok := env.tree.Prove(p.LeafHash())
	require.True(t, ok)
	_, err = env.verifier.Claim(p, proof)
	require.NoError(t, err)
}

func TestClaimForgedAmountRejected(t *testing.T) {
	env := newClaimEnv(t, nil)

	forged := &Payload{Recipient: env.payloads[0].Recipient, Amount: big.NewInt(9_999)}
	proof, ok := env.tree.Prove(env.payloads[0].LeafHash())
	require.True(t, ok)

	_, err := env.verifier.Claim(forged, proof)
	require.ErrorIs(t, err, ErrInvalidProof)
}

type explodingExecutor struct{}

func (explodingExecutor) Execute(p *Payload) error {
	return errors.New("payout backend down")
}

func TestClaimFailedExecutorLeavesUnclaimed(t *testing.T) {
	env := newClaimEnv(t, explodingExecutor{})
	p := env.payloads[0]

	proof, ok := env.tree.Prove(p.LeafHash())
	require.True(t, ok)

	_, err := env.verifier.Claim(p, proof)
	require.Error(t, err)
	require.Empty(t, env.sink.Events())

	// The hash was not consumed: a later claim with a working executor
	// must still succeed. Swap the executor in place.
	env.verifier.exec = &NativePayout{State: env.state, Treasury: env.treasury}
	_, err = env.verifier.Claim(p, proof)
	require.NoError(t, err)
	require.Equal(t, int64(500), env.state.GetBalance(p.Recipient).Int64())
}

// commitLossSet runs fn but then fails to persist the mark, modeling a
// claimed-set whose commit is lost after the payout executed.
type commitLossSet struct{}

func (commitLossSet) Seen(h types.Hash) (bool, error) { return false, nil }

func (commitLossSet) MarkWith(h types.Hash, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	return errors.New("mark commit lost")
}

func TestClaimMarkCommitFailureRevertsPayout(t *testing.T) {
	state := types.NewStateDB()
	treasury := types.Address{0x99}
	require.NoError(t, state.Mint(treasury, big.NewInt(10_000)))

	p := &Payload{Recipient: types.Address{0x01}, Amount: big.NewInt(500)}
	tree := merkle.NewTree([]types.Hash{p.LeafHash()})
	sink := types.NewMemorySink()

	exec := &NativePayout{State: state, Treasury: treasury}
	verifier := NewVerifier(tree.Root(), commitLossSet{}, exec, sink)

	proof, ok := tree.Prove(p.LeafHash())
	require.True(t, ok)

	_, err := verifier.Claim(p, proof)
	require.Error(t, err)

	// The payout was undone: no half-claimed state, no event.
	require.Equal(t, int64(0), state.GetBalance(p.Recipient).Int64())
	require.Equal(t, int64(10_000), state.GetBalance(treasury).Int64())
	require.Empty(t, sink.Events())
}

func TestClaimRootUpdate(t *testing.T) {
	env := newClaimEnv(t, nil)

	newcomer := &Payload{Recipient: types.Address{0x0a}, Amount: big.NewInt(100)}
	newTree := merkle.NewTree([]types.Hash{newcomer.LeafHash()})

	proof, ok := newTree.Prove(newcomer.LeafHash())
	require.True(t, ok)

	// Rejected under the old root, accepted after the publisher's update.
	_, err := env.verifier.Claim(newcomer, proof)
	require.ErrorIs(t, err, ErrInvalidProof)

	env.verifier.SetRoot(newTree.Root())
	_, err = env.verifier.Claim(newcomer, proof)
	require.NoError(t, err)
}

func TestTokenPayoutExecutor(t *testing.T) {
	tok := types.NewLedgerToken()
	treasury := types.Address{0x99}
	recipient := types.Address{0x01}

	require.NoError(t, tok.Mint(treasury, big.NewInt(1_000)))
	require.NoError(t, tok.Approve(treasury, recipient, big.NewInt(500)))

	exec := &TokenPayout{Token: tok, Treasury: treasury}
	require.NoError(t, exec.Execute(&Payload{Recipient: recipient, Amount: big.NewInt(500)}))
	require.Equal(t, int64(500), tok.BalanceOf(recipient).Int64())
}

func TestPayloadHashDomainSeparated(t *testing.T) {
	p := &Payload{Recipient: types.Address{0x01}, Amount: big.NewInt(500)}
	q := &Payload{Recipient: types.Address{0x01}, Amount: big.NewInt(501)}

	require.NotEqual(t, p.LeafHash(), q.LeafHash())
	require.False(t, p.LeafHash().IsZero())
}
