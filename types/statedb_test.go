// SPDX-License-Identifier: MIT

package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateDBTransfer(t *testing.T) {
	s := NewStateDB()
	a := Address{0x01}
	b := Address{0x02}

	require.NoError(t, s.Mint(a, big.NewInt(100)))
	require.NoError(t, s.Transfer(a, b, big.NewInt(40)))

	require.Equal(t, int64(60), s.GetBalance(a).Int64())
	require.Equal(t, int64(40), s.GetBalance(b).Int64())

	require.Error(t, s.Transfer(a, b, big.NewInt(1000)))
	require.Equal(t, int64(60), s.GetBalance(a).Int64(), "failed transfer must not move funds")
}

func TestStateDBSnapshotRevert(t *testing.T) {
	s := NewStateDB()
	a := Address{0x01}
	require.NoError(t, s.Mint(a, big.NewInt(100)))

	snap := s.Snapshot()
	require.NoError(t, s.SubBalance(a, big.NewInt(30)))
	require.NoError(t, s.AddBalance(Address{0x02}, big.NewInt(30)))

	s.RevertToSnapshot(snap)
	require.Equal(t, int64(100), s.GetBalance(a).Int64())
	require.Equal(t, int64(0), s.GetBalance(Address{0x02}).Int64())
}

func TestStateDBSnapshotCommit(t *testing.T) {
	s := NewStateDB()
	a := Address{0x01}
	require.NoError(t, s.Mint(a, big.NewInt(100)))

	snap := s.Snapshot()
	require.NoError(t, s.SubBalance(a, big.NewInt(30)))
	s.CommitSnapshot(snap)

	// Reverting a committed snapshot is a no-op.
	s.RevertToSnapshot(snap)
	require.Equal(t, int64(70), s.GetBalance(a).Int64())
}

func TestLedgerTokenPullTransfer(t *testing.T) {
	tok := NewLedgerToken()
	owner := Address{0x01}
	spender := Address{0x02}

	require.NoError(t, tok.Mint(owner, big.NewInt(500)))
	require.Error(t, tok.TransferFrom(owner, spender, big.NewInt(10)), "no allowance yet")

	require.NoError(t, tok.Approve(owner, spender, big.NewInt(100)))
	require.NoError(t, tok.TransferFrom(owner, spender, big.NewInt(60)))
	require.Equal(t, int64(440), tok.BalanceOf(owner).Int64())
	require.Equal(t, int64(60), tok.BalanceOf(spender).Int64())
	require.Equal(t, int64(40), tok.Allowance(owner, spender).Int64())

	require.Error(t, tok.TransferFrom(owner, spender, big.NewInt(50)), "allowance exhausted")
}
