package token

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestLedgerMintAndTransfer(t *testing.T) {
	l := NewLedger("ustake")
	require.Equal(t, "ustake", l.Denom())

	require.NoError(t, l.Mint("alice", sdkmath.NewInt(500)))
	require.NoError(t, l.Transfer("alice", "bob", sdkmath.NewInt(200)))

	aliceBal, err := l.BalanceOf("alice")
	require.NoError(t, err)
	require.Equal(t, int64(300), aliceBal.Int64())

	bobBal, err := l.BalanceOf("bob")
	require.NoError(t, err)
	require.Equal(t, int64(200), bobBal.Int64())

	require.Equal(t, int64(500), l.TotalSupply().Int64())
}

func TestLedgerTransferShortfallMovesNothing(t *testing.T) {
	l := NewLedger("ustake")
	require.NoError(t, l.Mint("alice", sdkmath.NewInt(100)))

	err := l.Transfer("alice", "bob", sdkmath.NewInt(101))
	require.Error(t, err)

	aliceBal, err := l.BalanceOf("alice")
	require.NoError(t, err)
	require.Equal(t, int64(100), aliceBal.Int64())

	bobBal, err := l.BalanceOf("bob")
	require.NoError(t, err)
	require.True(t, bobBal.IsZero())
}

func TestLedgerRejectsNegativeAmounts(t *testing.T) {
	l := NewLedger("ustake")
	require.Error(t, l.Mint("alice", sdkmath.NewInt(-1)))
	require.Error(t, l.Transfer("alice", "bob", sdkmath.NewInt(-1)))
}

func TestLedgerUnknownAccountIsZero(t *testing.T) {
	l := NewLedger("ustake")
	bal, err := l.BalanceOf("nobody")
	require.NoError(t, err)
	require.True(t, bal.IsZero())
}
