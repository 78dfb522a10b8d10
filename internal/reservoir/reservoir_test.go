package reservoir

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/solstice-finance/fde/internal/token"
)

func TestReleaseGatedByInterval(t *testing.T) {
	reward := token.NewLedger("ufarm")
	require.NoError(t, reward.Mint(Account, sdkmath.NewInt(1000)))
	r := New(reward, "operator", 100, 0)

	_, err := r.Release(99)
	require.ErrorIs(t, err, ErrReleaseTooSoon)

	paid, err := r.Release(100)
	require.NoError(t, err)
	require.Equal(t, int64(1000), paid.Int64())

	opBal, err := reward.BalanceOf("operator")
	require.NoError(t, err)
	require.Equal(t, int64(1000), opBal.Int64())

	// Interval restarts from the successful release.
	require.NoError(t, reward.Mint(Account, sdkmath.NewInt(500)))
	_, err = r.Release(150)
	require.ErrorIs(t, err, ErrReleaseTooSoon)
	paid, err = r.Release(200)
	require.NoError(t, err)
	require.Equal(t, int64(500), paid.Int64())
}

func TestEmptyReleaseDoesNotConsumeInterval(t *testing.T) {
	reward := token.NewLedger("ufarm")
	r := New(reward, "operator", 100, 0)

	paid, err := r.Release(100)
	require.NoError(t, err)
	require.True(t, paid.IsZero())

	// The empty attempt did not advance the gate: a funded release right
	// after still goes through.
	require.NoError(t, reward.Mint(Account, sdkmath.NewInt(42)))
	paid, err = r.Release(101)
	require.NoError(t, err)
	require.Equal(t, int64(42), paid.Int64())
}

func TestRotateOperator(t *testing.T) {
	reward := token.NewLedger("ufarm")
	r := New(reward, "operator", 100, 0)

	require.ErrorIs(t, r.RotateOperator("mallory", "mallory"), ErrNotOperator)
	require.ErrorIs(t, r.RotateOperator("operator", ""), ErrNotOperator)

	require.NoError(t, r.RotateOperator("operator", "successor"))
	require.Equal(t, "successor", r.Operator())

	require.NoError(t, reward.Mint(Account, sdkmath.NewInt(7)))
	_, err := r.Release(100)
	require.NoError(t, err)
	bal, err := reward.BalanceOf("successor")
	require.NoError(t, err)
	require.Equal(t, int64(7), bal.Int64())
}
