package engine

import (
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/solstice-finance/fde/internal/schedule"
	"github.com/solstice-finance/fde/internal/token"
	"github.com/solstice-finance/fde/internal/types"
)

const (
	testOwner     = "admin"
	testCollector = "farm/reservoir"
)

// testParams: per-tick rates 80, 80, 20, 10 with epoch length 100, fee 10%
// for the first two epochs and 5% after.
func testParams() types.EmissionParams {
	return types.EmissionParams{
		GenesisTick:     0,
		EpochLength:     100,
		BaseRatePerTick: sdkmath.NewInt(10),
		RateMultipliers: []uint64{8, 8, 2, 1},
		FeeBps:          []uint64{1000, 1000, 500},
	}
}

func newTestEngine(t *testing.T) (*Engine, *token.Ledger, *token.Ledger) {
	t.Helper()
	sched, err := schedule.New(testParams())
	require.NoError(t, err)
	stake := token.NewLedger("ustake")
	reward := token.NewLedger("ufarm")
	e, err := New(Config{
		Schedule:     sched,
		RewardToken:  reward,
		Owner:        testOwner,
		FeeCollector: testCollector,
	})
	require.NoError(t, err)
	return e, stake, reward
}

// newTestPool registers a single 100%-weight pool and funds the participant.
func newTestPool(t *testing.T, e *Engine, stake *token.Ledger, participant string, funding int64) types.PoolID {
	t.Helper()
	poolID, err := e.RegisterPool(testOwner, stake, 100, 0)
	require.NoError(t, err)
	require.NoError(t, stake.Mint(participant, sdkmath.NewInt(funding)))
	return poolID
}

func balance(t *testing.T, l *token.Ledger, account string) int64 {
	t.Helper()
	bal, err := l.BalanceOf(account)
	require.NoError(t, err)
	return bal.Int64()
}

func TestNewValidatesConfig(t *testing.T) {
	sched, err := schedule.New(testParams())
	require.NoError(t, err)
	reward := token.NewLedger("ufarm")

	_, err = New(Config{RewardToken: reward, Owner: "a", FeeCollector: "b"})
	require.Error(t, err)
	_, err = New(Config{Schedule: sched, Owner: "a", FeeCollector: "b"})
	require.Error(t, err)
	_, err = New(Config{Schedule: sched, RewardToken: reward, FeeCollector: "b"})
	require.Error(t, err)
	_, err = New(Config{Schedule: sched, RewardToken: reward, Owner: "a"})
	require.Error(t, err)
}

func TestFirstEpochScenario(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)

	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	// Full first epoch at rate 80: 8000 for the pool's depositors.
	pending, err := e.PendingReward(poolID, "alice", 100)
	require.NoError(t, err)
	require.Equal(t, int64(8000), pending.Int64())

	require.NoError(t, e.Refresh(poolID, 100))
	pool, err := e.Pool(poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(100), pool.LastRefreshTick)
	wantRPS := sdkmath.NewInt(8000).Mul(types.Precision).QuoRaw(100)
	require.Equal(t, wantRPS.String(), pool.RewardPerShare.String())

	// Treasury holds the pool reward; the administrator fee (10% in epoch 0)
	// is minted on top, directly to the collector.
	require.Equal(t, int64(8000), balance(t, reward, TreasuryAccount))
	require.Equal(t, int64(800), balance(t, reward, testCollector))

	// A zero-amount deposit is a pure claim.
	receipt, err := e.Deposit("alice", poolID, sdkmath.ZeroInt(), 100)
	require.NoError(t, err)
	require.Equal(t, int64(8000), receipt.RewardPaid.Int64())
	require.Equal(t, int64(8000), balance(t, reward, "alice"))
	require.Equal(t, int64(0), balance(t, reward, TreasuryAccount))
}

func TestPendingZeroImmediatelyAfterActions(t *testing.T) {
	e, stake, _ := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 1000)

	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(300), 0)
	require.NoError(t, err)

	_, err = e.Deposit("alice", poolID, sdkmath.NewInt(200), 73)
	require.NoError(t, err)
	pending, err := e.PendingReward(poolID, "alice", 73)
	require.NoError(t, err)
	require.True(t, pending.IsZero(), "pending after deposit: %s", pending)

	_, err = e.Withdraw("alice", poolID, sdkmath.NewInt(150), 140)
	require.NoError(t, err)
	pending, err = e.PendingReward(poolID, "alice", 140)
	require.NoError(t, err)
	require.True(t, pending.IsZero(), "pending after withdraw: %s", pending)
}

func TestConservationSingleStaker(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)

	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	// Drain to zero mid-epoch-1. The sole staker of a 100%-weight pool gets
	// the entire emission since the first deposit: 100*80 + 37*80.
	receipt, err := e.Withdraw("alice", poolID, sdkmath.NewInt(100), 137)
	require.NoError(t, err)
	require.Equal(t, int64(10960), receipt.RewardPaid.Int64())
	require.Equal(t, int64(100), balance(t, stake, "alice"))
	require.Equal(t, int64(10960), balance(t, reward, "alice"))

	pending, err := e.PendingReward(poolID, "alice", 137)
	require.NoError(t, err)
	require.True(t, pending.IsZero())
}

func TestEmptyPoolDropsEmission(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID, err := e.RegisterPool(testOwner, stake, 100, 0)
	require.NoError(t, err)

	require.NoError(t, e.Refresh(poolID, 60))
	pool, err := e.Pool(poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(60), pool.LastRefreshTick)
	require.True(t, pool.RewardPerShare.IsZero())
	require.True(t, reward.TotalSupply().IsZero(), "idle pool must not bank emission")

	// A later depositor starts from zero: the idle interval is gone.
	require.NoError(t, stake.Mint("alice", sdkmath.NewInt(100)))
	_, err = e.Deposit("alice", poolID, sdkmath.NewInt(100), 60)
	require.NoError(t, err)
	pending, err := e.PendingReward(poolID, "alice", 100)
	require.NoError(t, err)
	require.Equal(t, int64(40*80), pending.Int64())
}

func TestRefreshIdempotent(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	require.NoError(t, e.Refresh(poolID, 90))
	poolOnce, err := e.Pool(poolID)
	require.NoError(t, err)
	supplyOnce := reward.TotalSupply()

	require.NoError(t, e.Refresh(poolID, 90))
	poolTwice, err := e.Pool(poolID)
	require.NoError(t, err)
	require.Equal(t, poolOnce.RewardPerShare.String(), poolTwice.RewardPerShare.String())
	require.Equal(t, poolOnce.LastRefreshTick, poolTwice.LastRefreshTick)
	require.Equal(t, supplyOnce.String(), reward.TotalSupply().String())

	// An older tick is a no-op as well.
	require.NoError(t, e.Refresh(poolID, 50))
	poolStale, err := e.Pool(poolID)
	require.NoError(t, err)
	require.Equal(t, poolOnce.RewardPerShare.String(), poolStale.RewardPerShare.String())
	require.Equal(t, uint64(90), poolStale.LastRefreshTick)
}

func TestTwoStakersProRata(t *testing.T) {
	e, stake, _ := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	require.NoError(t, stake.Mint("bob", sdkmath.NewInt(300)))

	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)
	_, err = e.Deposit("bob", poolID, sdkmath.NewInt(300), 100)
	require.NoError(t, err)

	// Epoch 1 emits 8000 over a stake of 400: alice keeps her epoch-0 8000
	// plus a quarter of epoch 1, bob gets three quarters of epoch 1.
	alicePending, err := e.PendingReward(poolID, "alice", 200)
	require.NoError(t, err)
	bobPending, err := e.PendingReward(poolID, "bob", 200)
	require.NoError(t, err)
	require.Equal(t, int64(10000), alicePending.Int64())
	require.Equal(t, int64(6000), bobPending.Int64())
}

func TestEmergencyWithdrawForfeitsReward(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	pending, err := e.PendingReward(poolID, "alice", 150)
	require.NoError(t, err)
	require.Equal(t, int64(100*80+50*80), pending.Int64())

	receipt, err := e.EmergencyWithdraw("alice", poolID, 150)
	require.NoError(t, err)
	require.Equal(t, int64(100), receipt.Amount.Int64())
	require.True(t, receipt.RewardPaid.IsZero())
	require.Equal(t, int64(100), balance(t, stake, "alice"))
	require.Equal(t, int64(0), balance(t, reward, "alice"))

	// The position is zeroed, so the accrued reward is unreachable.
	pending, err = e.PendingReward(poolID, "alice", 150)
	require.NoError(t, err)
	require.True(t, pending.IsZero())

	// No refresh happened on the way out; the pool custody is empty now, so
	// a later refresh advances without minting.
	require.NoError(t, e.Refresh(poolID, 200))
	require.True(t, reward.TotalSupply().IsZero())
}

func TestWithdrawExceedingStakeFails(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	_, err = e.Withdraw("alice", poolID, sdkmath.NewInt(101), 50)
	require.ErrorIs(t, err, ErrInsufficientStake)

	// Rejected before any mutation: no accrual was minted, nothing moved.
	pool, err := e.Pool(poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(0), pool.LastRefreshTick)
	require.True(t, reward.TotalSupply().IsZero())
	require.Equal(t, int64(0), balance(t, stake, "alice"))
}

func TestDepositTransferFailureAborts(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	// Alice has no funds left; the transfer-in is rejected and the action
	// aborts with no accrual committed and no mint performed.
	_, err = e.Deposit("alice", poolID, sdkmath.NewInt(1), 80)
	require.ErrorIs(t, err, ErrTransferFailed)

	pool, err := e.Pool(poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(0), pool.LastRefreshTick)
	require.True(t, pool.RewardPerShare.IsZero())
	require.True(t, reward.TotalSupply().IsZero())

	pos, err := e.Position(poolID, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(100), pos.StakedAmount.Int64())
}

// rejectOnceAsset wraps a ledger and rejects the first transfer out of one
// account, simulating a transient staked-asset service outage.
type rejectOnceAsset struct {
	*token.Ledger
	rejectFrom string
	rejected   bool
}

func (a *rejectOnceAsset) Transfer(from, to string, amount sdkmath.Int) error {
	if !a.rejected && from == a.rejectFrom {
		a.rejected = true
		return errors.New("transfer temporarily unavailable")
	}
	return a.Ledger.Transfer(from, to, amount)
}

// A rejected principal transfer-out must not leave a reward payment behind:
// the failed withdraw commits at most a refresh, and the retry settles the
// same interval exactly once.
func TestWithdrawTransferFailureLeavesRewardUnpaid(t *testing.T) {
	e, _, reward := newTestEngine(t)
	base := token.NewLedger("ustake")
	asset := &rejectOnceAsset{Ledger: base, rejectFrom: types.PoolCustodyAccount(1)}
	poolID, err := e.RegisterPool(testOwner, asset, 100, 0)
	require.NoError(t, err)
	require.NoError(t, base.Mint("alice", sdkmath.NewInt(100)))
	_, err = e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	_, err = e.Withdraw("alice", poolID, sdkmath.NewInt(100), 100)
	require.ErrorIs(t, err, ErrTransferFailed)

	// No principal and no reward moved; the position is untouched and the
	// epoch's emission was minted once, to the treasury.
	require.Equal(t, int64(0), balance(t, base, "alice"))
	require.Equal(t, int64(0), balance(t, reward, "alice"))
	pos, err := e.Position(poolID, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(100), pos.StakedAmount.Int64())
	require.Equal(t, int64(8000), balance(t, reward, TreasuryAccount))
	require.Equal(t, int64(8800), reward.TotalSupply().Int64())

	// The retry pays the entitlement exactly once, with no further minting.
	receipt, err := e.Withdraw("alice", poolID, sdkmath.NewInt(100), 100)
	require.NoError(t, err)
	require.Equal(t, int64(8000), receipt.RewardPaid.Int64())
	require.Equal(t, int64(100), balance(t, base, "alice"))
	require.Equal(t, int64(8000), balance(t, reward, "alice"))
	require.Equal(t, int64(8800), reward.TotalSupply().Int64())
}

// failingMintToken wraps the reward ledger and fails mints on demand.
type failingMintToken struct {
	*token.Ledger
	fail bool
}

func (m *failingMintToken) Mint(recipient string, amount sdkmath.Int) error {
	if m.fail {
		return errors.New("mint unavailable")
	}
	return m.Ledger.Mint(recipient, amount)
}

// A mint failure after the deposit's transfer-in must refund the principal
// and commit nothing.
func TestDepositMintFailureRefundsStake(t *testing.T) {
	sched, err := schedule.New(testParams())
	require.NoError(t, err)
	stake := token.NewLedger("ustake")
	reward := &failingMintToken{Ledger: token.NewLedger("ufarm")}
	e, err := New(Config{
		Schedule:     sched,
		RewardToken:  reward,
		Owner:        testOwner,
		FeeCollector: testCollector,
	})
	require.NoError(t, err)

	poolID, err := e.RegisterPool(testOwner, stake, 100, 0)
	require.NoError(t, err)
	require.NoError(t, stake.Mint("alice", sdkmath.NewInt(100)))
	_, err = e.Deposit("alice", poolID, sdkmath.NewInt(60), 0)
	require.NoError(t, err)

	reward.fail = true
	_, err = e.Deposit("alice", poolID, sdkmath.NewInt(40), 50)
	require.ErrorIs(t, err, ErrRewardService)

	// The transfer-in was refunded; no accrual committed, nothing minted.
	require.Equal(t, int64(40), balance(t, stake, "alice"))
	pos, err := e.Position(poolID, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(60), pos.StakedAmount.Int64())
	pool, err := e.Pool(poolID)
	require.NoError(t, err)
	require.Equal(t, uint64(0), pool.LastRefreshTick)
	require.True(t, reward.TotalSupply().IsZero())

	// With the reward service back, the same deposit settles normally. The
	// 4000 emitted over 50 ticks divides by the 60 stake with a floor, so
	// the accumulator carries 66_666_666_666_666 and the payout is 3999.
	reward.fail = false
	receipt, err := e.Deposit("alice", poolID, sdkmath.NewInt(40), 50)
	require.NoError(t, err)
	require.Equal(t, int64(3999), receipt.RewardPaid.Int64())
	require.Equal(t, int64(0), balance(t, stake, "alice"))
}

func TestTreasuryShortfallCapsPayout(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	// Accrue a full epoch, then drain most of the treasury out from under
	// the engine.
	require.NoError(t, e.Refresh(poolID, 100))
	require.NoError(t, reward.Transfer(TreasuryAccount, "sink", sdkmath.NewInt(5000)))

	// Pending is 8000 but only 3000 is available: the withdrawal still
	// succeeds, paying what the treasury holds.
	receipt, err := e.Withdraw("alice", poolID, sdkmath.NewInt(100), 100)
	require.NoError(t, err)
	require.Equal(t, int64(3000), receipt.RewardPaid.Int64())
	require.Equal(t, int64(100), balance(t, stake, "alice"))
	require.Equal(t, int64(3000), balance(t, reward, "alice"))
	require.Equal(t, int64(0), balance(t, reward, TreasuryAccount))
}

func TestFeeFollowsEpochTable(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	// Refresh lands in epoch 2, where the fee halves to 5%. Gross emission
	// over [0, 250) is 100*80 + 100*80 + 50*20 = 17000.
	require.NoError(t, e.Refresh(poolID, 250))
	require.Equal(t, int64(17000), balance(t, reward, TreasuryAccount))
	require.Equal(t, int64(850), balance(t, reward, testCollector))
}

func TestWeightChangeIsNotRetroactive(t *testing.T) {
	e, _, _ := newTestEngine(t)
	stakeA := token.NewLedger("ustake-a")
	stakeB := token.NewLedger("ustake-b")
	poolA, err := e.RegisterPool(testOwner, stakeA, 100, 0)
	require.NoError(t, err)
	poolB, err := e.RegisterPool(testOwner, stakeB, 100, 0)
	require.NoError(t, err)

	require.NoError(t, stakeA.Mint("alice", sdkmath.NewInt(100)))
	require.NoError(t, stakeB.Mint("bob", sdkmath.NewInt(100)))
	_, err = e.Deposit("alice", poolA, sdkmath.NewInt(100), 0)
	require.NoError(t, err)
	_, err = e.Deposit("bob", poolB, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	// Epoch 0 splits 50/50. The weight change at tick 100 settles both
	// pools first, so the accrued half is locked in.
	require.NoError(t, e.SetAllocationWeight(testOwner, poolB, 300, 100))
	require.Equal(t, uint64(400), e.TotalAllocationWeight())

	aliceAt100, err := e.PendingReward(poolA, "alice", 100)
	require.NoError(t, err)
	require.Equal(t, int64(4000), aliceAt100.Int64())

	// Epoch 1 splits 1:3 under the new weights.
	aliceAt200, err := e.PendingReward(poolA, "alice", 200)
	require.NoError(t, err)
	bobAt200, err := e.PendingReward(poolB, "bob", 200)
	require.NoError(t, err)
	require.Equal(t, int64(4000+2000), aliceAt200.Int64())
	require.Equal(t, int64(4000+6000), bobAt200.Int64())
}

func TestAdministratorCapability(t *testing.T) {
	e, stake, _ := newTestEngine(t)

	_, err := e.RegisterPool("mallory", stake, 100, 0)
	require.ErrorIs(t, err, ErrUnauthorized)

	poolID, err := e.RegisterPool(testOwner, stake, 100, 0)
	require.NoError(t, err)

	require.ErrorIs(t, e.SetAllocationWeight("mallory", poolID, 50, 0), ErrUnauthorized)
	require.ErrorIs(t, e.TransferOwnership("mallory", "mallory"), ErrUnauthorized)
	require.ErrorIs(t, e.SetMigrator("mallory", nil), ErrUnauthorized)
	require.ErrorIs(t, e.MigrateStakedAsset("mallory", poolID), ErrUnauthorized)

	require.NoError(t, e.TransferOwnership(testOwner, "new-admin"))
	require.Equal(t, "new-admin", e.Owner())
	require.ErrorIs(t, e.SetAllocationWeight(testOwner, poolID, 50, 0), ErrUnauthorized)
	require.NoError(t, e.SetAllocationWeight("new-admin", poolID, 50, 0))
}

func TestRegisterPoolRejectsDuplicateAsset(t *testing.T) {
	e, stake, _ := newTestEngine(t)
	_, err := e.RegisterPool(testOwner, stake, 100, 0)
	require.NoError(t, err)
	_, err = e.RegisterPool(testOwner, stake, 50, 0)
	require.ErrorIs(t, err, ErrDuplicateAsset)
}

// copyMigrator replays custody balances onto a fresh ledger, optionally
// shaving the balance to exercise the preservation check.
type copyMigrator struct {
	replacement *token.Ledger
	shave       int64
}

func (m *copyMigrator) Migrate(old token.Asset, custody string, bal sdkmath.Int) (token.Asset, error) {
	if err := m.replacement.Mint(custody, bal.SubRaw(m.shave)); err != nil {
		return nil, err
	}
	return m.replacement, nil
}

func TestMigrateStakedAsset(t *testing.T) {
	e, stake, _ := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	require.ErrorIs(t, e.MigrateStakedAsset(testOwner, poolID), ErrNoMigrator)

	replacement := token.NewLedger("ustake-v2")
	require.NoError(t, e.SetMigrator(testOwner, &copyMigrator{replacement: replacement}))
	require.NoError(t, e.MigrateStakedAsset(testOwner, poolID))

	pool, err := e.Pool(poolID)
	require.NoError(t, err)
	require.Equal(t, "ustake-v2", pool.StakedAssetDenom)

	// Accrual continues against the new asset, and withdrawal pays out of
	// the migrated custody.
	receipt, err := e.Withdraw("alice", poolID, sdkmath.NewInt(100), 50)
	require.NoError(t, err)
	require.Equal(t, int64(50*80), receipt.RewardPaid.Int64())
	require.Equal(t, int64(100), balance(t, replacement, "alice"))
}

func TestMigrateRejectsBalanceChange(t *testing.T) {
	e, stake, _ := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)

	lossy := token.NewLedger("ustake-v2")
	require.NoError(t, e.SetMigrator(testOwner, &copyMigrator{replacement: lossy, shave: 1}))
	require.ErrorIs(t, e.MigrateStakedAsset(testOwner, poolID), ErrMigrationBalance)

	// The old asset stays wired.
	pool, err := e.Pool(poolID)
	require.NoError(t, err)
	require.Equal(t, "ustake", pool.StakedAssetDenom)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e, stake, reward := newTestEngine(t)
	poolID := newTestPool(t, e, stake, "alice", 100)
	_, err := e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)
	require.NoError(t, e.Refresh(poolID, 100))

	pools, positions := e.Snapshot()
	require.Len(t, pools, 1)
	require.Len(t, positions, 1)

	sched, err := schedule.New(testParams())
	require.NoError(t, err)
	restored, err := New(Config{
		Schedule:     sched,
		RewardToken:  reward,
		Owner:        testOwner,
		FeeCollector: testCollector,
	})
	require.NoError(t, err)
	require.NoError(t, restored.Restore(pools, positions, func(denom string) (token.Asset, error) {
		return stake, nil
	}))
	require.Equal(t, uint64(100), restored.TotalAllocationWeight())

	want, err := e.PendingReward(poolID, "alice", 150)
	require.NoError(t, err)
	got, err := restored.PendingReward(poolID, "alice", 150)
	require.NoError(t, err)
	require.Equal(t, want.String(), got.String())
}

// memoryJournal collects receipts in order.
type memoryJournal struct {
	receipts []types.ActionReceipt
}

func (j *memoryJournal) Record(r types.ActionReceipt) {
	j.receipts = append(j.receipts, r)
}

func TestJournalReceivesReceipts(t *testing.T) {
	sched, err := schedule.New(testParams())
	require.NoError(t, err)
	stake := token.NewLedger("ustake")
	reward := token.NewLedger("ufarm")
	journal := &memoryJournal{}
	e, err := New(Config{
		Schedule:     sched,
		RewardToken:  reward,
		Owner:        testOwner,
		FeeCollector: testCollector,
		Journal:      journal,
	})
	require.NoError(t, err)
	poolID := newTestPool(t, e, stake, "alice", 100)

	_, err = e.Deposit("alice", poolID, sdkmath.NewInt(100), 0)
	require.NoError(t, err)
	_, err = e.Withdraw("alice", poolID, sdkmath.NewInt(40), 10)
	require.NoError(t, err)
	_, err = e.EmergencyWithdraw("alice", poolID, 20)
	require.NoError(t, err)

	require.Len(t, journal.receipts, 3)
	require.Equal(t, types.ActionDeposit, journal.receipts[0].Action)
	require.Equal(t, types.ActionWithdraw, journal.receipts[1].Action)
	require.Equal(t, types.ActionEmergencyWithdraw, journal.receipts[2].Action)
	require.Equal(t, int64(60), journal.receipts[2].Amount.Int64())
	require.Equal(t, uint64(10), journal.receipts[1].Tick)
}
