/*

This file holds the lazy per-pool accrual arithmetic. A pool's stored state
lags behind the tick counter; its true state is always recoverable by
integrating the schedule over [lastRefreshTick, now). accrueLocked computes
that catch-up without side effects, and both the persisting refresh path and
the read-only pending-reward path share it, so the simulated and committed
numbers can never diverge.

*/

package engine

import (
	sdkmath "cosmossdk.io/math"

	"github.com/solstice-finance/fde/internal/types"
)

// accrual is the result of catching a pool up to a tick: the reward to mint
// to the treasury for the pool's depositors, the administrator fee to mint on
// top of it, and the accumulator value as of that tick.
type accrual struct {
	poolReward     sdkmath.Int
	feeReward      sdkmath.Int
	rewardPerShare sdkmath.Int
}

// accrueLocked computes, without mutating anything, what a refresh of the
// pool at now would mint and what the accumulator would become.
//
// A tick at or before the last refresh yields a no-op accrual. A pool whose
// custody holds no stake advances without minting: emission for an idle pool
// is dropped, never banked.
func (e *Engine) accrueLocked(ps *poolState, now uint64) (accrual, error) {
	acc := accrual{
		poolReward:     sdkmath.ZeroInt(),
		feeReward:      sdkmath.ZeroInt(),
		rewardPerShare: ps.pool.RewardPerShare,
	}
	if now <= ps.pool.LastRefreshTick {
		return acc, nil
	}

	staked, err := ps.asset.BalanceOf(ps.pool.CustodyAccount())
	if err != nil {
		return accrual{}, ErrBalanceQuery.Wrap(err.Error())
	}
	if staked.IsZero() || ps.pool.AllocationWeight == 0 || e.totalWeight == 0 {
		return acc, nil
	}

	gross, err := e.sched.Integrate(ps.pool.LastRefreshTick, now)
	if err != nil {
		return accrual{}, err
	}

	// The pool's slice of the global emission, floor-rounded. The truncated
	// remainder is permanently dropped.
	acc.poolReward = gross.
		Mul(sdkmath.NewIntFromUint64(ps.pool.AllocationWeight)).
		Quo(sdkmath.NewIntFromUint64(e.totalWeight))

	epoch, err := e.sched.EpochOf(now)
	if err != nil {
		return accrual{}, err
	}
	feeBps := e.sched.Params().FeeBpsAt(epoch)
	acc.feeReward = acc.poolReward.
		MulRaw(int64(feeBps)).
		QuoRaw(types.FeeBpsDenominator)

	acc.rewardPerShare = ps.pool.RewardPerShare.Add(
		acc.poolReward.Mul(types.Precision).Quo(staked))
	return acc, nil
}

// mintLocked executes the external mints an accrual calls for.
func (e *Engine) mintLocked(acc accrual) error {
	if acc.poolReward.IsPositive() {
		if err := e.reward.Mint(TreasuryAccount, acc.poolReward); err != nil {
			return ErrRewardService.Wrap(err.Error())
		}
	}
	if acc.feeReward.IsPositive() {
		if err := e.reward.Mint(e.feeCollector, acc.feeReward); err != nil {
			return ErrRewardService.Wrap(err.Error())
		}
	}
	return nil
}

// settleLocked mints an accrual and commits it as one unit. Once the mint
// succeeds the accumulator advance is recorded immediately, so an abort later
// in the action can never cause the same interval to be minted twice.
func (e *Engine) settleLocked(ps *poolState, now uint64, acc accrual) error {
	if err := e.mintLocked(acc); err != nil {
		return err
	}
	e.commitAccrualLocked(ps, now, acc)
	return nil
}

// refundStakeLocked reverses a principal transfer after a later step of the
// action failed. The tokens were just moved under the same lock, so the
// refund is expected to succeed; if the service still rejects it the ledgers
// need manual reconciliation and the error is logged at full volume.
func (e *Engine) refundStakeLocked(ps *poolState, from, to string, amount sdkmath.Int) {
	if !amount.IsPositive() {
		return
	}
	if err := ps.asset.Transfer(from, to, amount); err != nil {
		e.log.Error().
			Err(err).
			Uint64("pool", uint64(ps.pool.ID)).
			Str("from", from).
			Str("to", to).
			Str("amount", amount.String()).
			Msg("Failed to refund principal after aborted action")
	}
}

// commitAccrualLocked persists an accrual onto the pool. Both stored fields
// are monotonically non-decreasing.
func (e *Engine) commitAccrualLocked(ps *poolState, now uint64, acc accrual) {
	ps.pool.RewardPerShare = acc.rewardPerShare
	if now > ps.pool.LastRefreshTick {
		ps.pool.LastRefreshTick = now
	}
}
