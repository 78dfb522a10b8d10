/*

This file contains the administrator surface: pool registration, allocation
weight updates, ownership transfer, and staked-asset migration. All of it is
gated on the single owner identity. Weight mutations refresh every pool first
so a changed emission split only ever applies from the current tick forward.

*/

package engine

import (
	sdkmath "cosmossdk.io/math"

	"github.com/solstice-finance/fde/internal/token"
	"github.com/solstice-finance/fde/internal/types"
)

func (e *Engine) requireOwnerLocked(actor string) error {
	if actor != e.owner {
		return ErrUnauthorized.Wrapf("actor %q", actor)
	}
	return nil
}

// Owner returns the current administrator identity.
func (e *Engine) Owner() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.owner
}

// TotalAllocationWeight returns the sum of all pool weights.
func (e *Engine) TotalAllocationWeight() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalWeight
}

// RegisterPool adds a new pool for a staked asset. Each asset may back at
// most one pool; a duplicate registration would double-count the shared
// custody balance. The new pool starts accruing at the later of now and the
// genesis tick.
func (e *Engine) RegisterPool(actor string, asset token.Asset, weight uint64, now uint64) (types.PoolID, error) {
	if asset == nil {
		return 0, ErrUnknownPool.Wrap("nil staked-asset service")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwnerLocked(actor); err != nil {
		return 0, err
	}
	for _, ps := range e.pools {
		if ps.pool.StakedAssetDenom == asset.Denom() {
			return 0, ErrDuplicateAsset.Wrapf("denom %q in pool %d", asset.Denom(), ps.pool.ID)
		}
	}

	// Settle every existing pool before the total weight changes.
	if err := e.refreshAllLocked(now); err != nil {
		return 0, err
	}

	start := now
	if genesis := e.sched.GenesisTick(); start < genesis {
		start = genesis
	}
	nextID := types.PoolID(1)
	for _, ps := range e.pools {
		if ps.pool.ID >= nextID {
			nextID = ps.pool.ID + 1
		}
	}
	pool := &types.Pool{
		ID:               nextID,
		StakedAssetDenom: asset.Denom(),
		AllocationWeight: weight,
		LastRefreshTick:  start,
		RewardPerShare:   sdkmath.ZeroInt(),
	}
	e.pools = append(e.pools, &poolState{pool: pool, asset: asset})
	e.totalWeight += weight

	e.log.Info().
		Uint64("pool", uint64(pool.ID)).
		Str("denom", pool.StakedAssetDenom).
		Uint64("weight", weight).
		Uint64("startTick", start).
		Msg("Pool registered")
	return pool.ID, nil
}

// SetAllocationWeight changes a pool's share of the global emission. All
// pools are refreshed at the current tick first, so already-accrued
// reward-per-share is never retroactively altered.
func (e *Engine) SetAllocationWeight(actor string, poolID types.PoolID, weight uint64, now uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwnerLocked(actor); err != nil {
		return err
	}
	ps, err := e.poolLocked(poolID)
	if err != nil {
		return err
	}
	if err := e.refreshAllLocked(now); err != nil {
		return err
	}

	e.totalWeight = e.totalWeight - ps.pool.AllocationWeight + weight
	ps.pool.AllocationWeight = weight

	e.log.Info().
		Uint64("pool", uint64(poolID)).
		Uint64("weight", weight).
		Uint64("totalWeight", e.totalWeight).
		Msg("Allocation weight updated")
	return nil
}

// TransferOwnership hands the administrator capability to a new identity.
func (e *Engine) TransferOwnership(actor, newOwner string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwnerLocked(actor); err != nil {
		return err
	}
	if newOwner == "" {
		return ErrUnauthorized.Wrap("new owner cannot be empty")
	}
	e.owner = newOwner
	e.log.Warn().Str("newOwner", newOwner).Msg("Ownership transferred")
	return nil
}

// SetMigrator configures the staked-asset migration target.
func (e *Engine) SetMigrator(actor string, m Migrator) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwnerLocked(actor); err != nil {
		return err
	}
	e.migrator = m
	return nil
}

// MigrateStakedAsset swaps a pool's staked-asset service for the one the
// configured migrator produces. The custody balance must be preserved
// exactly or the migration is rejected and the old service kept.
func (e *Engine) MigrateStakedAsset(actor string, poolID types.PoolID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOwnerLocked(actor); err != nil {
		return err
	}
	if e.migrator == nil {
		return ErrNoMigrator
	}
	ps, err := e.poolLocked(poolID)
	if err != nil {
		return err
	}

	custody := ps.pool.CustodyAccount()
	before, err := ps.asset.BalanceOf(custody)
	if err != nil {
		return ErrBalanceQuery.Wrap(err.Error())
	}
	newAsset, err := e.migrator.Migrate(ps.asset, custody, before)
	if err != nil {
		return ErrTransferFailed.Wrap(err.Error())
	}
	after, err := newAsset.BalanceOf(custody)
	if err != nil {
		return ErrBalanceQuery.Wrap(err.Error())
	}
	if !after.Equal(before) {
		return ErrMigrationBalance.Wrapf("before %s, after %s", before, after)
	}

	ps.asset = newAsset
	ps.pool.StakedAssetDenom = newAsset.Denom()
	e.log.Warn().
		Uint64("pool", uint64(poolID)).
		Str("denom", newAsset.Denom()).
		Msg("Staked asset migrated")
	return nil
}
