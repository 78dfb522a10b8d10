/*

This file contains the read-only query surface and the snapshot/restore pair
used to persist the ledger across restarts. Snapshots are deep copies; the
caller can hold them across engine mutations.

*/

package engine

import (
	"fmt"
	"sort"

	"github.com/solstice-finance/fde/internal/token"
	"github.com/solstice-finance/fde/internal/types"
)

// AssetResolver maps a staked-asset denom back to its transfer service when
// restoring a snapshot.
type AssetResolver func(denom string) (token.Asset, error)

// Pools returns a copy of all pools in registration order.
func (e *Engine) Pools() []types.Pool {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]types.Pool, 0, len(e.pools))
	for _, ps := range e.pools {
		out = append(out, *ps.pool)
	}
	return out
}

// Pool returns a copy of one pool.
func (e *Engine) Pool(poolID types.PoolID) (types.Pool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ps, err := e.poolLocked(poolID)
	if err != nil {
		return types.Pool{}, err
	}
	return *ps.pool, nil
}

// Position returns a copy of one participant's position in one pool. A
// participant with no history gets an empty position, matching the implicit
// creation on first deposit.
func (e *Engine) Position(poolID types.PoolID, participant string) (types.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.poolLocked(poolID); err != nil {
		return types.Position{}, err
	}
	return *e.positionLocked(poolID, participant), nil
}

// PositionsOf returns all of a participant's positions across pools.
func (e *Engine) PositionsOf(participant string) []types.PositionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]types.PositionRecord, 0)
	for key, pos := range e.positions {
		if key.participant != participant {
			continue
		}
		out = append(out, types.PositionRecord{
			Pool:        key.pool,
			Participant: key.participant,
			Position:    *pos,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pool < out[j].Pool })
	return out
}

// Snapshot returns a deep copy of all pools and positions for persistence.
func (e *Engine) Snapshot() ([]types.Pool, []types.PositionRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pools := make([]types.Pool, 0, len(e.pools))
	for _, ps := range e.pools {
		pools = append(pools, *ps.pool)
	}
	positions := make([]types.PositionRecord, 0, len(e.positions))
	for key, pos := range e.positions {
		positions = append(positions, types.PositionRecord{
			Pool:        key.pool,
			Participant: key.participant,
			Position:    *pos,
		})
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Pool != positions[j].Pool {
			return positions[i].Pool < positions[j].Pool
		}
		return positions[i].Participant < positions[j].Participant
	})
	return pools, positions
}

// Restore loads a persisted snapshot into an empty engine, resolving each
// pool's staked asset by denom.
func (e *Engine) Restore(pools []types.Pool, positions []types.PositionRecord, resolve AssetResolver) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pools) > 0 || len(e.positions) > 0 {
		return fmt.Errorf("restore requires an empty engine")
	}

	totalWeight := uint64(0)
	for i := range pools {
		pool := pools[i]
		asset, err := resolve(pool.StakedAssetDenom)
		if err != nil {
			return fmt.Errorf("resolving asset %q for pool %d: %w", pool.StakedAssetDenom, pool.ID, err)
		}
		e.pools = append(e.pools, &poolState{pool: &pool, asset: asset})
		totalWeight += pool.AllocationWeight
	}
	sort.Slice(e.pools, func(i, j int) bool { return e.pools[i].pool.ID < e.pools[j].pool.ID })

	for _, rec := range positions {
		pos := rec.Position
		e.positions[positionKey{rec.Pool, rec.Participant}] = &pos
	}
	e.totalWeight = totalWeight

	e.log.Info().
		Int("pools", len(e.pools)).
		Int("positions", len(e.positions)).
		Msg("Ledger snapshot restored")
	return nil
}
