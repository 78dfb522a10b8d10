// ./internal/state/farm_store.go
package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/solstice-finance/fde/internal/types"
)

// SaveLedgerSnapshot persists the full pool and position state in one
// transaction, replacing the previous snapshot.
func SaveLedgerSnapshot(pools []types.Pool, positions []types.PositionRecord) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM farm_positions`); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM farm_pools`); err != nil {
		return fmt.Errorf("failed to clear pools: %w", err)
	}

	poolInsert := `
		INSERT INTO farm_pools (pool_id, staked_asset_denom, allocation_weight, last_refresh_tick, reward_per_share, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP);
	`
	for _, pool := range pools {
		_, err := tx.Exec(poolInsert,
			int64(pool.ID), pool.StakedAssetDenom, int64(pool.AllocationWeight),
			int64(pool.LastRefreshTick), pool.RewardPerShare.String())
		if err != nil {
			return fmt.Errorf("failed to insert pool %d: %w", pool.ID, err)
		}
	}

	posInsert := `
		INSERT INTO farm_positions (pool_id, participant, staked_amount, reward_debt, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP);
	`
	for _, rec := range positions {
		_, err := tx.Exec(posInsert,
			int64(rec.Pool), rec.Participant,
			rec.Position.StakedAmount.String(), rec.Position.RewardDebt.String())
		if err != nil {
			return fmt.Errorf("failed to insert position (%d, %s): %w", rec.Pool, rec.Participant, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger snapshot: %w", err)
	}

	log.Debug().
		Int("pools", len(pools)).
		Int("positions", len(positions)).
		Msg("Ledger snapshot saved to database")
	return nil
}

// LoadLedgerSnapshot reads back the persisted pools and positions.
func LoadLedgerSnapshot() ([]types.Pool, []types.PositionRecord, error) {
	if DB == nil {
		return nil, nil, fmt.Errorf("database not initialized")
	}

	poolRows, err := DB.Query(`
		SELECT pool_id, staked_asset_denom, allocation_weight, last_refresh_tick, reward_per_share
		FROM farm_pools ORDER BY pool_id ASC
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query pools: %w", err)
	}
	defer poolRows.Close()

	var pools []types.Pool
	for poolRows.Next() {
		var (
			id, weight, lastTick int64
			denom, rpsStr        string
		)
		if err := poolRows.Scan(&id, &denom, &weight, &lastTick, &rpsStr); err != nil {
			return nil, nil, fmt.Errorf("failed to scan pool row: %w", err)
		}
		rps, ok := sdkmath.NewIntFromString(rpsStr)
		if !ok {
			return nil, nil, fmt.Errorf("invalid reward_per_share %q for pool %d", rpsStr, id)
		}
		pools = append(pools, types.Pool{
			ID:               types.PoolID(id),
			StakedAssetDenom: denom,
			AllocationWeight: uint64(weight),
			LastRefreshTick:  uint64(lastTick),
			RewardPerShare:   rps,
		})
	}
	if err := poolRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("pool rows iteration failed: %w", err)
	}

	posRows, err := DB.Query(`
		SELECT pool_id, participant, staked_amount, reward_debt
		FROM farm_positions ORDER BY pool_id ASC, participant ASC
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer posRows.Close()

	var positions []types.PositionRecord
	for posRows.Next() {
		var (
			id                 int64
			participant        string
			stakedStr, debtStr string
		)
		if err := posRows.Scan(&id, &participant, &stakedStr, &debtStr); err != nil {
			return nil, nil, fmt.Errorf("failed to scan position row: %w", err)
		}
		staked, ok := sdkmath.NewIntFromString(stakedStr)
		if !ok {
			return nil, nil, fmt.Errorf("invalid staked_amount %q for (%d, %s)", stakedStr, id, participant)
		}
		debt, ok := sdkmath.NewIntFromString(debtStr)
		if !ok {
			return nil, nil, fmt.Errorf("invalid reward_debt %q for (%d, %s)", debtStr, id, participant)
		}
		positions = append(positions, types.PositionRecord{
			Pool:        types.PoolID(id),
			Participant: participant,
			Position: types.Position{
				StakedAmount: staked,
				RewardDebt:   debt,
			},
		})
	}
	if err := posRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("position rows iteration failed: %w", err)
	}

	log.Info().
		Int("pools", len(pools)).
		Int("positions", len(positions)).
		Msg("Ledger snapshot loaded from database")
	return pools, positions, nil
}
