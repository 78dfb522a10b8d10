/*

This file contains the types for participant positions, the per-(pool, staker)
state the engine settles rewards against.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// Position is one participant's stake in one pool.
//
// RewardDebt equals StakedAmount * pool.RewardPerShare / Precision as of the
// last reconciliation; it is the reward already "priced in" and is subtracted
// when computing pending reward. Immediately after any reconciliation the
// pending reward of a position is zero by construction.
type Position struct {
	StakedAmount sdkmath.Int `json:"staked_amount"`
	RewardDebt   sdkmath.Int `json:"reward_debt"`
}

// NewPosition returns an empty position. Positions are created implicitly on
// first deposit and persist at zero stake after full withdrawal.
func NewPosition() *Position {
	return &Position{
		StakedAmount: sdkmath.ZeroInt(),
		RewardDebt:   sdkmath.ZeroInt(),
	}
}

// PositionRecord is a flattened position row used for persistence and the
// query API.
type PositionRecord struct {
	Pool        PoolID   `json:"pool_id"`
	Participant string   `json:"participant"`
	Position    Position `json:"position"`
}
