/*

This is the custom type for farm pools which contains all the state needed for
lazy reward accrual.

*/

package types

import (
	"strconv"

	sdkmath "cosmossdk.io/math"
)

type PoolID uint64

// Precision is the fixed-point scale for the reward-per-share accumulator.
// All accumulator math is integer-only with floor rounding.
var Precision = sdkmath.NewInt(1_000_000_000_000) // 1e12

// Pool represents one stakeable asset stream.
//
// RewardPerShare and LastRefreshTick are only brought up to date when the pool
// is touched (deposit, withdraw, explicit refresh). Both are monotonically
// non-decreasing.
type Pool struct {
	ID PoolID `json:"id"`

	// StakedAssetDenom identifies the external asset being staked. The engine
	// resolves it to a transfer/balance service at wiring time.
	StakedAssetDenom string `json:"staked_asset_denom"`

	// AllocationWeight is this pool's share of the global emission:
	// weight / sum(all pool weights).
	AllocationWeight uint64 `json:"allocation_weight"`

	// LastRefreshTick is the last tick at which the accumulator was updated.
	LastRefreshTick uint64 `json:"last_refresh_tick"`

	// RewardPerShare is the cumulative reward earned per unit of stake since
	// pool creation, scaled by Precision.
	RewardPerShare sdkmath.Int `json:"reward_per_share"`
}

// CustodyAccount is the ledger account holding this pool's staked deposits.
func (p *Pool) CustodyAccount() string {
	return PoolCustodyAccount(p.ID)
}

// PoolCustodyAccount derives the custody account name for a pool id.
func PoolCustodyAccount(id PoolID) string {
	return "farm/pool/" + strconv.FormatUint(uint64(id), 10)
}
