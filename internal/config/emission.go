/*

This file contains the default emission parameters for the farm.

The curve and the fee split are business policy, not structural rules: the
engine treats both as data, so deployments tune them here (or via GENESIS_TICK
in the environment) without touching the accrual logic.

*/

package config

import (
	sdkmath "cosmossdk.io/math"

	"github.com/solstice-finance/fde/internal/types"
)

// DefaultEmissionParams is the baseline emission curve used when no override
// is configured.
var DefaultEmissionParams = types.EmissionParams{
	GenesisTick: 0, // Overridden by GENESIS_TICK for live chains.

	EpochLength: 100_000, // Roughly one week of ticks at ~6s blocks.
	// Rationale: refreshes happen every service cycle (minutes), so a pool
	// would have to be neglected for a week before an interval even spans
	// one epoch boundary.

	BaseRatePerTick: sdkmath.NewInt(1_250_000), // 1.25 reward tokens (6 decimals) per tick.

	RateMultipliers: []uint64{32, 32, 16, 8, 4, 2, 1},
	// Rationale: a doubled launch rate held for two epochs, then straight
	// halvings down to the floor. The final multiplier holds forever, so
	// emission approaches but never reaches zero.

	FeeBps: []uint64{1000, 1000, 500},
	// Administrator fee minted on top of pool emission: 10% during the two
	// launch epochs to fund operations, 5% thereafter.
}
