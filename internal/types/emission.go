/*

This file contains the emission parameter types. The parameters are
business-policy data (rate table, fee table), not structural rules, so they are
kept configurable rather than hardcoded into the accrual logic.

*/

package types

import (
	"errors"

	sdkmath "cosmossdk.io/math"
)

// FeeBpsDenominator converts fee basis points into a fraction.
const FeeBpsDenominator = 10_000

// EmissionParams describes the global reward emission stream shared by all
// pools.
//
// The instantaneous per-tick rate during epoch e is
// BaseRatePerTick * RateMultipliers[e]; the final multiplier applies to every
// epoch beyond the table, so the schedule steps down and then stays at its
// floor forever. The administrator-fee fraction follows the same table rule.
type EmissionParams struct {
	// GenesisTick is the first tick eligible for emission.
	GenesisTick uint64 `json:"genesis_tick"`

	// EpochLength is the number of ticks per schedule epoch.
	EpochLength uint64 `json:"epoch_length"`

	// BaseRatePerTick is the emission rate unit multiplied by the epoch's
	// entry in RateMultipliers.
	BaseRatePerTick sdkmath.Int `json:"base_rate_per_tick"`

	// RateMultipliers is the decay step table indexed by epoch. Must be
	// non-empty; entries are expected to be non-increasing.
	RateMultipliers []uint64 `json:"rate_multipliers"`

	// FeeBps is the administrator-fee fraction per epoch in basis points,
	// minted on top of the pool reward and paid to the fee collector. The
	// last entry applies to all later epochs.
	FeeBps []uint64 `json:"fee_bps"`
}

// Validate checks the parameters for internal consistency.
func (p EmissionParams) Validate() error {
	if p.EpochLength == 0 {
		return errors.New("epoch length must be positive")
	}
	if p.BaseRatePerTick.IsNil() || p.BaseRatePerTick.IsNegative() {
		return errors.New("base rate per tick must be a non-negative integer")
	}
	if len(p.RateMultipliers) == 0 {
		return errors.New("rate multiplier table must not be empty")
	}
	if len(p.FeeBps) == 0 {
		return errors.New("fee table must not be empty")
	}
	for _, bps := range p.FeeBps {
		if bps > FeeBpsDenominator {
			return errors.New("fee must not exceed 100%")
		}
	}
	return nil
}

// RateMultiplierAt returns the decay multiplier for an epoch, holding the last
// table entry for all epochs beyond the table.
func (p EmissionParams) RateMultiplierAt(epoch uint64) uint64 {
	if epoch >= uint64(len(p.RateMultipliers)) {
		return p.RateMultipliers[len(p.RateMultipliers)-1]
	}
	return p.RateMultipliers[epoch]
}

// FeeBpsAt returns the administrator-fee basis points for an epoch, holding
// the last table entry for all epochs beyond the table.
func (p EmissionParams) FeeBpsAt(epoch uint64) uint64 {
	if epoch >= uint64(len(p.FeeBps)) {
		return p.FeeBps[len(p.FeeBps)-1]
	}
	return p.FeeBps[epoch]
}
