/*

This file implements the reward emission schedule: a pure step function from
tick to per-tick emission rate, and the integral of that function over an
arbitrary tick interval.

*/

package schedule

import (
	sdkerrors "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/solstice-finance/fde/internal/types"
)

var (
	// ErrBeforeGenesis is returned for any tick earlier than the genesis tick.
	ErrBeforeGenesis = sdkerrors.Register("schedule", 2, "tick precedes genesis")
	// ErrInvalidInterval is returned when an interval's end precedes its start.
	ErrInvalidInterval = sdkerrors.Register("schedule", 3, "interval end precedes start")
)

// Schedule is the deterministic emission curve. It has no mutable state; all
// methods are pure functions of the configured parameters.
type Schedule struct {
	params types.EmissionParams
}

// New validates the parameters and returns a schedule over them.
func New(params types.EmissionParams) (*Schedule, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Schedule{params: params}, nil
}

// Params returns the schedule's emission parameters.
func (s *Schedule) Params() types.EmissionParams {
	return s.params
}

// GenesisTick returns the first tick eligible for emission.
func (s *Schedule) GenesisTick() uint64 {
	return s.params.GenesisTick
}

// EpochOf maps a tick to its schedule epoch. A tick sitting exactly on an
// epoch boundary belongs to the new epoch.
func (s *Schedule) EpochOf(tick uint64) (uint64, error) {
	if tick < s.params.GenesisTick {
		return 0, sdkerrors.Wrapf(ErrBeforeGenesis, "tick %d, genesis %d", tick, s.params.GenesisTick)
	}
	return (tick - s.params.GenesisTick) / s.params.EpochLength, nil
}

// RateAt returns the instantaneous per-tick emission rate at a tick.
func (s *Schedule) RateAt(tick uint64) (sdkmath.Int, error) {
	epoch, err := s.EpochOf(tick)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return s.rateForEpoch(epoch), nil
}

func (s *Schedule) rateForEpoch(epoch uint64) sdkmath.Int {
	mult := s.params.RateMultiplierAt(epoch)
	return s.params.BaseRatePerTick.Mul(sdkmath.NewIntFromUint64(mult))
}

// Integrate sums the emission rate over the half-open interval [from, to).
//
// Pools are refreshed at least once per epoch in normal operation, so the
// interval usually crosses at most one epoch boundary. Longer spans are still
// computed exactly by walking every boundary in the interval; once the rate
// table is exhausted the remaining span is settled in a single step at the
// floor rate, so the walk is bounded by the table length.
func (s *Schedule) Integrate(from, to uint64) (sdkmath.Int, error) {
	if from < s.params.GenesisTick {
		return sdkmath.Int{}, sdkerrors.Wrapf(ErrBeforeGenesis, "interval start %d, genesis %d", from, s.params.GenesisTick)
	}
	if to < from {
		return sdkmath.Int{}, sdkerrors.Wrapf(ErrInvalidInterval, "[%d, %d)", from, to)
	}

	total := sdkmath.ZeroInt()
	lastEpoch := uint64(len(s.params.RateMultipliers) - 1)
	cur := from
	for cur < to {
		epoch := (cur - s.params.GenesisTick) / s.params.EpochLength
		rate := s.rateForEpoch(epoch)
		if epoch >= lastEpoch {
			// Constant floor rate from here on.
			total = total.Add(rate.Mul(sdkmath.NewIntFromUint64(to - cur)))
			break
		}
		boundary := s.params.GenesisTick + (epoch+1)*s.params.EpochLength
		end := to
		if boundary < end {
			end = boundary
		}
		total = total.Add(rate.Mul(sdkmath.NewIntFromUint64(end - cur)))
		cur = end
	}
	return total, nil
}
