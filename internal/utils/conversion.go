/*
This file contains utility functions for converting ledger integer amounts
into human-readable display values.
*/

package utils

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

var (
	ErrInvalidDecimals = errors.New("decimals is invalid")
	ErrAmountNil       = errors.New("amount is nil")
	ErrAmountNegative  = errors.New("amount is negative")
	ErrNotFinite       = errors.New("value is not finite")
)

// DisplayAmount converts a base-unit ledger amount to a float64 display value
// by shifting the given number of decimals. Display only; never feed the
// result back into accounting.
func DisplayAmount(amount sdkmath.Int, decimals int) (float64, error) {
	if decimals < 0 || decimals > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidDecimals, decimals)
	}
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}

	decAmount := sdkmath.LegacyNewDecFromInt(amount)
	factor := sdkmath.LegacyNewDec(10).Power(uint64(decimals))

	result, err := decAmount.Quo(factor).Float64()
	if err != nil {
		return 0, fmt.Errorf("display conversion failed: %w", err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, result)
	}
	return result, nil
}
