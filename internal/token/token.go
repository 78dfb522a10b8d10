// Package token defines the minimal external asset contracts the farm engine
// consumes, and an in-process ledger implementation of both.
//
// The engine never assumes more than these capabilities: balance query, exact
// whole-amount transfer, and (for the reward token only) a privileged mint.
// Partial transfers do not exist; a transfer either moves the exact requested
// amount or fails.
package token

import (
	sdkmath "cosmossdk.io/math"
)

// Asset is the staked-asset service: the externally owned fungible token that
// participants deposit into pools.
type Asset interface {
	// Denom identifies the asset.
	Denom() string

	// BalanceOf returns the holder's current balance.
	BalanceOf(holder string) (sdkmath.Int, error)

	// Transfer moves exactly amount from one account to another. It fails,
	// moving nothing, if the source balance is insufficient.
	Transfer(from, to string, amount sdkmath.Int) error
}

// RewardToken is the globally minted incentive token service.
type RewardToken interface {
	// Denom identifies the token.
	Denom() string

	// BalanceOf returns the holder's current balance.
	BalanceOf(holder string) (sdkmath.Int, error)

	// Mint creates new supply in the recipient's account. Privileged:
	// callable only by the engine that owns the emission stream.
	Mint(recipient string, amount sdkmath.Int) error

	// Transfer moves exactly amount between accounts, failing on shortfall.
	Transfer(from, to string, amount sdkmath.Int) error
}
