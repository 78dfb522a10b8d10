package engine

import (
	sdkerrors "cosmossdk.io/errors"
)

const codespace = "farm"

// Engine error taxonomy. Precondition and capability violations are rejected
// before any state mutation; external-service failures abort the action with
// no state committed. A reward-treasury shortfall is deliberately NOT an
// error: payouts are capped at the available balance so reward-token supply
// issues can never block a principal withdrawal.
var (
	ErrInvalidAmount     = sdkerrors.Register(codespace, 2, "amount must be a non-negative integer")
	ErrUnknownPool       = sdkerrors.Register(codespace, 3, "unknown pool")
	ErrInsufficientStake = sdkerrors.Register(codespace, 4, "withdraw amount exceeds staked balance")
	ErrTransferFailed    = sdkerrors.Register(codespace, 5, "staked-asset transfer rejected")
	ErrRewardService     = sdkerrors.Register(codespace, 6, "reward-token service failure")
	ErrUnauthorized      = sdkerrors.Register(codespace, 7, "caller lacks the administrator capability")
	ErrDuplicateAsset    = sdkerrors.Register(codespace, 8, "staked asset already registered to a pool")
	ErrNoMigrator        = sdkerrors.Register(codespace, 9, "no migrator configured")
	ErrMigrationBalance  = sdkerrors.Register(codespace, 10, "migration did not preserve the custody balance")
	ErrBalanceQuery      = sdkerrors.Register(codespace, 11, "staked-asset balance query failed")
)
