/*

This file contains the action receipt type recorded for every externally
triggered state transition. Receipts are the observable event stream for
indexing and the dashboard; they are not consulted by the accrual logic.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// ActionType names the externally triggered engine transitions.
type ActionType string

const (
	ActionDeposit           ActionType = "DEPOSIT"
	ActionWithdraw          ActionType = "WITHDRAW"
	ActionEmergencyWithdraw ActionType = "EMERGENCY_WITHDRAW"
)

// ActionReceipt records one completed engine action.
type ActionReceipt struct {
	ReceiptID   int64       `json:"receipt_id,omitempty"` // Auto-incremented by DB
	Action      ActionType  `json:"action"`
	Pool        PoolID      `json:"pool_id"`
	Participant string      `json:"participant"`
	Amount      sdkmath.Int `json:"amount"`
	RewardPaid  sdkmath.Int `json:"reward_paid"`
	Tick        uint64      `json:"tick"`
	Timestamp   time.Time   `json:"timestamp"`
}
