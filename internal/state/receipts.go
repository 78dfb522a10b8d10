// ./internal/state/receipts.go
package state

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/solstice-finance/fde/internal/types"
)

// SaveActionReceipt inserts one receipt and returns its id.
func SaveActionReceipt(receipt types.ActionReceipt) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO action_receipts (action_timestamp, action_type, pool_id, participant, amount, reward_paid, tick)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING receipt_id;
	`
	var receiptID int64
	err := DB.QueryRow(
		query,
		receipt.Timestamp, string(receipt.Action), int64(receipt.Pool), receipt.Participant,
		receipt.Amount.String(), receipt.RewardPaid.String(), int64(receipt.Tick),
	).Scan(&receiptID)
	if err != nil {
		return 0, fmt.Errorf("failed to save action receipt: %w", err)
	}
	return receiptID, nil
}

// GetRecentReceipts retrieves recent action receipts, newest first.
func GetRecentReceipts(limit int) ([]types.ActionReceipt, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 20 // Default limit
	}

	query := `
		SELECT receipt_id, action_timestamp, action_type, pool_id, participant, amount, reward_paid, tick
		FROM action_receipts
		ORDER BY receipt_id DESC
		LIMIT $1
	`
	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent receipts: %w", err)
	}
	defer rows.Close()

	var receipts []types.ActionReceipt
	for rows.Next() {
		var (
			receipt            types.ActionReceipt
			action             string
			poolID, tick       int64
			amountStr, paidStr string
		)
		if err := rows.Scan(&receipt.ReceiptID, &receipt.Timestamp, &action, &poolID,
			&receipt.Participant, &amountStr, &paidStr, &tick); err != nil {
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		amount, ok := sdkmath.NewIntFromString(amountStr)
		if !ok {
			return nil, fmt.Errorf("invalid amount %q in receipt %d", amountStr, receipt.ReceiptID)
		}
		paid, ok := sdkmath.NewIntFromString(paidStr)
		if !ok {
			return nil, fmt.Errorf("invalid reward_paid %q in receipt %d", paidStr, receipt.ReceiptID)
		}
		receipt.Action = types.ActionType(action)
		receipt.Pool = types.PoolID(poolID)
		receipt.Amount = amount
		receipt.RewardPaid = paid
		receipt.Tick = uint64(tick)
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("receipt rows iteration failed: %w", err)
	}
	return receipts, nil
}

// ReceiptJournal persists engine receipts to the database. Journal writes are
// observability output, so a failed insert is logged and dropped rather than
// failing the action that produced it.
type ReceiptJournal struct{}

// Record implements the engine's journal interface.
func (ReceiptJournal) Record(receipt types.ActionReceipt) {
	if _, err := SaveActionReceipt(receipt); err != nil {
		log.Error().Err(err).
			Str("action", string(receipt.Action)).
			Uint64("pool", uint64(receipt.Pool)).
			Msg("Failed to persist action receipt")
	}
}
