/*

This file manages the persistent tick watermark: the highest tick the service
loop has fully processed. It survives restarts so the dashboard can tell a
stalled tick source from a freshly started service.

*/

package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// GetLastSeenTick retrieves the persisted tick watermark.
func GetLastSeenTick() (uint64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `SELECT last_seen_tick FROM tick_watermark WHERE id = 1;`

	var tick int64
	row := DB.QueryRow(query)
	err := row.Scan(&tick)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn().Msg("No tick watermark row found, starting from 0")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get tick watermark: %w", err)
	}
	return uint64(tick), nil
}

// SetLastSeenTick advances the persisted tick watermark. Lower values are
// ignored so the watermark never runs backwards.
func SetLastSeenTick(tick uint64) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	updateQuery := `
		UPDATE tick_watermark
		SET last_seen_tick = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1 AND last_seen_tick < $1;`

	if _, err := DB.Exec(updateQuery, int64(tick)); err != nil {
		return fmt.Errorf("failed to set tick watermark to %d: %w", tick, err)
	}
	log.Debug().Uint64("tick", tick).Msg("Tick watermark updated")
	return nil
}
