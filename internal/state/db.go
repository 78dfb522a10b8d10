// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS farm_pools (
			pool_id BIGINT PRIMARY KEY,
			staked_asset_denom VARCHAR(128) NOT NULL,
			allocation_weight BIGINT NOT NULL,
			last_refresh_tick BIGINT NOT NULL,
			reward_per_share NUMERIC(78, 0) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_farm_pools_denom UNIQUE (staked_asset_denom)
		);

		CREATE TABLE IF NOT EXISTS farm_positions (
			pool_id BIGINT NOT NULL REFERENCES farm_pools(pool_id),
			participant VARCHAR(128) NOT NULL,
			staked_amount NUMERIC(78, 0) NOT NULL,
			reward_debt NUMERIC(78, 0) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (pool_id, participant)
		);
		CREATE INDEX IF NOT EXISTS idx_farm_positions_participant ON farm_positions(participant);

		CREATE TABLE IF NOT EXISTS action_receipts (
			receipt_id SERIAL PRIMARY KEY,
			action_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			action_type VARCHAR(32) NOT NULL,
			pool_id BIGINT NOT NULL,
			participant VARCHAR(128) NOT NULL,
			amount NUMERIC(78, 0) NOT NULL,
			reward_paid NUMERIC(78, 0) NOT NULL,
			tick BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_action_receipts_timestamp ON action_receipts(action_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_action_receipts_pool_id ON action_receipts(pool_id);
		CREATE INDEX IF NOT EXISTS idx_action_receipts_participant ON action_receipts(participant);

		-- Tick watermark for persistent progress tracking across restarts
		CREATE TABLE IF NOT EXISTS tick_watermark (
			id INTEGER PRIMARY KEY DEFAULT 1,
			last_seen_tick BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		INSERT INTO tick_watermark (id, last_seen_tick)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
