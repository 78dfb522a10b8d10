package fde

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/solstice-finance/fde/internal/engine"
	"github.com/solstice-finance/fde/internal/logger"
	"github.com/solstice-finance/fde/internal/reservoir"
	"github.com/solstice-finance/fde/internal/state"
	"github.com/solstice-finance/fde/internal/ticksource"
)

// FDE is the farm distribution engine service: it drives the reward ledger
// from the tick source, releases the fee reservoir when its timelock allows,
// and checkpoints the ledger to the database after every cycle.
type FDE struct {
	logger    zerolog.Logger
	engine    *engine.Engine
	reservoir *reservoir.Reservoir
	ticks     ticksource.Source

	cycleCount int
}

// Config holds the configuration for creating a new FDE instance
type Config struct {
	Engine     *engine.Engine
	Reservoir  *reservoir.Reservoir
	TickSource ticksource.Source
}

// NewFDE creates a new FDE instance with dependency injection
func NewFDE(cfg Config) (*FDE, error) {
	if err := validateFDEConfig(cfg); err != nil {
		return nil, fmt.Errorf("FDE configuration validation failed: %w", err)
	}

	f := &FDE{
		logger:    logger.GetForComponent("fde_core"),
		engine:    cfg.Engine,
		reservoir: cfg.Reservoir,
		ticks:     cfg.TickSource,
	}

	f.logger.Info().
		Str("owner", f.engine.Owner()).
		Int("pools", len(f.engine.Pools())).
		Msg("FDE instance created successfully")

	return f, nil
}

func validateFDEConfig(cfg Config) error {
	if cfg.Engine == nil {
		return fmt.Errorf("engine cannot be nil")
	}
	if cfg.Reservoir == nil {
		return fmt.Errorf("reservoir cannot be nil")
	}
	if cfg.TickSource == nil {
		return fmt.Errorf("tick source cannot be nil")
	}
	return nil
}

// RunLoop starts the main FDE loop with the specified interval
func (f *FDE) RunLoop(ctx context.Context, interval time.Duration) {
	f.logger.Info().
		Dur("interval", interval).
		Msg("Starting FDE main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	f.cycleCount++
	f.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			f.logger.Info().Msg("FDE loop stopped due to context cancellation")
			return
		case <-ticker.C:
			f.cycleCount++
			f.RunCycle(ctx)
		}
	}
}

// RunCycle executes one accrual cycle: poll the tick source, refresh every
// pool up to the observed tick, try a reservoir release, then checkpoint.
func (f *FDE) RunCycle(ctx context.Context) {
	cycleStartTime := time.Now()

	// Cycle ID for tracing logs across the entire cycle
	cycleID := uuid.New().String()
	cycleLogger := f.logger.With().Str("cycle_id", cycleID).Int("cycle", f.cycleCount).Logger()

	cycleLogger.Info().Msg("--- Starting FDE Cycle ---")

	tick, err := f.ticks.Current(ctx)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: failed to read tick source")
		return
	}
	cycleLogger.Info().Uint64("tick", tick).Msg("Tick observed")

	if err := f.engine.RefreshAll(tick); err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: failed to refresh pools")
		return
	}

	released, err := f.reservoir.Release(tick)
	switch {
	case err == nil:
		if released.IsPositive() {
			cycleLogger.Info().Str("amount", released.String()).Msg("Reservoir released to operator")
		}
	case reservoir.ErrReleaseTooSoon.Is(err):
		cycleLogger.Debug().Uint64("tick", tick).Msg("Reservoir still timelocked")
	default:
		// Release failures do not block accrual; the next cycle retries.
		cycleLogger.Error().Err(err).Msg("Reservoir release failed")
	}

	f.Checkpoint()

	if err := state.SetLastSeenTick(tick); err != nil {
		cycleLogger.Error().Err(err).Msg("Failed to advance tick watermark")
	}

	cycleLogger.Info().
		Uint64("tick", tick).
		Int("pools", len(f.engine.Pools())).
		Str("cycleDuration", time.Since(cycleStartTime).String()).
		Msg("--- FDE Cycle Completed ---")
}

// Checkpoint persists the current ledger snapshot. Safe to call from the web
// layer after participant actions.
func (f *FDE) Checkpoint() {
	pools, positions := f.engine.Snapshot()
	if err := state.SaveLedgerSnapshot(pools, positions); err != nil {
		f.logger.Error().Err(err).Msg("Failed to save ledger snapshot")
	}
}
