package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/solstice-finance/fde/internal/config"
	"github.com/solstice-finance/fde/internal/engine"
	fdecore "github.com/solstice-finance/fde/internal/fde"
	"github.com/solstice-finance/fde/internal/logger"
	"github.com/solstice-finance/fde/internal/reservoir"
	"github.com/solstice-finance/fde/internal/schedule"
	"github.com/solstice-finance/fde/internal/state"
	"github.com/solstice-finance/fde/internal/ticksource"
	"github.com/solstice-finance/fde/internal/token"
	"github.com/solstice-finance/fde/internal/web"
)

const (
	LOOP_INTERVAL = 1 * time.Minute
)

// main is the entry point for the farm distribution engine.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Farm Distribution Engine Starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// --- 2. Token Services (with Safety Switch) ---
	// The engine mints and moves real balances. Until a chain-backed token
	// service exists, only the in-process simulation ledgers are available;
	// halting here prevents anyone from accidentally pointing the ledger at
	// production identities expecting on-chain settlement.
	fdeMode := os.Getenv("FDE_MODE")
	if fdeMode != "sim" {
		log.Fatal().Msg("FDE_MODE is not set to 'sim'. Halting: only simulation ledgers are supported. Set FDE_MODE=sim to run.")
	}
	log.Warn().Msg("Initializing FDE in SIM mode. Balances live in process memory and the database snapshot.")

	rewardLedger := token.NewLedger(config.RewardDenom)
	stakedLedgers := make(map[string]*token.Ledger, len(config.StakedAssetDenoms))
	for _, denom := range config.StakedAssetDenoms {
		stakedLedgers[denom] = token.NewLedger(denom)
	}
	resolveAsset := func(denom string) (token.Asset, error) {
		if asset, ok := stakedLedgers[denom]; ok {
			return asset, nil
		}
		return nil, fmt.Errorf("no staked-asset ledger for denom %q", denom)
	}
	// Sim-mode faucet so participants can obtain staked tokens to deposit.
	faucet := func(denom, account string, amount sdkmath.Int) error {
		ledger, ok := stakedLedgers[denom]
		if !ok {
			return fmt.Errorf("no staked-asset ledger for denom %q", denom)
		}
		return ledger.Mint(account, amount)
	}

	// --- 3. Emission Schedule & Engine ---
	params := config.DefaultEmissionParams
	params.GenesisTick = config.GenesisTick
	sched, err := schedule.New(params)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid emission parameters")
	}

	farmEngine, err := engine.New(engine.Config{
		Schedule:     sched,
		RewardToken:  rewardLedger,
		Owner:        config.OwnerAddress,
		FeeCollector: reservoir.Account,
		Journal:      state.ReceiptJournal{},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create farm engine")
	}

	// Restore the previous ledger snapshot, if any.
	pools, positions, err := state.LoadLedgerSnapshot()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger snapshot")
	}
	if len(pools) > 0 {
		if err := farmEngine.Restore(pools, positions, resolveAsset); err != nil {
			log.Fatal().Err(err).Msg("Failed to restore farm engine state")
		}
		log.Info().Int("pools", len(pools)).Int("positions", len(positions)).Msg("Farm state restored from database")
	}

	// --- 4. Tick Source ---
	var ticks ticksource.Source
	var advanceTicks web.AdvanceFunc
	if config.NodeRPC != "" {
		cometSource, err := ticksource.NewCometSource(config.NodeRPC)
		if err != nil {
			log.Fatal().Err(err).Str("endpoint", config.NodeRPC).Msg("Failed to connect tick source")
		}
		ticks = cometSource
		log.Info().Str("endpoint", config.NodeRPC).Msg("Using CometBFT block height as tick source")
	} else {
		lastTick, err := state.GetLastSeenTick()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read tick watermark")
		}
		// Without a chain producing blocks the counter only moves through
		// the tick-advance endpoint, so expose it.
		manual := ticksource.NewManualSource(lastTick)
		ticks = manual
		advanceTicks = manual.Advance
		log.Info().Uint64("start", lastTick).Msg("Using manual tick source")
	}

	// --- 5. Reservoir ---
	startTick, err := ticks.Current(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read initial tick")
	}
	feeReservoir := reservoir.New(rewardLedger, config.OperatorAddress, config.ReservoirMinInterval, startTick)

	// --- 6. Create FDE Instance with Dependency Injection ---
	fdeInstance, err := fdecore.NewFDE(fdecore.Config{
		Engine:     farmEngine,
		Reservoir:  feeReservoir,
		TickSource: ticks,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create FDE instance")
	}

	// --- 7. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(web.Config{
		Port:      webPort,
		Engine:    farmEngine,
		Reservoir: feeReservoir,
		Ticks:     ticks,
		Resolve:   resolveAsset,
		Faucet:    faucet,
		Advance:   advanceTicks,
		Persist:   fdeInstance.Checkpoint,
	})
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting farm API server")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 8. Start Main Loop ---
	log.Info().Str("interval", LOOP_INTERVAL.String()).Msg("Starting FDE main loop")

	ctx := context.Background()

	fdeInstance.RunLoop(ctx, LOOP_INTERVAL)
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
