package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment
// variables. These are populated at startup by the LoadConfig function.
var (
	// OwnerAddress is the administrator identity allowed to register pools,
	// change weights, and rotate itself.
	OwnerAddress string

	// OperatorAddress is the recipient of the reservoir's fee releases.
	OperatorAddress string

	// ReservoirMinInterval is the minimum number of ticks between reservoir
	// releases.
	ReservoirMinInterval uint64

	// NodeRPC is the CometBFT RPC endpoint ticks are polled from. Empty
	// selects the manually advanced tick counter (simulation only).
	NodeRPC string

	// GenesisTick overrides the first emission-eligible tick.
	GenesisTick uint64

	// StakedAssetDenoms lists the staked-asset denoms available for pool
	// registration in simulation mode.
	StakedAssetDenoms []string

	// RewardDenom is the reward token's denom.
	RewardDenom string
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	OwnerAddress, err = getEnv("FARM_OWNER")
	if err != nil {
		return err
	}

	OperatorAddress, err = getEnv("FARM_OPERATOR")
	if err != nil {
		return err
	}

	ReservoirMinInterval, err = getEnvAsUint64("RESERVOIR_MIN_INTERVAL")
	if err != nil {
		return err
	}

	NodeRPC = getEnvOrDefault("NODE_RPC", "")

	GenesisTick, err = getEnvAsUint64OrDefault("GENESIS_TICK", 0)
	if err != nil {
		return err
	}

	RewardDenom = getEnvOrDefault("REWARD_DENOM", "ufarm")

	StakedAssetDenoms = nil
	for _, denom := range strings.Split(getEnvOrDefault("STAKED_ASSET_DENOMS", "ustake"), ",") {
		denom = strings.TrimSpace(denom)
		if denom != "" {
			StakedAssetDenoms = append(StakedAssetDenoms, denom)
		}
	}
	if len(StakedAssetDenoms) == 0 {
		return errors.New("STAKED_ASSET_DENOMS must list at least one denom")
	}

	log.Debug().
		Str("Owner", OwnerAddress).
		Str("Operator", OperatorAddress).
		Uint64("ReservoirMinInterval", ReservoirMinInterval).
		Uint64("GenesisTick", GenesisTick).
		Str("RewardDenom", RewardDenom).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOrDefault retrieves a string environment variable with a fallback.
func getEnvOrDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsUint64OrDefault parses an optional uint64 environment variable.
func getEnvAsUint64OrDefault(key string, fallback uint64) (uint64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}
