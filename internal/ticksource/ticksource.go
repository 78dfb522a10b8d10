// Package ticksource supplies the engine's tick counter. The engine never
// reads a clock; ticks are chain block heights polled from a CometBFT node,
// or a manually advanced counter in simulation.
package ticksource

import (
	"context"
	"fmt"
	"sync"

	cmthttp "github.com/cometbft/cometbft/rpc/client/http"
)

// Source yields the current tick. Implementations must be monotonically
// non-decreasing.
type Source interface {
	Current(ctx context.Context) (uint64, error)
}

// CometSource reads the latest block height from a CometBFT RPC endpoint.
type CometSource struct {
	client *cmthttp.HTTP

	mu   sync.Mutex
	last uint64
}

// NewCometSource connects to a CometBFT RPC endpoint.
func NewCometSource(endpoint string) (*CometSource, error) {
	client, err := cmthttp.New(endpoint, "/websocket")
	if err != nil {
		return nil, fmt.Errorf("connecting to node RPC %q: %w", endpoint, err)
	}
	return &CometSource{client: client}, nil
}

// Current returns the node's latest block height. A height lower than one
// seen before (a node rollback or a switched endpoint) is clamped to the
// highest observed value so ticks never run backwards.
func (s *CometSource) Current(ctx context.Context) (uint64, error) {
	status, err := s.client.Status(ctx)
	if err != nil {
		return 0, fmt.Errorf("querying node status: %w", err)
	}
	height := status.SyncInfo.LatestBlockHeight
	if height < 0 {
		return 0, fmt.Errorf("node reported negative height %d", height)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(height) > s.last {
		s.last = uint64(height)
	}
	return s.last, nil
}

// ManualSource is an in-process tick counter for simulation mode and tests.
type ManualSource struct {
	mu   sync.Mutex
	tick uint64
}

// NewManualSource starts a manual counter at the given tick.
func NewManualSource(start uint64) *ManualSource {
	return &ManualSource{tick: start}
}

// Current returns the counter.
func (s *ManualSource) Current(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick, nil
}

// Advance moves the counter forward by delta and returns the new tick.
func (s *ManualSource) Advance(delta uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick += delta
	return s.tick
}

// Set moves the counter to tick if that is not a rollback.
func (s *ManualSource) Set(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tick > s.tick {
		s.tick = tick
	}
}
