// Package engine implements the farm distribution state machine: deposits of
// a staked asset into weighted pools, lazy per-pool reward accrual against the
// emission schedule, and reward settlement on every touch.
//
// The engine is a single-writer, serialized-transaction model. Every external
// action runs to completion under one mutex; no action observes a partially
// updated pool or position. Time only enters through the tick value callers
// pass in; the engine never reads a clock for accounting.
//
// A failed action commits at most a pool refresh, which is a legal standalone
// operation: external ledger moves run in an order where a later failure
// triggers a refund of the earlier move, so principal and reward balances are
// untouched on abort.
package engine

import (
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/solstice-finance/fde/internal/logger"
	"github.com/solstice-finance/fde/internal/schedule"
	"github.com/solstice-finance/fde/internal/token"
	"github.com/solstice-finance/fde/internal/types"
)

// TreasuryAccount holds reward tokens minted for pool emissions until they
// are paid out to participants.
const TreasuryAccount = "farm/treasury"

// Journal receives a receipt for every completed participant action. Receipts
// are observability output; the engine never reads them back.
type Journal interface {
	Record(receipt types.ActionReceipt)
}

// Migrator moves a pool's custody balance from one staked-asset service to a
// replacement and returns the new service. The engine verifies afterwards
// that the custody balance was preserved exactly.
type Migrator interface {
	Migrate(old token.Asset, custody string, balance sdkmath.Int) (token.Asset, error)
}

// Config holds the dependencies for a new engine.
type Config struct {
	Schedule     *schedule.Schedule
	RewardToken  token.RewardToken
	Owner        string
	FeeCollector string
	Journal      Journal // optional
}

type poolState struct {
	pool  *types.Pool
	asset token.Asset
}

type positionKey struct {
	pool        types.PoolID
	participant string
}

// Engine is the caller-facing staking state machine.
type Engine struct {
	mu  sync.Mutex
	log zerolog.Logger

	sched   *schedule.Schedule
	reward  token.RewardToken
	journal Journal

	owner        string
	feeCollector string
	migrator     Migrator

	pools       []*poolState
	positions   map[positionKey]*types.Position
	totalWeight uint64
}

// New validates the configuration and returns an empty engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Schedule == nil {
		return nil, fmt.Errorf("schedule cannot be nil")
	}
	if cfg.RewardToken == nil {
		return nil, fmt.Errorf("reward token service cannot be nil")
	}
	if cfg.Owner == "" {
		return nil, fmt.Errorf("owner cannot be empty")
	}
	if cfg.FeeCollector == "" {
		return nil, fmt.Errorf("fee collector cannot be empty")
	}
	return &Engine{
		log:          logger.GetForComponent("farm_engine"),
		sched:        cfg.Schedule,
		reward:       cfg.RewardToken,
		journal:      cfg.Journal,
		owner:        cfg.Owner,
		feeCollector: cfg.FeeCollector,
		positions:    make(map[positionKey]*types.Position),
	}, nil
}

// Deposit moves amount of the pool's staked asset from the participant into
// pool custody, paying out any reward pending on the existing stake first.
// A zero amount is legal and acts as a pure reward claim.
func (e *Engine) Deposit(participant string, poolID types.PoolID, amount sdkmath.Int, now uint64) (types.ActionReceipt, error) {
	if err := checkAmount(amount); err != nil {
		return types.ActionReceipt{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ps, err := e.poolLocked(poolID)
	if err != nil {
		return types.ActionReceipt{}, err
	}
	acc, err := e.accrueLocked(ps, now)
	if err != nil {
		return types.ActionReceipt{}, err
	}

	pos := e.positionLocked(poolID, participant)
	pending := pendingFor(pos, acc.rewardPerShare)

	// The participant-funded transfer runs first: a rejection aborts the
	// action with nothing else moved. Anything that fails after it refunds
	// the transfer-in before returning.
	if amount.IsPositive() {
		if err := ps.asset.Transfer(participant, ps.pool.CustodyAccount(), amount); err != nil {
			return types.ActionReceipt{}, ErrTransferFailed.Wrap(err.Error())
		}
	}
	if err := e.settleLocked(ps, now, acc); err != nil {
		e.refundStakeLocked(ps, ps.pool.CustodyAccount(), participant, amount)
		return types.ActionReceipt{}, err
	}
	paid, err := e.payoutLocked(participant, pending)
	if err != nil {
		e.refundStakeLocked(ps, ps.pool.CustodyAccount(), participant, amount)
		return types.ActionReceipt{}, err
	}

	pos.StakedAmount = pos.StakedAmount.Add(amount)
	pos.RewardDebt = debtFor(pos.StakedAmount, ps.pool.RewardPerShare)
	e.storePositionLocked(poolID, participant, pos)

	return e.recordLocked(types.ActionDeposit, poolID, participant, amount, paid, now), nil
}

// Withdraw pays out pending reward and returns amount of staked principal to
// the participant. Fails before any mutation if amount exceeds the stake.
func (e *Engine) Withdraw(participant string, poolID types.PoolID, amount sdkmath.Int, now uint64) (types.ActionReceipt, error) {
	if err := checkAmount(amount); err != nil {
		return types.ActionReceipt{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ps, err := e.poolLocked(poolID)
	if err != nil {
		return types.ActionReceipt{}, err
	}
	pos := e.positionLocked(poolID, participant)
	if amount.GT(pos.StakedAmount) {
		return types.ActionReceipt{}, ErrInsufficientStake.Wrapf(
			"staked %s, requested %s", pos.StakedAmount, amount)
	}

	acc, err := e.accrueLocked(ps, now)
	if err != nil {
		return types.ActionReceipt{}, err
	}
	pending := pendingFor(pos, acc.rewardPerShare)

	if err := e.settleLocked(ps, now, acc); err != nil {
		return types.ActionReceipt{}, err
	}
	// Principal leaves custody before the reward payout. If the staked-asset
	// service rejects it, the only committed effect is the refresh above, and
	// the pending reward is still owed in full on the next touch.
	if amount.IsPositive() {
		if err := ps.asset.Transfer(ps.pool.CustodyAccount(), participant, amount); err != nil {
			return types.ActionReceipt{}, ErrTransferFailed.Wrap(err.Error())
		}
	}
	paid, err := e.payoutLocked(participant, pending)
	if err != nil {
		e.refundStakeLocked(ps, participant, ps.pool.CustodyAccount(), amount)
		return types.ActionReceipt{}, err
	}

	pos.StakedAmount = pos.StakedAmount.Sub(amount)
	pos.RewardDebt = debtFor(pos.StakedAmount, ps.pool.RewardPerShare)
	e.storePositionLocked(poolID, participant, pos)

	return e.recordLocked(types.ActionWithdraw, poolID, participant, amount, paid, now), nil
}

// EmergencyWithdraw returns the participant's full principal immediately,
// bypassing accrual and forfeiting all pending reward unconditionally. It is
// the circuit breaker for when reward accounting or the reward token is
// unavailable; only the staked-asset transfer itself can fail.
func (e *Engine) EmergencyWithdraw(participant string, poolID types.PoolID, now uint64) (types.ActionReceipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ps, err := e.poolLocked(poolID)
	if err != nil {
		return types.ActionReceipt{}, err
	}
	pos := e.positionLocked(poolID, participant)
	amount := pos.StakedAmount

	if amount.IsPositive() {
		if err := ps.asset.Transfer(ps.pool.CustodyAccount(), participant, amount); err != nil {
			return types.ActionReceipt{}, ErrTransferFailed.Wrap(err.Error())
		}
	}

	pos.StakedAmount = sdkmath.ZeroInt()
	pos.RewardDebt = sdkmath.ZeroInt()
	e.storePositionLocked(poolID, participant, pos)

	return e.recordLocked(types.ActionEmergencyWithdraw, poolID, participant, amount, sdkmath.ZeroInt(), now), nil
}

// PendingReward simulates a refresh at now without persisting it and returns
// the reward the participant could claim. Callers supplying a stale tick get
// a correspondingly stale (understated) value; that is the documented
// operational contract, not a race.
func (e *Engine) PendingReward(poolID types.PoolID, participant string, now uint64) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ps, err := e.poolLocked(poolID)
	if err != nil {
		return sdkmath.Int{}, err
	}
	acc, err := e.accrueLocked(ps, now)
	if err != nil {
		return sdkmath.Int{}, err
	}
	pos := e.positionLocked(poolID, participant)
	return pendingFor(pos, acc.rewardPerShare), nil
}

// Refresh brings one pool's accumulator up to date at the given tick.
func (e *Engine) Refresh(poolID types.PoolID, now uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ps, err := e.poolLocked(poolID)
	if err != nil {
		return err
	}
	return e.refreshLocked(ps, now)
}

// RefreshAll brings every pool's accumulator up to date at the given tick.
// The service loop calls this once per cycle, which is what keeps refresh
// intervals short relative to the epoch length in normal operation.
func (e *Engine) RefreshAll(now uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refreshAllLocked(now)
}

func (e *Engine) refreshAllLocked(now uint64) error {
	for _, ps := range e.pools {
		if err := e.refreshLocked(ps, now); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) refreshLocked(ps *poolState, now uint64) error {
	acc, err := e.accrueLocked(ps, now)
	if err != nil {
		return err
	}
	return e.settleLocked(ps, now, acc)
}

func (e *Engine) poolLocked(poolID types.PoolID) (*poolState, error) {
	for _, ps := range e.pools {
		if ps.pool.ID == poolID {
			return ps, nil
		}
	}
	return nil, ErrUnknownPool.Wrapf("pool %d", poolID)
}

// positionLocked returns a copy of the stored position, or an empty one. The
// copy is only written back on commit, so a failed action leaves the stored
// position untouched.
func (e *Engine) positionLocked(poolID types.PoolID, participant string) *types.Position {
	if pos, ok := e.positions[positionKey{poolID, participant}]; ok {
		clone := *pos
		return &clone
	}
	return types.NewPosition()
}

func (e *Engine) storePositionLocked(poolID types.PoolID, participant string, pos *types.Position) {
	e.positions[positionKey{poolID, participant}] = pos
}

// payoutLocked transfers up to pending reward tokens from the treasury to the
// participant. A treasury shortfall caps the payment at the available balance
// instead of failing, so supply issues never block principal movement.
func (e *Engine) payoutLocked(participant string, pending sdkmath.Int) (sdkmath.Int, error) {
	if !pending.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}
	available, err := e.reward.BalanceOf(TreasuryAccount)
	if err != nil {
		return sdkmath.Int{}, ErrRewardService.Wrap(err.Error())
	}
	pay := pending
	if available.LT(pay) {
		e.log.Warn().
			Str("participant", participant).
			Str("pending", pending.String()).
			Str("available", available.String()).
			Msg("Reward treasury shortfall, capping payout at available balance")
		pay = available
	}
	if !pay.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}
	if err := e.reward.Transfer(TreasuryAccount, participant, pay); err != nil {
		return sdkmath.Int{}, ErrRewardService.Wrap(err.Error())
	}
	return pay, nil
}

func (e *Engine) recordLocked(action types.ActionType, poolID types.PoolID, participant string, amount, paid sdkmath.Int, now uint64) types.ActionReceipt {
	receipt := types.ActionReceipt{
		Action:      action,
		Pool:        poolID,
		Participant: participant,
		Amount:      amount,
		RewardPaid:  paid,
		Tick:        now,
		Timestamp:   time.Now().UTC(),
	}
	e.log.Info().
		Str("action", string(action)).
		Uint64("pool", uint64(poolID)).
		Str("participant", participant).
		Str("amount", amount.String()).
		Str("rewardPaid", paid.String()).
		Uint64("tick", now).
		Msg("Action completed")
	if e.journal != nil {
		e.journal.Record(receipt)
	}
	return receipt
}

func pendingFor(pos *types.Position, rewardPerShare sdkmath.Int) sdkmath.Int {
	if !pos.StakedAmount.IsPositive() {
		return sdkmath.ZeroInt()
	}
	return debtFor(pos.StakedAmount, rewardPerShare).Sub(pos.RewardDebt)
}

func debtFor(staked, rewardPerShare sdkmath.Int) sdkmath.Int {
	return staked.Mul(rewardPerShare).Quo(types.Precision)
}

func checkAmount(amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
