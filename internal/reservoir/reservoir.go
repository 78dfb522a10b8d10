// Package reservoir implements the timelocked fee payout holder. The engine
// mints the administrator fee into the reservoir's account; the reservoir
// periodically releases the whole accumulated balance to a single operator,
// gated by a minimum tick interval between releases.
package reservoir

import (
	"sync"

	sdkerrors "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/solstice-finance/fde/internal/logger"
	"github.com/solstice-finance/fde/internal/token"
)

// Account holds fee mints until release.
const Account = "farm/reservoir"

var (
	// ErrReleaseTooSoon is returned while the minimum interval since the
	// last payout has not elapsed.
	ErrReleaseTooSoon = sdkerrors.Register("reservoir", 2, "minimum release interval not elapsed")
	// ErrNotOperator is returned when anyone but the current operator tries
	// to rotate the payout recipient.
	ErrNotOperator = sdkerrors.Register("reservoir", 3, "caller is not the reservoir operator")
)

// Reservoir drains its reward-token account to the operator at most once per
// minInterval ticks.
type Reservoir struct {
	mu  sync.Mutex
	log zerolog.Logger

	reward      token.RewardToken
	operator    string
	minInterval uint64
	lastRelease uint64
}

// New creates a reservoir. The first release becomes possible minInterval
// ticks after startTick.
func New(reward token.RewardToken, operator string, minInterval, startTick uint64) *Reservoir {
	return &Reservoir{
		log:         logger.GetForComponent("reservoir"),
		reward:      reward,
		operator:    operator,
		minInterval: minInterval,
		lastRelease: startTick,
	}
}

// Operator returns the current payout recipient.
func (r *Reservoir) Operator() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.operator
}

// Release pays the full accumulated balance to the operator. It fails while
// the minimum interval has not elapsed; an empty account is a quiet no-op
// that does not consume the interval.
func (r *Reservoir) Release(now uint64) (sdkmath.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now < r.lastRelease+r.minInterval {
		return sdkmath.ZeroInt(), sdkerrors.Wrapf(ErrReleaseTooSoon,
			"tick %d, next release at %d", now, r.lastRelease+r.minInterval)
	}
	balance, err := r.reward.BalanceOf(Account)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if !balance.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}
	if err := r.reward.Transfer(Account, r.operator, balance); err != nil {
		return sdkmath.ZeroInt(), err
	}
	r.lastRelease = now

	r.log.Info().
		Str("operator", r.operator).
		Str("amount", balance.String()).
		Uint64("tick", now).
		Msg("Reservoir released")
	return balance, nil
}

// RotateOperator hands the payout recipient role to a new identity. Only the
// current operator may rotate.
func (r *Reservoir) RotateOperator(actor, newOperator string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if actor != r.operator {
		return sdkerrors.Wrapf(ErrNotOperator, "actor %q", actor)
	}
	if newOperator == "" {
		return sdkerrors.Wrap(ErrNotOperator, "new operator cannot be empty")
	}
	r.operator = newOperator
	r.log.Warn().Str("newOperator", newOperator).Msg("Reservoir operator rotated")
	return nil
}
