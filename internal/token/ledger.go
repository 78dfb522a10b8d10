package token

import (
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
)

// Ledger is an in-process fungible token: a plain account -> balance map with
// a running total supply. It implements both Asset and RewardToken and backs
// the engine in simulation mode and in tests.
type Ledger struct {
	mu       sync.Mutex
	denom    string
	balances map[string]sdkmath.Int
	supply   sdkmath.Int
}

// NewLedger creates an empty ledger for a denom.
func NewLedger(denom string) *Ledger {
	return &Ledger{
		denom:    denom,
		balances: make(map[string]sdkmath.Int),
		supply:   sdkmath.ZeroInt(),
	}
}

// Denom returns the ledger's denom.
func (l *Ledger) Denom() string {
	return l.denom
}

// BalanceOf returns the account's balance, zero for unknown accounts.
func (l *Ledger) BalanceOf(holder string) (sdkmath.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(holder), nil
}

// TotalSupply returns the sum of all balances ever minted.
func (l *Ledger) TotalSupply() sdkmath.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supply
}

// Mint creates amount of new supply in the recipient's account.
func (l *Ledger) Mint(recipient string, amount sdkmath.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[recipient] = l.balanceLocked(recipient).Add(amount)
	l.supply = l.supply.Add(amount)
	return nil
}

// Transfer moves exactly amount from one account to another, or fails moving
// nothing.
func (l *Ledger) Transfer(from, to string, amount sdkmath.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fromBal := l.balanceLocked(from)
	if fromBal.LT(amount) {
		return fmt.Errorf("%s: account %q holds %s, cannot transfer %s",
			l.denom, from, fromBal, amount)
	}
	l.balances[from] = fromBal.Sub(amount)
	l.balances[to] = l.balanceLocked(to).Add(amount)
	return nil
}

func (l *Ledger) balanceLocked(holder string) sdkmath.Int {
	if bal, ok := l.balances[holder]; ok {
		return bal
	}
	return sdkmath.ZeroInt()
}

func checkAmount(amount sdkmath.Int) error {
	if amount.IsNil() {
		return fmt.Errorf("amount is nil")
	}
	if amount.IsNegative() {
		return fmt.Errorf("amount %s is negative", amount)
	}
	return nil
}
