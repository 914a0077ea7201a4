package billing

import (
	"context"
	"errors"
)

// ErrInsufficientBalance signals the caller must top up before retrying a
// priced operation. Distinct from upstream failures by contract.
var ErrInsufficientBalance = errors.New("insufficient token balance")

// Balances is the storage surface the metering gate charges against.
type Balances interface {
	TokenBalance(ctx context.Context, id int64) (int, error)
	DeductToken(ctx context.Context, id int64) (landed bool, balance int, err error)
}

// Meter gates priced operations behind the account token balance.
type Meter struct {
	balances Balances
}

// NewMeter creates a metering gate on the given balance store.
func NewMeter(balances Balances) *Meter {
	return &Meter{balances: balances}
}

// Metered runs op under the token gate and returns its result together with
// the balance after the charge.
//
// Protocol: the balance is checked first, and op never runs at zero. On
// success of op a single conditional decrement lands the charge; if the
// balance hit zero between the check and the decrement, op's result is
// discarded and the insufficient-balance condition is returned instead.
// Charging nothing for discarded work keeps the balance non-negative at the
// cost of occasionally wasting an upstream call.
func Metered[T any](ctx context.Context, m *Meter, userID int64, op func(context.Context) (T, error)) (T, int, error) {
	var zero T

	balance, err := m.balances.TokenBalance(ctx, userID)
	if err != nil {
		return zero, 0, err
	}
	if balance < 1 {
		return zero, balance, ErrInsufficientBalance
	}

	result, err := op(ctx)
	if err != nil {
		return zero, balance, err
	}

	landed, after, err := m.balances.DeductToken(ctx, userID)
	if err != nil {
		return zero, 0, err
	}
	if !landed {
		return zero, after, ErrInsufficientBalance
	}
	return result, after, nil
}
