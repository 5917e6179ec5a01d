// Package token implements the token balance value object. Balances are
// immutable; every arithmetic operation returns a new Balance.
package token

import (
	"fmt"

	"github.com/lemonqwest/lemonqwest/internal/domain"
)

// Balance is a user's token balance. The zero value is a valid empty balance.
// Standard arithmetic keeps the value non-negative; AdminSubtract is the sole
// path allowed to produce a negative value, representing debt from an
// administrative undo.
type Balance struct {
	value int
}

// New creates a Balance. Negative starting values are rejected.
func New(value int) (Balance, error) {
	if value < 0 {
		return Balance{}, fmt.Errorf("%w: balance cannot start negative (%d)", domain.ErrInvalidData, value)
	}
	return Balance{value: value}, nil
}

// FromStored rehydrates a Balance from persisted state. Negative values are
// accepted here: a stored debt from an admin undo must round-trip.
func FromStored(value int) Balance {
	return Balance{value: value}
}

// Value returns the integer balance. It may be negative only after AdminSubtract.
func (b Balance) Value() int {
	return b.value
}

// Add returns a new balance increased by amount.
func (b Balance) Add(amount int) (Balance, error) {
	if amount < 0 {
		return Balance{}, fmt.Errorf("%w: cannot add negative amount (%d)", domain.ErrInvalidData, amount)
	}
	return Balance{value: b.value + amount}, nil
}

// Subtract returns a new balance decreased by amount. It fails with
// ErrInsufficientBalance rather than flooring at zero, so spend paths
// cannot silently lose tokens.
func (b Balance) Subtract(amount int) (Balance, error) {
	if amount < 0 {
		return Balance{}, fmt.Errorf("%w: cannot subtract negative amount (%d)", domain.ErrInvalidData, amount)
	}
	if amount > b.value {
		return Balance{}, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientBalance, b.value, amount)
	}
	return Balance{value: b.value - amount}, nil
}

// AdminSubtract returns a new balance decreased by amount, ignoring the
// non-negative floor. A caregiver undoing an already-spent reward can leave
// a child in debt; that is a business rule, not a defect.
func (b Balance) AdminSubtract(amount int) (Balance, error) {
	if amount < 0 {
		return Balance{}, fmt.Errorf("%w: cannot subtract negative amount (%d)", domain.ErrInvalidData, amount)
	}
	return Balance{value: b.value - amount}, nil
}
