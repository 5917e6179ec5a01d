package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lemonqwest/lemonqwest/internal/domain"
)

// pinCost keeps verification around interactive latency on modest hardware.
const pinCost = bcrypt.DefaultCost

// PIN wraps a bcrypt hash of a 4-digit code. The raw digits are never stored
// or logged; verification goes through bcrypt's one-way compare. Hashing is
// the only CPU-heavy work in the domain core, so callers should keep it off
// latency-sensitive paths.
type PIN struct {
	hash string
}

// NewPIN hashes rawDigits into a PIN. rawDigits must be exactly 4 numeric
// digits.
func NewPIN(rawDigits string) (PIN, error) {
	if len(rawDigits) != 4 || !isDigits(rawDigits) {
		return PIN{}, fmt.Errorf("%w: PIN must be exactly 4 digits", domain.ErrInvalidData)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(rawDigits), pinCost)
	if err != nil {
		return PIN{}, fmt.Errorf("hash pin: %w", err)
	}
	return PIN{hash: string(hash)}, nil
}

// PINFromHash rehydrates a PIN from a stored hash.
func PINFromHash(hash string) (PIN, error) {
	if hash == "" {
		return PIN{}, fmt.Errorf("%w: PIN hash is blank", domain.ErrInvalidData)
	}
	return PIN{hash: hash}, nil
}

// Verify reports whether rawAttempt matches the PIN. A mismatch returns
// false, never an error.
func (p PIN) Verify(rawAttempt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.hash), []byte(rawAttempt)) == nil
}

// Hash returns the storage-safe hash string.
func (p PIN) Hash() string {
	return p.hash
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
