package ledger

import (
	"errors" // Sentinel errors
	"fmt"    // Error formatting

	"github.com/shopspring/decimal" // Decimal money type
)

// Service errors
var (
	// ErrInvalidAmount rejects non-positive amounts or amounts with more than
	// two fractional digits. Nothing is written when it is returned.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrConcurrencyExhausted is returned after the stale-write retry budget
	// runs out. The operation is safe to retry from the caller's side.
	ErrConcurrencyExhausted = errors.New("wallet update conflicts exhausted retries")

	// ErrWalletNotFound is returned by strict lookups that must not auto-create
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInvalidReferenceType rejects reference types outside the known set
	ErrInvalidReferenceType = errors.New("invalid reference type")
)

// InsufficientBalanceError rejects a debit larger than the wallet holds.
// It carries the balance available at the time of the check.
type InsufficientBalanceError struct {
	Available decimal.Decimal // Balance the debit was validated against
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s", e.Available.StringFixed(2))
}
