package ledger

import (
	"context" // Context for storage operations
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/domain"       // Domain models
	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/repositories" // Wallet storage

	"github.com/shopspring/decimal" // Decimal money type
	"github.com/sirupsen/logrus"    // Logging library
)

// DefaultMaxRetries bounds how often a credit/debit is replayed after losing an
// optimistic-concurrency race before ErrConcurrencyExhausted is surfaced
const DefaultMaxRetries = 5

// History pagination bounds, matching the HTTP layer's page-size caps
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Service is the only writer of wallet balances. Every mutation appends exactly
// one ledger entry in the same storage transaction as the balance write, and a
// debit that would drive the balance negative is rejected before anything is
// written.
type Service struct {
	repo       repositories.WalletRepository // Durable wallet + entry store
	maxRetries int                           // Stale-write retry budget
}

// NewService creates a ledger service on top of a wallet repository
func NewService(repo repositories.WalletRepository, maxRetries int) *Service {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries // Fall back to the standard budget
	}
	return &Service{repo: repo, maxRetries: maxRetries}
}

// GetOrCreateWallet returns the user's wallet, creating an empty one on first access
func (s *Service) GetOrCreateWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create wallet: %w", err)
	}
	return wallet, nil
}

// Credit increases the user's balance by amount and records one audit entry.
// A reference type of REFUND is recorded as a REFUND entry, every other
// reference type as CREDIT. The wallet is created on first credit.
func (s *Service) Credit(ctx context.Context, userID int64, amount decimal.Decimal, referenceType, referenceID, description string) (*domain.Wallet, error) {
	entryType := domain.EntryTypeCredit
	if referenceType == domain.ReferenceRefund {
		entryType = domain.EntryTypeRefund // Refunds reverse an earlier debit
	}
	return s.apply(ctx, userID, amount, entryType, referenceType, referenceID, description)
}

// Debit decreases the user's balance by amount and records one audit entry.
// It fails with InsufficientBalanceError when the balance cannot cover the
// amount; nothing is written in that case.
func (s *Service) Debit(ctx context.Context, userID int64, amount decimal.Decimal, referenceType, referenceID, description string) (*domain.Wallet, error) {
	return s.apply(ctx, userID, amount, domain.EntryTypeDebit, referenceType, referenceID, description)
}

// BalanceOf returns the user's balance, or zero for a user with no wallet yet.
// Read-only: it never creates a wallet.
func (s *Service) BalanceOf(ctx context.Context, userID int64) (decimal.Decimal, error) {
	wallet, err := s.repo.Find(ctx, userID)
	if errors.Is(err, repositories.ErrWalletNotFound) {
		return decimal.Zero, nil // No wallet means an empty balance, not an error
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("read balance: %w", err)
	}
	return wallet.Balance, nil
}

// History returns up to limit ledger entries for the user, most recent first.
// Read-only: a user with no wallet gets an empty sequence and no wallet row.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	wallet, err := s.repo.Find(ctx, userID)
	if errors.Is(err, repositories.ErrWalletNotFound) {
		return []domain.LedgerEntry{}, nil // Nothing recorded yet
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	entries, err := s.repo.Entries(ctx, wallet.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// apply runs one credit or debit under the optimistic-concurrency retry
// protocol. Each attempt re-reads the wallet, re-validates against the fresh
// balance, and commits the balance write together with its audit entry as one
// storage transaction. A stale write burns one attempt; any other failure is
// final.
func (s *Service) apply(ctx context.Context, userID int64, amount decimal.Decimal, entryType, referenceType, referenceID, description string) (*domain.Wallet, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if !domain.ValidReferenceType(referenceType) {
		return nil, ErrInvalidReferenceType
	}
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		wallet, err := s.repo.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get or create wallet: %w", err)
		}
		balanceBefore := wallet.Balance
		var balanceAfter decimal.Decimal
		if entryType == domain.EntryTypeDebit {
			// Re-validated on every attempt so a concurrent debit that already
			// drained the wallet is caught against the fresh balance.
			if balanceBefore.LessThan(amount) {
				return nil, &InsufficientBalanceError{Available: balanceBefore}
			}
			balanceAfter = balanceBefore.Sub(amount)
		} else {
			balanceAfter = balanceBefore.Add(amount)
		}
		wallet.SetBalance(balanceAfter)
		entry := domain.NewLedgerEntry(wallet.ID, entryType, amount, balanceBefore, balanceAfter, referenceType, referenceID, description)

		// Balance write and audit entry commit or roll back together
		err = s.repo.InTransaction(ctx, func(tx repositories.WalletRepository) error {
			if err := tx.Save(ctx, wallet); err != nil {
				return err
			}
			return tx.AppendEntry(ctx, entry)
		})
		if err == nil {
			logrus.WithFields(logrus.Fields{
				"user_id":        userID,
				"wallet_id":      wallet.ID,
				"type":           entryType,
				"amount":         amount.StringFixed(2),
				"balance_before": balanceBefore.StringFixed(2),
				"balance_after":  balanceAfter.StringFixed(2),
				"reference_type": referenceType,
			}).Info("Ledger entry committed")
			return wallet, nil
		}
		if errors.Is(err, repositories.ErrStaleWrite) {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"attempt": attempt,
				"type":    entryType,
			}).Warn("Wallet changed during update, retrying")
			continue // Re-read and replay the whole computation
		}
		return nil, fmt.Errorf("commit %s: %w", entryType, err)
	}
	return nil, ErrConcurrencyExhausted
}

// validateAmount enforces strictly positive amounts at the wallet's fixed
// two-digit scale
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount // More precision than the ledger stores
	}
	return nil
}
