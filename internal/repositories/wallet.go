package repositories

import (
	"context" // Context for storage operations
	"errors"  // Sentinel errors

	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/domain" // Domain models
)

// Storage errors surfaced to the ledger service
var (
	ErrWalletNotFound = errors.New("wallet not found")   // Lookup for a user with no wallet row
	ErrStaleWrite     = errors.New("stale wallet write") // Stored wallet changed since it was read
)

// WalletRepository is the durable store of wallets and their append-only ledger.
// Save uses optimistic concurrency: it fails with ErrStaleWrite instead of
// overwriting a wallet that changed since the caller read it.
type WalletRepository interface {
	// GetOrCreate returns the wallet for userID, creating an empty one if none
	// exists. Safe under concurrent first access: at most one row per user.
	GetOrCreate(ctx context.Context, userID int64) (*domain.Wallet, error)

	// Find returns the wallet for userID or ErrWalletNotFound. Never creates.
	Find(ctx context.Context, userID int64) (*domain.Wallet, error)

	// Save persists balance and UpdatedAt. Returns ErrStaleWrite when the
	// stored version no longer matches the one the wallet was read with.
	Save(ctx context.Context, wallet *domain.Wallet) error

	// AppendEntry writes one immutable audit record.
	AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error

	// Entries returns up to limit audit records for a wallet, most recent first.
	Entries(ctx context.Context, walletID uint, limit int) ([]domain.LedgerEntry, error)

	// InTransaction runs fn against a transactional view of the repository.
	// Everything fn writes commits as one atomic unit or not at all.
	InTransaction(ctx context.Context, fn func(tx WalletRepository) error) error
}
