package repositories

import (
	"context" // Context for storage operations
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/domain" // Domain models

	"gorm.io/gorm" // GORM ORM library
)

// GormWalletRepository persists wallets and ledger entries through GORM/MySQL
type GormWalletRepository struct {
	db *gorm.DB // Root handle or an open transaction
}

// NewGormWalletRepository wraps a GORM handle
func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// GetOrCreate returns the wallet for userID, creating it if absent. The unique
// index on user_id decides races between concurrent first accesses: the loser's
// insert fails and it re-reads the winner's row.
func (r *GormWalletRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := r.Find(ctx, userID)
	if err == nil {
		return wallet, nil // Wallet already exists
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return nil, err // Storage failure, not a missing row
	}
	wallet = domain.NewWallet(userID) // Fresh zero-balance wallet
	if createErr := r.db.WithContext(ctx).Create(wallet).Error; createErr != nil {
		// Another caller may have created the row first; the unique index on
		// user_id rejects the duplicate, so re-read before giving up.
		if existing, findErr := r.Find(ctx, userID); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create wallet: %w", createErr)
	}
	return wallet, nil
}

// Find returns the wallet for userID or ErrWalletNotFound
func (r *GormWalletRepository) Find(ctx context.Context, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWalletNotFound // No wallet yet for this user
	}
	if err != nil {
		return nil, fmt.Errorf("find wallet: %w", err)
	}
	return &wallet, nil
}

// Save writes balance and updated_at guarded by the version the wallet was read
// with. Zero affected rows means another writer committed in between.
func (r *GormWalletRepository) Save(ctx context.Context, wallet *domain.Wallet) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(map[string]any{
			"balance":    wallet.Balance,     // New balance
			"updated_at": wallet.UpdatedAt,   // Mutation timestamp
			"version":    wallet.Version + 1, // Bump the lock counter
		})
	if res.Error != nil {
		return fmt.Errorf("save wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite // Version moved on since the read
	}
	wallet.Version++ // Keep the in-memory copy in step with the row
	return nil
}

// AppendEntry inserts one immutable audit record
func (r *GormWalletRepository) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// Entries returns up to limit audit records for a wallet, most recent first
func (r *GormWalletRepository) Entries(ctx context.Context, walletID uint, limit int) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

// InTransaction runs fn against a repository bound to one database transaction.
// GORM commits on a nil return and rolls back on any error, so the wallet write
// and its audit entry are never visible half-applied.
func (r *GormWalletRepository) InTransaction(ctx context.Context, fn func(tx WalletRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormWalletRepository{db: tx})
	})
}
