package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Decimal money type
)

// DefaultCurrency is assigned to wallets created without an explicit currency
const DefaultCurrency = "INR"

// Wallet Model
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"wallet_id"`                // Primary key
	UserID    int64           `gorm:"uniqueIndex;not null" json:"user_id"`        // Foreign key to User, one wallet per user
	Balance   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance"` // Wallet balance, never negative
	Currency  string          `gorm:"size:3;not null" json:"currency"`            // 3-letter currency code, fixed at creation
	Version   uint64          `gorm:"not null;default:0" json:"-"`                // Optimistic lock counter, bumped on every save
	CreatedAt time.Time       `json:"created_at"`                                 // Timestamp of creation
	UpdatedAt time.Time       `json:"updated_at"`                                 // Refreshed on every mutation
}

// NewWallet creates a zero-balance wallet for a user and stamps both timestamps
func NewWallet(userID int64) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:    userID,          // Owner
		Balance:   decimal.Zero,    // Wallets always start empty
		Currency:  DefaultCurrency, // Currency is fixed at creation
		CreatedAt: now,             // Creation timestamp
		UpdatedAt: now,             // Matches CreatedAt until the first mutation
	}
}

// SetBalance applies a new balance and refreshes UpdatedAt
func (w *Wallet) SetBalance(balance decimal.Decimal) {
	w.Balance = balance            // New balance, already validated by the ledger service
	w.UpdatedAt = time.Now().UTC() // Mutation timestamp
}
