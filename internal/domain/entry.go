package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Decimal money type
)

// Ledger entry types
const (
	EntryTypeCredit = "CREDIT" // Balance increase
	EntryTypeDebit  = "DEBIT"  // Balance decrease
	EntryTypeRefund = "REFUND" // Balance increase reversing an earlier debit
)

// Reference types correlating an entry to the external event that caused it
const (
	ReferenceTopup      = "TOPUP"
	ReferencePurchase   = "PURCHASE"
	ReferenceRefund     = "REFUND"
	ReferenceAdjustment = "ADJUSTMENT"
)

// ValidReferenceType reports whether s is one of the known reference types
func ValidReferenceType(s string) bool {
	switch s {
	case ReferenceTopup, ReferencePurchase, ReferenceRefund, ReferenceAdjustment:
		return true
	}
	return false
}

// LedgerEntry is the immutable audit record of one balance mutation.
// Rows are append-only: replaying a wallet's entries in creation order from
// zero reproduces its current balance.
type LedgerEntry struct {
	ID            uint            `gorm:"primaryKey" json:"entry_id"`                        // Primary key
	WalletID      uint            `gorm:"index;not null" json:"wallet_id"`                   // Owning wallet
	Type          string          `gorm:"size:16;not null" json:"type"`                      // CREDIT, DEBIT or REFUND
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`         // Magnitude of the change, always positive
	BalanceBefore decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_before"` // Balance snapshot before the mutation
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_after"`  // Balance snapshot after the mutation
	ReferenceType string          `gorm:"size:16" json:"reference_type"`                     // TOPUP, PURCHASE, REFUND or ADJUSTMENT
	ReferenceID   string          `gorm:"size:50" json:"reference_id,omitempty"`             // Optional external correlation identifier
	Description   string          `gorm:"type:text" json:"description,omitempty"`            // Optional free text
	CreatedAt     time.Time       `json:"created_at"`                                        // Timestamp of creation, immutable
}

// NewLedgerEntry builds an audit record for a committed mutation and stamps CreatedAt
func NewLedgerEntry(walletID uint, entryType string, amount, before, after decimal.Decimal, refType, refID, description string) *LedgerEntry {
	return &LedgerEntry{
		WalletID:      walletID,
		Type:          entryType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		ReferenceType: refType,
		ReferenceID:   refID,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}
}
