// Package lookup reads the checkout system's `transactions` table. It is a
// reporting path only: nothing here touches the wallet ledger.
package lookup

import (
	"context" // Context for storage operations
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"time"    // Date formatting

	"github.com/Blue-Bolt-Invisible-payment/Invisible-Payment-Registration-backend/internal/domain" // Domain models

	"github.com/shopspring/decimal" // Decimal money type
	"gorm.io/gorm"                  // GORM ORM library
)

// ErrNoTransactions is returned when the user has no successful transaction yet
var ErrNoTransactions = errors.New("no successful transactions for user")

// fallbackTax is the flat tax applied when a row carries no tax amount
var fallbackTax = decimal.RequireFromString("2.00")

// LastTransaction is the reporting view of a user's most recent settled
// point-of-sale transaction
type LastTransaction struct {
	TransactionID   uint             `json:"transaction_id"`         // Row primary key
	Reference       string           `json:"reference"`              // External reference string
	FinalAmount     *decimal.Decimal `json:"final_amount,omitempty"` // Original stored final amount, may be absent in early data
	TaxAmount       decimal.Decimal  `json:"tax_amount"`             // Tax used for the displayed total, fallback 2.00 when missing
	TotalAmount     decimal.Decimal  `json:"total_amount"`           // Displayed total including tax
	TransactionDate string           `json:"transaction_date"`       // ISO-8601 settlement time
}

// Service resolves the latest successful transaction per user
type Service struct {
	db *gorm.DB // Read-only handle onto the checkout schema
}

// NewService wraps a GORM handle
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LatestSuccessfulForUser returns the newest SUCCESS row for the user, or
// ErrNoTransactions when none exists
func (s *Service) LatestSuccessfulForUser(ctx context.Context, userID int64) (*LastTransaction, error) {
	var row domain.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND payment_status = ?", userID, domain.PaymentStatusSuccess).
		Order("transaction_date desc").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoTransactions
	}
	if err != nil {
		return nil, fmt.Errorf("latest transaction: %w", err)
	}

	tax, total := DisplayTotals(row.TotalAmount, row.DiscountAmount, row.TaxAmount, row.FinalAmount)
	result := &LastTransaction{
		TransactionID:   row.ID,
		Reference:       row.Reference,
		TaxAmount:       tax,
		TotalAmount:     total,
		TransactionDate: row.TransactionDate.UTC().Format(time.RFC3339),
	}
	if row.FinalAmount.Valid {
		final := row.FinalAmount.Decimal
		result.FinalAmount = &final
	}
	return result, nil
}

// DisplayTotals computes the tax and total shown to the user. When the stored
// tax is absent or zero, a flat 2.00 applies. When a final amount exists it is
// the charged amount and wins; otherwise the total is
// max(0, total - discount) + tax.
func DisplayTotals(total, discount decimal.Decimal, tax, final decimal.NullDecimal) (decimal.Decimal, decimal.Decimal) {
	taxBase := fallbackTax
	if tax.Valid && !tax.Decimal.IsZero() {
		taxBase = tax.Decimal
	}
	if final.Valid {
		return taxBase, final.Decimal
	}
	net := total.Sub(discount)
	if net.IsNegative() {
		net = decimal.Zero // Discount larger than the cart total clamps to zero
	}
	return taxBase, net.Add(taxBase)
}
