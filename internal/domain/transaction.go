package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Decimal money type
)

// PaymentStatusSuccess marks a settled point-of-sale transaction
const PaymentStatusSuccess = "SUCCESS"

// Transaction is a row of the point-of-sale `transactions` table.
// This table belongs to the checkout system and is read-only here; it is
// unrelated to the wallet's own ledger_entries audit log.
type Transaction struct {
	ID              uint                `gorm:"primaryKey;column:transaction_id"`     // Primary key
	UserID          int64               `gorm:"index;not null"`                       // Purchasing user
	Reference       string              `gorm:"column:transaction_reference;size:64"` // External reference string
	TotalAmount     decimal.Decimal     `gorm:"type:decimal(15,2)"`                   // Cart total before discount and tax
	DiscountAmount  decimal.Decimal     `gorm:"type:decimal(15,2)"`                   // Discount applied
	TaxAmount       decimal.NullDecimal `gorm:"type:decimal(15,2)"`                   // Tax, may be absent in early data
	FinalAmount     decimal.NullDecimal `gorm:"type:decimal(15,2)"`                   // Charged amount, may be absent in early data
	PaymentStatus   string              `gorm:"size:16"`                              // SUCCESS, FAILED, PENDING
	TransactionDate time.Time           `gorm:"index"`                                // When the transaction settled
}

// TableName keeps the checkout system's table name
func (Transaction) TableName() string { return "transactions" }
