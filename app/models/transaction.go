package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction records a completed gateway charge. ExternalTransactionID is
// the identifier returned by the gateway and is the audit linkage between
// local records and the remote ledger. Rows are immutable once written.
type Transaction struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	UserID                uint            `gorm:"not null;index" json:"user_id"`
	Amount                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	ExternalTransactionID string          `gorm:"type:varchar(100);not null" json:"external_transaction_id"`
	OccurredAt            time.Time       `gorm:"not null;index" json:"occurred_at"`
}
