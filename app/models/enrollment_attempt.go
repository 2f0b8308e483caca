package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enrollment attempt states. An attempt moves pending -> charged -> persisted
// on the happy path. A pre-charge gateway failure ends in failed (safe to
// retry); any failure after the charge ends in reconciliation_required, which
// an operator or batch job must resolve against the remote ledger.
const (
	AttemptStatusPending                = "pending"
	AttemptStatusFailed                 = "failed"
	AttemptStatusCharged                = "charged"
	AttemptStatusPersisted              = "persisted"
	AttemptStatusReconciliationRequired = "reconciliation_required"
)

// EnrollmentAttempt is the durable record of one enroll-and-charge run. It is
// written before any gateway call, so a crash between "charged" and
// "persisted" is detectable on restart. The unique index on ExternalAccountID
// doubles as the reservation table for gateway account id candidates.
type EnrollmentAttempt struct {
	ID                    string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email                 string          `gorm:"type:varchar(200);not null;index" json:"email"`
	PlanID                uint            `gorm:"not null" json:"plan_id"`
	ExternalAccountID     int64           `gorm:"uniqueIndex;not null" json:"external_account_id"`
	ExternalTransactionID string          `gorm:"type:varchar(100);default:''" json:"external_transaction_id"`
	Amount                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status                string          `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	LastError             string          `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
