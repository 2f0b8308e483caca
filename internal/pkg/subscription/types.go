package subscription

import "github.com/shopspring/decimal"

// EnrollInput carries the already-validated parameters of one enroll-and-charge
// run. Boundary validation (email format, card and cvv formats, plan existence)
// happens in the controllers before the orchestrator is invoked; the
// orchestrator does not re-check them.
type EnrollInput struct {
	Name       string
	Email      string
	PlanID     uint
	CardNumber string
	CVV        string
	Amount     decimal.Decimal
}

// EnrollResult summarizes a fully persisted enrollment.
type EnrollResult struct {
	UserID                uint   `json:"user_id"`
	ExternalAccountID     int64  `json:"external_account_id"`
	EnrollmentID          uint   `json:"enrollment_id"`
	ExternalTransactionID string `json:"external_transaction_id"`
}
