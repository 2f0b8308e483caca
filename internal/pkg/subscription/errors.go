package subscription

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmailTaken means the email already belongs to a subscriber. During a
	// concurrent enroll race the store's unique index rejects the second write.
	ErrEmailTaken = errors.New("email is already subscribed")

	// ErrPlanUnavailable means the plan disappeared between boundary validation
	// and the post-charge fetch.
	ErrPlanUnavailable = errors.New("plan is no longer available")

	// ErrAccountIDExhausted means no unique gateway account id candidate could
	// be reserved within the retry budget.
	ErrAccountIDExhausted = errors.New("could not reserve a unique gateway account id")
)

// ReconciliationError marks a failure that happened after the remote charge
// succeeded: money moved at the gateway but the local records are incomplete.
// It carries everything an operator or batch job needs to link the charge back
// to the attempt. Blind retries of the whole enroll would double-charge, so
// callers must treat this class differently from ordinary failures.
type ReconciliationError struct {
	AttemptID             string
	ExternalAccountID     int64
	ExternalTransactionID string
	Amount                decimal.Decimal
	Err                   error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation required: attempt %s, gateway account %d, transaction %q, amount %s: %v",
		e.AttemptID, e.ExternalAccountID, e.ExternalTransactionID, e.Amount, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// IsReconciliationRequired reports whether err (or anything it wraps) is a
// post-charge persistence failure.
func IsReconciliationRequired(err error) bool {
	var re *ReconciliationError
	return errors.As(err, &re)
}
