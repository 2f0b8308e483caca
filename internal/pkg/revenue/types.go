package revenue

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals are the aggregate figures for a date range. All amounts are exact
// decimals; a range without transactions yields Count 0 and zero amounts.
type Totals struct {
	Count int64           `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
	Avg   decimal.Decimal `json:"avg"`
	Min   decimal.Decimal `json:"min"`
	Max   decimal.Decimal `json:"max"`
}

// DailyRevenue is one calendar day of the breakdown.
type DailyRevenue struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Count int64           `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

// Report combines the totals with the ascending per-day series for a range.
type Report struct {
	Start  string         `json:"start"`
	End    string         `json:"end"`
	Totals Totals         `json:"totals"`
	Daily  []DailyRevenue `json:"daily"`
}

// TransactionDetail is one row of the detail listing: a transaction joined to
// its subscriber and labeled with the plan of the subscriber's most recent
// enrollment.
type TransactionDetail struct {
	ID                    uint            `json:"id"`
	Amount                decimal.Decimal `json:"amount"`
	ExternalTransactionID string          `json:"external_transaction_id"`
	OccurredAt            time.Time       `json:"occurred_at"`
	UserName              string          `json:"user_name"`
	UserEmail             string          `json:"user_email"`
	PlanID                *uint           `json:"plan_id,omitempty"`
	PlanName              string          `json:"plan_name"`
}
