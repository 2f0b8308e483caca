package reportexport

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lromand/matchpoint/internal/pkg/revenue"
)

func TestRenderCSV(t *testing.T) {
	planID := uint(2)
	details := []revenue.TransactionDetail{
		{
			ID:                    11,
			Amount:                decimal.RequireFromString("29.9"),
			ExternalTransactionID: "txn-11",
			OccurredAt:            time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC),
			UserName:              "Alice Martin",
			UserEmail:             "alice@example.com",
			PlanID:                &planID,
			PlanName:              "Premium",
		},
		{
			ID:                    10,
			Amount:                decimal.RequireFromString("9.90"),
			ExternalTransactionID: "txn-10",
			OccurredAt:            time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
			UserName:              "Bob Lee",
			UserEmail:             "bob@example.com",
			PlanName:              "standard",
		},
	}

	out, err := RenderCSV(details)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,occurred_at,amount,external_transaction_id,user_name,user_email,plan_name", lines[0])
	assert.Equal(t, "11,2024-01-02T09:00:00Z,29.90,txn-11,Alice Martin,alice@example.com,Premium", lines[1])
	assert.Equal(t, "10,2024-01-01T09:00:00Z,9.90,txn-10,Bob Lee,bob@example.com,standard", lines[2])
}

func TestRenderCSVEmptyListing(t *testing.T) {
	out, err := RenderCSV(nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Len(t, lines, 1, "only the header remains for an empty range")
}

func TestObjectKeyLayout(t *testing.T) {
	cfg := &Config{}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	exportedAt := time.Date(2024, time.February, 1, 8, 30, 0, 0, time.UTC)

	key := cfg.ObjectKey(start, end, exportedAt)
	assert.Equal(t, "revenue/2024/02/revenue_2024-01-01_2024-01-31_1706776200.csv", key)
}
