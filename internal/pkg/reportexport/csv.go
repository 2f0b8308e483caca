package reportexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/lromand/matchpoint/internal/pkg/revenue"
)

var csvHeader = []string{
	"id",
	"occurred_at",
	"amount",
	"external_transaction_id",
	"user_name",
	"user_email",
	"plan_name",
}

// RenderCSV renders the transaction detail listing into the archival CSV
// layout. Amounts keep their exact decimal representation.
func RenderCSV(details []revenue.TransactionDetail) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, d := range details {
		record := []string{
			strconv.FormatUint(uint64(d.ID), 10),
			d.OccurredAt.Format(time.RFC3339),
			d.Amount.StringFixed(2),
			d.ExternalTransactionID,
			d.UserName,
			d.UserEmail,
			d.PlanName,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
