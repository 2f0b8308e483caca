package revenue

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lromand/matchpoint/app/models"
)

const dateLayout = "2006-01-02"

// Repository provides the read-only reporting queries. Both bounds are
// inclusive calendar dates; validation of the ordering happens in the service.
type Repository interface {
	AggregateRange(ctx context.Context, start, end time.Time) (*Totals, error)
	DailyBreakdown(ctx context.Context, start, end time.Time) ([]DailyRevenue, error)
	TransactionsForRange(ctx context.Context, start, end time.Time) ([]TransactionDetail, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a reporting repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) AggregateRange(ctx context.Context, start, end time.Time) (*Totals, error) {
	var row struct {
		Count int64
		Sum   decimal.NullDecimal
		Avg   decimal.NullDecimal
		Min   decimal.NullDecimal
		Max   decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)    AS count,
		       SUM(amount) AS sum,
		       AVG(amount) AS avg,
		       MIN(amount) AS min,
		       MAX(amount) AS max
		FROM transactions
		WHERE DATE(occurred_at) BETWEEN ? AND ?`,
		start.Format(dateLayout), end.Format(dateLayout)).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &Totals{
		Count: row.Count,
		Sum:   orZero(row.Sum),
		Avg:   orZero(row.Avg),
		Min:   orZero(row.Min),
		Max:   orZero(row.Max),
	}, nil
}

func (r *gormRepository) DailyBreakdown(ctx context.Context, start, end time.Time) ([]DailyRevenue, error) {
	var rows []DailyRevenue
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE_FORMAT(occurred_at, '%Y-%m-%d') AS date,
		       COUNT(*)                             AS count,
		       SUM(amount)                          AS sum
		FROM transactions
		WHERE DATE(occurred_at) BETWEEN ? AND ?
		GROUP BY DATE(occurred_at)
		ORDER BY DATE(occurred_at) ASC`,
		start.Format(dateLayout), end.Format(dateLayout)).
		Scan(&rows).Error
	return rows, err
}

func (r *gormRepository) TransactionsForRange(ctx context.Context, start, end time.Time) ([]TransactionDetail, error) {
	var rows []TransactionDetail
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.id,
		       t.amount,
		       t.external_transaction_id,
		       t.occurred_at,
		       u.name  AS user_name,
		       u.email AS user_email,
		       e.plan_id,
		       COALESCE(p.name, ?) AS plan_name
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		LEFT JOIN enrollments e ON e.id = (
			SELECT e2.id FROM enrollments e2
			WHERE e2.user_id = u.id
			ORDER BY e2.id DESC
			LIMIT 1
		)
		LEFT JOIN plans p ON p.id = e.plan_id
		WHERE DATE(t.occurred_at) BETWEEN ? AND ?
		ORDER BY t.occurred_at DESC`,
		models.DefaultPlanLabel,
		start.Format(dateLayout), end.Format(dateLayout)).
		Scan(&rows).Error
	return rows, err
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}
