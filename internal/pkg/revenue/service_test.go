package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	totals  *Totals
	daily   []DailyRevenue
	details []TransactionDetail
	calls   int
	lastCtx context.Context
}

func (r *fakeRepo) AggregateRange(ctx context.Context, start, end time.Time) (*Totals, error) {
	r.calls++
	r.lastCtx = ctx
	if r.totals == nil {
		return &Totals{Sum: decimal.Zero, Avg: decimal.Zero, Min: decimal.Zero, Max: decimal.Zero}, nil
	}
	return r.totals, nil
}

func (r *fakeRepo) DailyBreakdown(ctx context.Context, start, end time.Time) ([]DailyRevenue, error) {
	r.calls++
	r.lastCtx = ctx
	return r.daily, nil
}

func (r *fakeRepo) TransactionsForRange(ctx context.Context, start, end time.Time) ([]TransactionDetail, error) {
	r.calls++
	r.lastCtx = ctx
	return r.details, nil
}

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRevenueForRangeInvertedBoundsFailFast(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.RevenueForRange(context.Background(), day("2024-02-01"), day("2024-01-01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Zero(t, repo.calls, "the store must not be queried for an invalid range")
}

func TestRevenueForRangeSingleDayRangeIsValid(t *testing.T) {
	svc := NewService(&fakeRepo{})

	report, err := svc.RevenueForRange(context.Background(), day("2024-01-01"), day("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", report.Start)
	assert.Equal(t, "2024-01-01", report.End)
}

func TestRevenueForRangeEmptyRangeIsNotAnError(t *testing.T) {
	svc := NewService(&fakeRepo{})

	report, err := svc.RevenueForRange(context.Background(), day("2024-01-01"), day("2024-01-03"))
	require.NoError(t, err)

	assert.EqualValues(t, 0, report.Totals.Count)
	assert.True(t, report.Totals.Sum.IsZero())
	assert.True(t, report.Totals.Avg.IsZero())
	assert.Empty(t, report.Daily)
}

func TestRevenueForRangeTotalsMatchDailySeries(t *testing.T) {
	repo := &fakeRepo{
		totals: &Totals{
			Count: 3,
			Sum:   decimal.RequireFromString("60.00"),
			Avg:   decimal.RequireFromString("20.00"),
			Min:   decimal.RequireFromString("10.00"),
			Max:   decimal.RequireFromString("30.00"),
		},
		daily: []DailyRevenue{
			{Date: "2024-01-01", Count: 1, Sum: decimal.RequireFromString("10.00")},
			{Date: "2024-01-02", Count: 1, Sum: decimal.RequireFromString("20.00")},
			{Date: "2024-01-03", Count: 1, Sum: decimal.RequireFromString("30.00")},
		},
	}
	svc := NewService(repo)

	report, err := svc.RevenueForRange(context.Background(), day("2024-01-01"), day("2024-01-03"))
	require.NoError(t, err)

	var count int64
	sum := decimal.Zero
	for _, d := range report.Daily {
		count += d.Count
		sum = sum.Add(d.Sum)
	}
	assert.Equal(t, report.Totals.Count, count)
	assert.True(t, report.Totals.Sum.Equal(sum), "range sum %s must equal sum of daily sums %s", report.Totals.Sum, sum)

	// The series stays in ascending day order.
	for i := 1; i < len(report.Daily); i++ {
		assert.Less(t, report.Daily[i-1].Date, report.Daily[i].Date)
	}
}

func TestRevenueForRangeForwardsRequestContext(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "request-scoped")

	_, err := svc.RevenueForRange(ctx, day("2024-01-01"), day("2024-01-02"))
	require.NoError(t, err)
	require.NotNil(t, repo.lastCtx)
	assert.Equal(t, "request-scoped", repo.lastCtx.Value(ctxKey{}))
}

func TestTransactionsForRangeValidatesBounds(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.TransactionsForRange(context.Background(), day("2024-03-02"), day("2024-03-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Zero(t, repo.calls)
}

func TestTransactionsForRangePassesDetailsThrough(t *testing.T) {
	planID := uint(7)
	repo := &fakeRepo{
		details: []TransactionDetail{
			{ID: 2, UserEmail: "b@example.com", PlanID: &planID, PlanName: "Premium", OccurredAt: day("2024-01-02")},
			{ID: 1, UserEmail: "a@example.com", PlanName: "standard", OccurredAt: day("2024-01-01")},
		},
	}
	svc := NewService(repo)

	details, err := svc.TransactionsForRange(context.Background(), day("2024-01-01"), day("2024-01-02"))
	require.NoError(t, err)
	require.Len(t, details, 2)

	// Most recent first; transactions without an enrollment keep the default label.
	assert.True(t, details[0].OccurredAt.After(details[1].OccurredAt))
	assert.Equal(t, "Premium", details[0].PlanName)
	assert.Nil(t, details[1].PlanID)
	assert.Equal(t, "standard", details[1].PlanName)
}
