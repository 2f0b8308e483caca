package revenue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrInvalidRange means the caller passed start > end. The bounds are a
// caller contract; they are never silently swapped.
var ErrInvalidRange = errors.New("start date must not be after end date")

// Service shapes the raw reporting queries into revenue reports. It is
// read-only and safe to use concurrently with enroll operations: the enroll
// path writes its rows in a single DB transaction, so a report never observes
// a transaction row without its enrollment batch.
type Service struct {
	repo Repository
}

// NewService creates a reporting service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a reporting service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RevenueForRange returns the aggregate totals and the ascending daily series
// for the inclusive date range. Zero transactions in range is a valid result
// with Count 0, zero amounts and an empty series, not an error.
func (s *Service) RevenueForRange(ctx context.Context, start, end time.Time) (*Report, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	totals, err := s.repo.AggregateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregate revenue: %w", err)
	}
	daily, err := s.repo.DailyBreakdown(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily revenue breakdown: %w", err)
	}

	return &Report{
		Start:  start.Format(dateLayout),
		End:    end.Format(dateLayout),
		Totals: *totals,
		Daily:  daily,
	}, nil
}

// TransactionsForRange returns the detail listing for the inclusive date
// range, most recent first.
func (s *Service) TransactionsForRange(ctx context.Context, start, end time.Time) ([]TransactionDetail, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	details, err := s.repo.TransactionsForRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return details, nil
}

func checkRange(start, end time.Time) error {
	s := start.Format(dateLayout)
	e := end.Format(dateLayout)
	if s > e {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, s, e)
	}
	return nil
}
