package subscription

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lromand/matchpoint/app/models"
)

// Gateway is the payment capability the orchestrator depends on. The HTTP
// client in internal/pkg/payment implements it; tests substitute fakes.
type Gateway interface {
	CreateAccount(ctx context.Context, accountID int64, cardNumber, cvv string) error
	Charge(ctx context.Context, accountID int64, amount decimal.Decimal) (string, error)
	UpdatePaymentMethod(ctx context.Context, accountID int64, cardNumber, cvv, holderName string) error
}

const accountIDReserveRetries = 3

// Service orchestrates the enroll-and-charge workflow across the payment
// gateway and the local store. There is no cross-system transaction: the
// remote charge and the local writes are independent steps, so every failure
// after a successful charge is surfaced as reconciliation-required instead of
// being rolled back.
type Service struct {
	gateway Gateway
	repo    Repository
	now     func() time.Time
}

// NewService creates an orchestrator from an injected gateway and repository.
func NewService(gateway Gateway, repo Repository) *Service {
	return &Service{
		gateway: gateway,
		repo:    repo,
		now:     time.Now,
	}
}

// NewServiceFromDB creates an orchestrator from a GORM DB handle.
func NewServiceFromDB(gateway Gateway, db *gorm.DB) *Service {
	return NewService(gateway, NewRepository(db))
}

// Enroll registers the subscriber with the gateway, charges the initial
// amount and persists the user, enrollment and transaction rows in one local
// DB transaction. The step order is fixed: account id reservation, gateway
// account creation, gateway charge, local persistence. Failures before the
// charge leave no local rows beyond the failed attempt record and are safe to
// retry; failures after the charge return a *ReconciliationError.
func (s *Service) Enroll(ctx context.Context, in EnrollInput) (*EnrollResult, error) {
	attempt, err := s.reserveAttempt(in)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.CreateAccount(ctx, attempt.ExternalAccountID, in.CardNumber, in.CVV); err != nil {
		s.failAttempt(attempt, err)
		return nil, fmt.Errorf("gateway account creation failed: %w", err)
	}

	txnID, err := s.gateway.Charge(ctx, attempt.ExternalAccountID, in.Amount)
	if err != nil {
		// The gateway account already exists but carries no charge; orphaned
		// remote accounts are acceptable, the whole operation may be retried.
		s.failAttempt(attempt, err)
		return nil, fmt.Errorf("gateway charge failed: %w", err)
	}

	// The charge is a remote fact from here on. Everything below must surface
	// as reconciliation-required on failure, never as a plain error.
	attempt.Status = models.AttemptStatusCharged
	attempt.ExternalTransactionID = txnID
	if err := s.repo.SaveAttempt(attempt); err != nil {
		return nil, s.reconciliationRequired(attempt, err)
	}

	result := &EnrollResult{
		ExternalAccountID:     attempt.ExternalAccountID,
		ExternalTransactionID: txnID,
	}
	err = s.repo.InTransaction(func(tx Repository) error {
		user := &models.User{
			Name:              in.Name,
			Email:             in.Email,
			ExternalAccountID: attempt.ExternalAccountID,
		}
		if err := tx.CreateUser(user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrEmailTaken, in.Email)
			}
			return fmt.Errorf("persist subscriber: %w", err)
		}

		plan, err := tx.GetPlanByID(in.PlanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: plan %d", ErrPlanUnavailable, in.PlanID)
			}
			return fmt.Errorf("fetch plan %d: %w", in.PlanID, err)
		}

		sched := ScheduleFor(s.now(), plan)
		enrollment := &models.Enrollment{
			UserID:            user.ID,
			PlanID:            plan.ID,
			StartDate:         sched.StartDate,
			NextPaymentDate:   sched.NextPaymentDate,
			EndEngagementDate: sched.EndEngagementDate,
		}
		if err := tx.CreateEnrollment(enrollment); err != nil {
			return fmt.Errorf("persist enrollment: %w", err)
		}

		txn := &models.Transaction{
			UserID:                user.ID,
			Amount:                in.Amount,
			ExternalTransactionID: txnID,
			OccurredAt:            s.now(),
		}
		if err := tx.CreateTransaction(txn); err != nil {
			return fmt.Errorf("persist transaction: %w", err)
		}

		result.UserID = user.ID
		result.EnrollmentID = enrollment.ID
		return nil
	})
	if err != nil {
		return nil, s.reconciliationRequired(attempt, err)
	}

	attempt.Status = models.AttemptStatusPersisted
	if err := s.repo.SaveAttempt(attempt); err != nil {
		// The enrollment itself is complete; only the attempt marker is stale.
		log.Printf("[RECONCILE] attempt %s persisted but marker update failed: %v", attempt.ID, err)
	}
	return result, nil
}

// UpdatePaymentMethod replaces the card stored at the gateway for the
// subscriber with the given email and touches the profile timestamp.
func (s *Service) UpdatePaymentMethod(ctx context.Context, email, cardNumber, cvv, holderName string) error {
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("lookup subscriber %s: %w", email, err)
	}
	if err := s.gateway.UpdatePaymentMethod(ctx, user.ExternalAccountID, cardNumber, cvv, holderName); err != nil {
		return fmt.Errorf("gateway payment method update failed: %w", err)
	}
	return s.repo.TouchUser(user.ID)
}

// StalledAttempts lists attempts whose charge succeeded but whose local
// persistence never completed: either a recorded reconciliation_required, or
// an attempt stuck in charged after a crash. Detection only; repair is
// operator work against the remote ledger.
func (s *Service) StalledAttempts(olderThan time.Duration) ([]models.EnrollmentAttempt, error) {
	return s.repo.StalledAttempts(s.now().Add(-olderThan))
}

// SweepStalledAttempts logs a [RECONCILE] marker for every stalled attempt and
// returns how many were found. Run at startup so a crash between charged and
// persisted is visible as soon as the service comes back.
func SweepStalledAttempts(repo Repository) int {
	attempts, err := repo.StalledAttempts(time.Now())
	if err != nil {
		log.Printf("[RECONCILE] stalled attempt sweep failed: %v", err)
		return 0
	}
	for _, a := range attempts {
		log.Printf("[RECONCILE] attempt %s: status %s, gateway account %d, transaction %q, amount %s",
			a.ID, a.Status, a.ExternalAccountID, a.ExternalTransactionID, a.Amount)
	}
	return len(attempts)
}

// reserveAttempt persists the pending attempt record, claiming a gateway
// account id through the unique column. Collisions trigger a fresh candidate.
func (s *Service) reserveAttempt(in EnrollInput) (*models.EnrollmentAttempt, error) {
	for i := 0; i < accountIDReserveRetries; i++ {
		attempt := &models.EnrollmentAttempt{
			ID:                uuid.NewString(),
			Email:             in.Email,
			PlanID:            in.PlanID,
			ExternalAccountID: newExternalAccountID(s.now()),
			Amount:            in.Amount,
			Status:            models.AttemptStatusPending,
		}
		err := s.repo.CreateAttempt(attempt)
		if err == nil {
			return attempt, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("persist enrollment attempt: %w", err)
		}
	}
	return nil, ErrAccountIDExhausted
}

func (s *Service) failAttempt(attempt *models.EnrollmentAttempt, cause error) {
	attempt.Status = models.AttemptStatusFailed
	attempt.LastError = cause.Error()
	if err := s.repo.SaveAttempt(attempt); err != nil {
		log.Printf("attempt %s: could not record failure: %v", attempt.ID, err)
	}
}

// reconciliationRequired moves the attempt to reconciliation_required, writes
// the operational log marker and wraps the cause so callers can detect the
// class and operators can find the charge.
func (s *Service) reconciliationRequired(attempt *models.EnrollmentAttempt, cause error) error {
	attempt.Status = models.AttemptStatusReconciliationRequired
	attempt.LastError = cause.Error()
	if err := s.repo.SaveAttempt(attempt); err != nil {
		log.Printf("[RECONCILE] attempt %s: could not persist reconciliation marker: %v", attempt.ID, err)
	}

	recErr := &ReconciliationError{
		AttemptID:             attempt.ID,
		ExternalAccountID:     attempt.ExternalAccountID,
		ExternalTransactionID: attempt.ExternalTransactionID,
		Amount:                attempt.Amount,
		Err:                   cause,
	}
	log.Printf("[RECONCILE] %v", recErr)
	return recErr
}
