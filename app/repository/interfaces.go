package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/lromand/matchpoint/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	Count() (int64, error)
	ListWithSubscription(offset, limit int) ([]UserWithSubscription, error)
	SearchWithSubscription(query string) ([]UserWithSubscription, error)
	EnrollmentsWithPlan(userID uint) ([]EnrollmentWithPlan, error)
}

// UserWithSubscription represents a user together with their latest enrollment
type UserWithSubscription struct {
	User              models.User
	PlanName          string
	NextPaymentDate   *time.Time
	EndEngagementDate *time.Time
}

// EnrollmentWithPlan pairs one enrollment with the name of its plan.
type EnrollmentWithPlan struct {
	Enrollment models.Enrollment
	PlanName   string
}

// Repositories struct holds all repository instances
type Repositories struct {
	User UserRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User: NewUserRepository(db),
	}
}
