package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lromand/matchpoint/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// userSubscriptionRow is the scan target for the admin listing query.
type userSubscriptionRow struct {
	ID                uint
	Name              string
	Email             string
	ExternalAccountID int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PlanName          *string
	NextPaymentDate   *time.Time
	EndEngagementDate *time.Time
}

const userSubscriptionSelect = `
	SELECT u.id, u.name, u.email, u.external_account_id, u.created_at, u.updated_at,
	       p.name AS plan_name, e.next_payment_date, e.end_engagement_date
	FROM users u
	LEFT JOIN enrollments e ON e.id = (
		SELECT MAX(e2.id) FROM enrollments e2 WHERE e2.user_id = u.id
	)
	LEFT JOIN plans p ON p.id = e.plan_id`

// ListWithSubscription retrieves a paginated list of users joined with
// their most recent enrollment and its plan. Users without an enrollment
// appear with the default plan label and empty dates.
func (r *userRepository) ListWithSubscription(offset, limit int) ([]UserWithSubscription, error) {
	var rows []userSubscriptionRow
	err := r.db.Raw(userSubscriptionSelect+`
		ORDER BY u.created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toUserWithSubscription(rows), nil
}

// SearchWithSubscription filters users by name or email and joins each match
// with its most recent enrollment and plan.
func (r *userRepository) SearchWithSubscription(query string) ([]UserWithSubscription, error) {
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	var rows []userSubscriptionRow
	err := r.db.Raw(userSubscriptionSelect+`
		WHERE u.name LIKE ? OR u.email LIKE ?
		ORDER BY u.created_at DESC
	`, searchPattern, searchPattern).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toUserWithSubscription(rows), nil
}

func toUserWithSubscription(rows []userSubscriptionRow) []UserWithSubscription {
	result := make([]UserWithSubscription, 0, len(rows))
	for _, row := range rows {
		entry := UserWithSubscription{
			User: models.User{
				ID:                row.ID,
				Name:              row.Name,
				Email:             row.Email,
				ExternalAccountID: row.ExternalAccountID,
				CreatedAt:         row.CreatedAt,
				UpdatedAt:         row.UpdatedAt,
			},
			PlanName:          models.DefaultPlanLabel,
			NextPaymentDate:   row.NextPaymentDate,
			EndEngagementDate: row.EndEngagementDate,
		}
		if row.PlanName != nil && *row.PlanName != "" {
			entry.PlanName = *row.PlanName
		}
		result = append(result, entry)
	}
	return result
}

// EnrollmentsWithPlan returns all enrollments of one user, newest first,
// each paired with its plan name.
func (r *userRepository) EnrollmentsWithPlan(userID uint) ([]EnrollmentWithPlan, error) {
	var enrollments []models.Enrollment
	err := r.db.Where("user_id = ?", userID).Order("id DESC").Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return []EnrollmentWithPlan{}, nil
	}

	planIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		planIDs = append(planIDs, e.PlanID)
	}
	var plans []models.Plan
	if err := r.db.Where("id IN ?", planIDs).Find(&plans).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(plans))
	for _, p := range plans {
		names[p.ID] = p.Name
	}

	result := make([]EnrollmentWithPlan, 0, len(enrollments))
	for _, e := range enrollments {
		name, ok := names[e.PlanID]
		if !ok {
			name = models.DefaultPlanLabel
		}
		result = append(result, EnrollmentWithPlan{Enrollment: e, PlanName: name})
	}
	return result, nil
}
