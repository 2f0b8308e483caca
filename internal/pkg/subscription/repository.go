package subscription

import (
	"time"

	"github.com/lromand/matchpoint/app/models"
	"gorm.io/gorm"
)

// Repository provides the DB operations used by the orchestrator.
// InTransaction hands the callback a Repository bound to one DB transaction;
// everything written through it commits or rolls back as a unit.
type Repository interface {
	CreateAttempt(attempt *models.EnrollmentAttempt) error
	SaveAttempt(attempt *models.EnrollmentAttempt) error
	StalledAttempts(chargedBefore time.Time) ([]models.EnrollmentAttempt, error)
	GetPlanByID(id uint) (*models.Plan, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user *models.User) error
	CreateEnrollment(enrollment *models.Enrollment) error
	CreateTransaction(txn *models.Transaction) error
	TouchUser(userID uint) error
	InTransaction(fn func(tx Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an enrollment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateAttempt(attempt *models.EnrollmentAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *gormRepository) SaveAttempt(attempt *models.EnrollmentAttempt) error {
	return r.db.Save(attempt).Error
}

func (r *gormRepository) StalledAttempts(chargedBefore time.Time) ([]models.EnrollmentAttempt, error) {
	var attempts []models.EnrollmentAttempt
	err := r.db.
		Where("status IN ? AND updated_at < ?",
			[]string{models.AttemptStatusCharged, models.AttemptStatusReconciliationRequired},
			chargedBefore).
		Order("updated_at ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *gormRepository) GetPlanByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *gormRepository) CreateEnrollment(enrollment *models.Enrollment) error {
	return r.db.Create(enrollment).Error
}

func (r *gormRepository) CreateTransaction(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

func (r *gormRepository) TouchUser(userID uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("updated_at", time.Now()).Error
}

func (r *gormRepository) InTransaction(fn func(tx Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
