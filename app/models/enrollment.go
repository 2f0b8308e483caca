package models

import "time"

// Enrollment links a User to a Plan together with the billing dates computed
// when the enrollment was created. NextPaymentDate is the start date plus the
// plan's billing period in days; EndEngagementDate is the start date plus the
// plan's minimum engagement in calendar months. Rows are never mutated after
// creation.
type Enrollment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	PlanID            uint      `gorm:"not null;index" json:"plan_id"`
	StartDate         time.Time `gorm:"type:date;not null" json:"start_date"`
	NextPaymentDate   time.Time `gorm:"type:date;not null" json:"next_payment_date"`
	EndEngagementDate time.Time `gorm:"type:date;not null" json:"end_engagement_date"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}
