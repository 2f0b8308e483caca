package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DefaultPlanLabel is used when a transaction cannot be linked to a plan.
const DefaultPlanLabel = "standard"

// Plan is a subscription tier with price, billing period and minimum
// engagement. Plans are maintained by the admin path; once an enrollment
// references a plan, price changes must not rewrite historical transactions
// (the charged amount is stored on the transaction itself).
type Plan struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	PeriodDays       int             `gorm:"not null" json:"period_days" validate:"required,min=1"`
	EngagementMonths int             `gorm:"not null;default:0" json:"engagement_months" validate:"min=0"`
	AutoRenew        bool            `gorm:"not null;default:false" json:"auto_renew"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Plan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
