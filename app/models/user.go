package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// User is a subscriber. ExternalAccountID is the identifier under which the
// subscriber is registered at the payment gateway; it is generated per
// subscriber and has no relationship to the local primary key.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=1,max=150"`
	Email             string    `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email,max=200"`
	ExternalAccountID int64     `gorm:"not null;index" json:"external_account_id"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}
