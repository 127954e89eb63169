package models

import (
	"time"

	"gorm.io/gorm"
)

// Billing plan tiers. The tier caps how many live (non-finished) projects
// a user may own at once.
const (
	PlanFree    = 0
	PlanStarter = 1
	PlanStudio  = 2
	PlanAgency  = 3
)

// User represents an account. Users are created on signup or lazily when
// first referenced by email as a manager or client; lazy users have an
// empty password hash until they claim the account.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Name         string         `gorm:"size:100" json:"name"`
	Avatar       string         `gorm:"size:500" json:"avatar"`
	PlanTier     int            `gorm:"default:0" json:"plan_tier"` // 0-3
	IsDemo       bool           `gorm:"default:false" json:"is_demo"`
	CustomerID   string         `gorm:"size:100" json:"-"` // billing customer reference
	LastLogin    *time.Time     `json:"last_login"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }
