package models

import (
	"time"

	"gorm.io/gorm"
)

// Project represents a shared workspace between an owner, managers and
// clients. OwnerID stays nil until an own-type invite is accepted, which
// happens when a client creates a project and invites a manager to run it.
type Project struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:200;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Image        string         `gorm:"size:500" json:"image"`
	OwnerID      *uint          `gorm:"index" json:"owner_id"`
	Owner        *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	IsFinished   bool           `gorm:"default:false" json:"is_finished"`
	LastPostID   *uint          `json:"last_post_id"`
	LastStatusID *uint          `json:"last_status_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
