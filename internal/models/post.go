package models

import (
	"time"

	"gorm.io/gorm"
)

// Post types. Status posts additionally update the project's last-status
// pointer and are capped at 250 characters.
const (
	PostTypePost   = "post"
	PostTypeStatus = "status"
)

// MaxStatusLength caps the body of a status post.
const MaxStatusLength = 250

// Post represents a message or status update inside a project.
// Attachments holds a JSON array of stored-object keys.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProjectID   uint           `gorm:"index;not null" json:"project_id"`
	Project     *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AuthorID    uint           `gorm:"index;not null" json:"author_id"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Body        string         `gorm:"type:text;not null" json:"body"`
	Type        string         `gorm:"size:20;default:post" json:"type"` // post, status
	Attachments string         `gorm:"type:text" json:"attachments"`
	Edited      bool           `gorm:"default:false" json:"edited"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Post) TableName() string { return "posts" }
