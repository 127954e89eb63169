package models

import "time"

// Membership roles stored on project_members rows. The owner is tracked on
// the project itself and never appears as a member row, so the unique index
// on (project_id, user_id) keeps a user to a single role per project.
const (
	MemberRoleManager = "manager"
	MemberRoleClient  = "client"
)

// ProjectMember represents a user's membership and role within a project.
type ProjectMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string    `gorm:"size:50;not null" json:"role"` // manager, client
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProjectMember) TableName() string { return "project_members" }
