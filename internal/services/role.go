package services

import (
	"errors"

	"github.com/collabdesk/backend/internal/models"
	"gorm.io/gorm"
)

// Role is a user's effective role on a project.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleClient  Role = "client"
	RoleNone    Role = "none"
)

// RoleService derives effective roles and capabilities. It never mutates
// anything; every gated operation goes through it instead of re-deriving
// authorization inline.
type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// RoleOf returns the user's role on the project. Ownership wins over a
// member row; member rows are unique per (project, user) so at most one
// role applies.
func (s *RoleService) RoleOf(project *models.Project, userID uint) (Role, error) {
	if project.OwnerID != nil && *project.OwnerID == userID {
		return RoleOwner, nil
	}

	var member models.ProjectMember
	err := s.db.Where("project_id = ? AND user_id = ?", project.ID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RoleNone, nil
	}
	if err != nil {
		return RoleNone, err
	}

	switch member.Role {
	case models.MemberRoleManager:
		return RoleManager, nil
	case models.MemberRoleClient:
		return RoleClient, nil
	}
	return RoleNone, nil
}

// CanEdit reports whether the user may edit the project and its posts.
func (s *RoleService) CanEdit(project *models.Project, userID uint) (bool, error) {
	role, err := s.RoleOf(project, userID)
	if err != nil {
		return false, err
	}
	return role == RoleOwner || role == RoleManager, nil
}

// IsAuthorizedViewer reports whether the user may see the project: any
// role counts, and so does a pending invite (invitees can preview before
// accepting).
func (s *RoleService) IsAuthorizedViewer(project *models.Project, userID uint) (bool, error) {
	role, err := s.RoleOf(project, userID)
	if err != nil {
		return false, err
	}
	if role != RoleNone {
		return true, nil
	}

	var count int64
	err = s.db.Model(&models.Invite{}).
		Where("project_id = ? AND invitee_id = ?", project.ID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
