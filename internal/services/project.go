package services

import (
	"errors"

	"github.com/collabdesk/backend/internal/models"
	"gorm.io/gorm"
)

// ProjectService owns the project lifecycle: creation from either side of
// the owner/client relationship, membership changes, finish/revive and
// deletion. Membership mutations are delegated to InviteService so the
// invite state machine stays the single writer of member rows.
type ProjectService struct {
	db      *gorm.DB
	roles   *RoleService
	quota   *QuotaService
	users   *UserService
	invites *InviteService
}

func NewProjectService(db *gorm.DB, users *UserService, invites *InviteService) *ProjectService {
	return &ProjectService{
		db:      db,
		roles:   NewRoleService(db),
		quota:   NewQuotaService(db),
		users:   users,
		invites: invites,
	}
}

type CreateAsClientRequest struct {
	ManagerEmail  string `json:"manager_email" binding:"required,email"`
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	InitialStatus string `json:"initial_status"`
}

type CreateAsManagerRequest struct {
	ClientEmails []string `json:"client_emails"`
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
}

type EditProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// CreateAsClient creates a project on behalf of a client and invites the
// named manager to take ownership. The project has no owner until that
// own-type invite is accepted, so the client's quota is never touched.
func (s *ProjectService) CreateAsClient(user *models.User, req *CreateAsClientRequest) (*models.Project, error) {
	managerEmail := NormalizeEmail(req.ManagerEmail)
	if managerEmail == NormalizeEmail(user.Email) {
		return nil, ErrSelfAsManager
	}
	if len(req.InitialStatus) > models.MaxStatusLength {
		return nil, ErrStatusTooLong
	}

	manager, err := s.users.FindOrCreateByEmail(managerEmail)
	if err != nil {
		return nil, err
	}
	if manager.IsDemo {
		return nil, ErrDemoAsManager
	}

	project := models.Project{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		if err := addMember(tx, project.ID, user.ID, models.MemberRoleClient); err != nil {
			return err
		}
		if req.InitialStatus != "" {
			post := models.Post{
				ProjectID: project.ID,
				AuthorID:  user.ID,
				Body:      req.InitialStatus,
				Type:      models.PostTypeStatus,
			}
			if err := tx.Create(&post).Error; err != nil {
				return err
			}
			return tx.Model(&project).Updates(map[string]interface{}{
				"last_post_id":   post.ID,
				"last_status_id": post.ID,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, _, err := s.invites.Create(user, &project, manager, models.InviteTypeOwn); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateAsManager creates a project owned by the acting user and invites
// the listed clients. Ownership is immediate, so the quota is checked up
// front.
func (s *ProjectService) CreateAsManager(user *models.User, req *CreateAsManagerRequest) (*models.Project, error) {
	ownEmail := NormalizeEmail(user.Email)
	for _, email := range req.ClientEmails {
		if NormalizeEmail(email) == ownEmail {
			return nil, ErrSelfAsClient
		}
	}

	// Resolve up front so a demo address fails the whole call, unlike the
	// silent filtering on later bulk additions.
	clients := make([]*models.User, 0, len(req.ClientEmails))
	for _, email := range req.ClientEmails {
		client, err := s.users.FindOrCreateByEmail(email)
		if err != nil {
			return nil, err
		}
		if client.IsDemo {
			return nil, ErrDemoAsClient
		}
		clients = append(clients, client)
	}

	if err := s.quota.CheckQuota(user, false); err != nil {
		return nil, err
	}

	ownerID := user.ID
	project := models.Project{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		OwnerID:     &ownerID,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	if _, err := s.invites.BulkCreate(user, &project, req.ClientEmails, models.InviteTypeClient); err != nil {
		return nil, err
	}
	return &project, nil
}

// AddManagers invites the given emails as managers. Editors only, blocked
// on finished projects and past the member cap.
func (s *ProjectService) AddManagers(actor *models.User, projectID uint, emails []string) ([]*models.Invite, error) {
	return s.addMembers(actor, projectID, emails, models.MemberRoleManager)
}

// AddClients invites the given emails as clients.
func (s *ProjectService) AddClients(actor *models.User, projectID uint, emails []string) ([]*models.Invite, error) {
	return s.addMembers(actor, projectID, emails, models.MemberRoleClient)
}

func (s *ProjectService) addMembers(actor *models.User, projectID uint, emails []string, memberRole string) ([]*models.Invite, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	canEdit, err := s.roles.CanEdit(project, actor.ID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, ErrNotAuthorized
	}
	if project.IsFinished {
		return nil, ErrProjectFinished
	}

	var count int64
	if err := s.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND role = ?", project.ID, memberRole).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count >= MaxProjectMembers {
		if memberRole == models.MemberRoleManager {
			return nil, ErrManagersOverLimit
		}
		return nil, ErrUsersOverLimit
	}

	inviteType := models.InviteTypeClient
	if memberRole == models.MemberRoleManager {
		inviteType = models.InviteTypeManage
	}
	return s.invites.BulkCreate(actor, project, emails, inviteType)
}

// RemoveManager strips a manager from the project. Owner only.
func (s *ProjectService) RemoveManager(actor *models.User, projectID, targetID uint) error {
	return s.removeMember(actor, projectID, targetID, models.MemberRoleManager)
}

// RemoveClient strips a client from the project. Owner only.
func (s *ProjectService) RemoveClient(actor *models.User, projectID, targetID uint) error {
	return s.removeMember(actor, projectID, targetID, models.MemberRoleClient)
}

func (s *ProjectService) removeMember(actor *models.User, projectID, targetID uint, memberRole string) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(project, actor.ID); err != nil {
		return err
	}

	return s.db.Where("project_id = ? AND user_id = ? AND role = ?", project.ID, targetID, memberRole).
		Delete(&models.ProjectMember{}).Error
}

// Edit updates title, description or image. Editors only.
func (s *ProjectService) Edit(actor *models.User, projectID uint, req *EditProjectRequest) (*models.Project, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	canEdit, err := s.roles.CanEdit(project, actor.ID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, ErrNotAuthorized
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Image != "" {
		updates["image"] = req.Image
	}
	if len(updates) == 0 {
		return project, nil
	}

	if err := s.db.Model(project).Updates(updates).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// Finish marks the project finished, releasing its slot against the
// owner's quota. Owner only.
func (s *ProjectService) Finish(actor *models.User, projectID uint) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(project, actor.ID); err != nil {
		return err
	}
	return s.db.Model(project).Update("is_finished", true).Error
}

// Revive reopens a finished project. Owner only; the project counts
// against the quota again, so the cap is re-checked.
func (s *ProjectService) Revive(actor *models.User, projectID uint) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(project, actor.ID); err != nil {
		return err
	}
	if err := s.quota.CheckQuota(actor, false); err != nil {
		return err
	}
	return s.db.Model(project).Update("is_finished", false).Error
}

// Delete removes the project with all of its invites, memberships and
// posts in one transaction. Owner only. A repeat of the call sees
// ErrProjectNotFound, never half-done cleanup.
func (s *ProjectService) Delete(actor *models.User, projectID uint) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if err := s.requireOwner(project, actor.ID); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Invite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	if err != nil {
		return err
	}

	LogInfo("project", "delete", "project deleted", &actor.ID, "", "", map[string]interface{}{
		"project_id": project.ID,
	})
	return nil
}

// Leave removes the acting user's own membership. The owner cannot leave;
// they finish or delete instead.
func (s *ProjectService) Leave(actor *models.User, projectID uint) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != nil && *project.OwnerID == actor.ID {
		return ErrLeaveAsOwner
	}

	return s.db.Where("project_id = ? AND user_id = ?", project.ID, actor.ID).
		Delete(&models.ProjectMember{}).Error
}

// GetForViewer loads a project for a user allowed to see it: members,
// the owner, and invitees with a pending invite.
func (s *ProjectService) GetForViewer(actor *models.User, projectID uint) (*models.Project, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	ok, err := s.roles.IsAuthorizedViewer(project, actor.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized
	}
	return project, nil
}

// ListForUser returns every project the user belongs to in any role,
// newest first.
func (s *ProjectService) ListForUser(userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.
		Joins("LEFT JOIN project_members ON project_members.project_id = projects.id AND project_members.user_id = ?", userID).
		Where("projects.owner_id = ? OR project_members.id IS NOT NULL", userID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	return projects, err
}

// Members returns the project's member rows with users preloaded.
func (s *ProjectService) Members(projectID uint) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := s.db.Where("project_id = ?", projectID).Preload("User").Find(&members).Error
	return members, err
}

func (s *ProjectService) findProject(projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) requireOwner(project *models.Project, userID uint) error {
	role, err := s.roles.RoleOf(project, userID)
	if err != nil {
		return err
	}
	if role != RoleOwner {
		return ErrNotAuthorized
	}
	return nil
}
