package services

import (
	"errors"

	"github.com/collabdesk/backend/internal/models"
	"github.com/collabdesk/backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InviteService is the invite state machine. A pending invite is an
// invites row; accept, reject and revoke are terminal and delete it.
// Duplicate suppression is the unique index on (project_id, invitee_id)
// plus ON CONFLICT DO NOTHING, so two racing creates converge on a single
// row and a single notification.
type InviteService struct {
	db       *gorm.DB
	roles    *RoleService
	quota    *QuotaService
	users    *UserService
	notifier Notifier
}

func NewInviteService(db *gorm.DB, users *UserService, notifier Notifier) *InviteService {
	return &InviteService{
		db:       db,
		roles:    NewRoleService(db),
		quota:    NewQuotaService(db),
		users:    users,
		notifier: notifier,
	}
}

// Create proposes membership for invitee on the project. It is a
// successful no-op when a pending invite for (project, invitee) already
// exists; the existing invite is returned and no second notification goes
// out. The returned bool reports whether a new invite was created.
func (s *InviteService) Create(sender *models.User, project *models.Project, invitee *models.User, inviteType string) (*models.Invite, bool, error) {
	if invitee.ID == sender.ID {
		return nil, false, ErrSelfInvite
	}
	if invitee.IsDemo {
		return nil, false, ErrDemoTarget
	}

	invite := models.Invite{
		ProjectID: project.ID,
		SenderID:  sender.ID,
		InviteeID: invitee.ID,
		Type:      inviteType,
	}

	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&invite)
	if result.Error != nil {
		return nil, false, result.Error
	}

	if result.RowsAffected == 0 {
		// Lost to an existing pending invite; return it unchanged.
		var existing models.Invite
		if err := s.db.Where("project_id = ? AND invitee_id = ?", project.ID, invitee.ID).
			First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}

	s.notifier.NotifyInvited(invitee, project, inviteType)

	LogInfo("invite", "create", "invite created", &sender.ID, "", "", map[string]interface{}{
		"project_id": project.ID,
		"invitee_id": invitee.ID,
		"type":       inviteType,
	})
	return &invite, true, nil
}

// Accept applies the proposed membership and consumes the invite. Only the
// invitee may accept. Accepting ownership re-validates the acceptor's
// quota; manage and client invites bypass it since they never add an owned
// project.
func (s *InviteService) Accept(user *models.User, inviteID uint) error {
	invite, err := s.findForInvitee(user.ID, inviteID)
	if err != nil {
		return err
	}

	if invite.Type == models.InviteTypeOwn {
		if err := s.quota.CheckQuota(user, false); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Deleting first serializes racing accepts: the loser sees zero
		// rows and the membership is applied exactly once.
		result := tx.Delete(&models.Invite{}, invite.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInviteNotFound
		}

		switch invite.Type {
		case models.InviteTypeOwn:
			if err := tx.Model(&models.Project{}).Where("id = ?", invite.ProjectID).
				Update("owner_id", user.ID).Error; err != nil {
				return err
			}
			// The new owner must not linger as a member row.
			if err := tx.Where("project_id = ? AND user_id = ?", invite.ProjectID, user.ID).
				Delete(&models.ProjectMember{}).Error; err != nil {
				return err
			}
		case models.InviteTypeManage:
			return addMember(tx, invite.ProjectID, user.ID, models.MemberRoleManager)
		case models.InviteTypeClient:
			return addMember(tx, invite.ProjectID, user.ID, models.MemberRoleClient)
		}
		return nil
	})
}

// Reject discards the invite without any membership change.
func (s *InviteService) Reject(user *models.User, inviteID uint) error {
	invite, err := s.findForInvitee(user.ID, inviteID)
	if err != nil {
		return err
	}

	result := s.db.Delete(&models.Invite{}, invite.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// Revoke withdraws a pending invite. The owner may revoke any invite on
// the project; a manager may revoke client-type invites only.
func (s *InviteService) Revoke(actor *models.User, inviteID uint) error {
	var invite models.Invite
	if err := s.db.First(&invite, inviteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	var project models.Project
	if err := s.db.First(&project, invite.ProjectID).Error; err != nil {
		return err
	}

	role, err := s.roles.RoleOf(&project, actor.ID)
	if err != nil {
		return err
	}
	switch {
	case role == RoleOwner:
	case role == RoleManager && invite.Type == models.InviteTypeClient:
	default:
		return ErrNotAuthorized
	}

	result := s.db.Delete(&models.Invite{}, invite.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInviteNotFound
	}

	LogInfo("invite", "revoke", "invite revoked", &actor.ID, "", "", map[string]interface{}{
		"project_id": invite.ProjectID,
		"invitee_id": invite.InviteeID,
	})
	return nil
}

// BulkCreate resolves a list of emails and invites every valid candidate.
// Invalid candidates (self, demo, already a member, already invited,
// duplicate emails) are silently dropped: bulk invites are partial-success
// by design. Returns the invites actually created.
func (s *InviteService) BulkCreate(sender *models.User, project *models.Project, emails []string, inviteType string) ([]*models.Invite, error) {
	candidates, err := s.filterCandidates(sender, project, emails)
	if err != nil {
		return nil, err
	}

	var created []*models.Invite
	for _, candidate := range candidates {
		invite, isNew, err := s.Create(sender, project, candidate, inviteType)
		if err != nil {
			// A single bad candidate never fails the batch.
			logger.Warn().Err(err).Uint("invitee_id", candidate.ID).Msg("bulk invite skipped")
			continue
		}
		if isNew {
			created = append(created, invite)
		}
	}
	return created, nil
}

// filterCandidates resolves emails to users eligible for an invite on the
// project, dropping duplicates, demo accounts, existing members and users
// with a pending invite.
func (s *InviteService) filterCandidates(sender *models.User, project *models.Project, emails []string) ([]*models.User, error) {
	seen := make(map[string]bool, len(emails))
	var candidates []*models.User

	for _, email := range emails {
		email = NormalizeEmail(email)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true

		user, err := s.users.FindOrCreateByEmail(email)
		if err != nil {
			return nil, err
		}
		if user.IsDemo || user.ID == sender.ID {
			continue
		}

		role, err := s.roles.RoleOf(project, user.ID)
		if err != nil {
			return nil, err
		}
		if role != RoleNone {
			continue
		}

		var pending int64
		if err := s.db.Model(&models.Invite{}).
			Where("project_id = ? AND invitee_id = ?", project.ID, user.ID).
			Count(&pending).Error; err != nil {
			return nil, err
		}
		if pending > 0 {
			continue
		}

		candidates = append(candidates, user)
	}
	return candidates, nil
}

// ListForUser returns the user's pending invites, newest first.
func (s *InviteService) ListForUser(userID uint) ([]models.Invite, error) {
	var invites []models.Invite
	err := s.db.Where("invitee_id = ?", userID).
		Preload("Project").Preload("Sender").
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

// ListForProject returns the project's pending invites.
func (s *InviteService) ListForProject(projectID uint) ([]models.Invite, error) {
	var invites []models.Invite
	err := s.db.Where("project_id = ?", projectID).
		Preload("Invitee").
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

func (s *InviteService) findForInvitee(userID, inviteID uint) (*models.Invite, error) {
	var invite models.Invite
	err := s.db.Where("id = ? AND invitee_id = ?", inviteID, userID).First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// addMember inserts a membership row, tolerating a concurrent insert for
// the same (project, user).
func addMember(tx *gorm.DB, projectID, userID uint, role string) error {
	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
}
