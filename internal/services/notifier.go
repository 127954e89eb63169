package services

import (
	"context"
	"fmt"

	"github.com/collabdesk/backend/internal/models"
	"github.com/collabdesk/backend/pkg/logger"
	"gorm.io/gorm"
)

// Notifier dispatches user-facing notifications. Implementations must be
// fire-and-forget: a failed or slow delivery never blocks or fails the
// operation that triggered it.
type Notifier interface {
	NotifyInvited(invitee *models.User, project *models.Project, inviteType string)
	NotifyNewPost(project *models.Project, post *models.Post)
}

// QueueNotifier enqueues notification tasks onto the task queue; the
// worker (or the sync fallback) performs the actual delivery. Enqueue
// failures are logged and swallowed.
type QueueNotifier struct {
	queue TaskQueue
}

func NewQueueNotifier(queue TaskQueue) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (n *QueueNotifier) NotifyInvited(invitee *models.User, project *models.Project, inviteType string) {
	task := &NotifyTask{
		Kind:        NotifyKindInvited,
		RecipientID: invitee.ID,
		ProjectID:   project.ID,
		InviteType:  inviteType,
	}
	if err := n.queue.Enqueue(task); err != nil {
		logger.Error().Err(err).Uint("recipient_id", invitee.ID).Msg("failed to enqueue invite notification")
	}
}

func (n *QueueNotifier) NotifyNewPost(project *models.Project, post *models.Post) {
	task := &NotifyTask{
		Kind:      NotifyKindNewPost,
		ProjectID: project.ID,
		PostID:    post.ID,
	}
	if err := n.queue.Enqueue(task); err != nil {
		logger.Error().Err(err).Uint("post_id", post.ID).Msg("failed to enqueue post notification")
	}
}

// NotificationService delivers notification tasks, currently over email.
// It runs inside the worker or the sync queue, never on the request path.
type NotificationService struct {
	db    *gorm.DB
	email *EmailService
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db, email: NewEmailService(db)}
}

// ProcessNotifyTask is the task-queue processor for notification tasks.
func (s *NotificationService) ProcessNotifyTask(ctx context.Context, task *NotifyTask) error {
	var project models.Project
	if err := s.db.First(&project, task.ProjectID).Error; err != nil {
		// The project may be gone by delivery time; nothing to do.
		logger.Warn().Uint("project_id", task.ProjectID).Msg("notification dropped, project missing")
		return nil
	}

	switch task.Kind {
	case NotifyKindInvited:
		return s.deliverInvited(task, &project)
	case NotifyKindNewPost:
		return s.deliverNewPost(task, &project)
	default:
		logger.Warn().Str("kind", task.Kind).Msg("unknown notification kind")
		return nil
	}
}

func (s *NotificationService) deliverInvited(task *NotifyTask, project *models.Project) error {
	var recipient models.User
	if err := s.db.First(&recipient, task.RecipientID).Error; err != nil {
		logger.Warn().Uint("recipient_id", task.RecipientID).Msg("notification dropped, recipient missing")
		return nil
	}

	var subject, body string
	switch task.InviteType {
	case models.InviteTypeOwn:
		subject = fmt.Sprintf("You have been asked to run %q", project.Title)
		body = fmt.Sprintf("You were invited to take ownership of the project %q. Accept the invite to start managing it.", project.Title)
	case models.InviteTypeManage:
		subject = fmt.Sprintf("You have been invited to manage %q", project.Title)
		body = fmt.Sprintf("You were invited as a manager on the project %q.", project.Title)
	default:
		subject = fmt.Sprintf("You have been invited to %q", project.Title)
		body = fmt.Sprintf("You were invited to follow the project %q.", project.Title)
	}

	return s.email.Send([]string{recipient.Email}, subject, body)
}

func (s *NotificationService) deliverNewPost(task *NotifyTask, project *models.Project) error {
	var post models.Post
	if err := s.db.First(&post, task.PostID).Error; err != nil {
		logger.Warn().Uint("post_id", task.PostID).Msg("notification dropped, post missing")
		return nil
	}

	// All members plus the owner hear about new posts, except the author.
	var members []models.ProjectMember
	if err := s.db.Where("project_id = ?", project.ID).Preload("User").Find(&members).Error; err != nil {
		return err
	}

	recipients := make([]string, 0, len(members)+1)
	for _, m := range members {
		if m.UserID == post.AuthorID || m.User == nil {
			continue
		}
		recipients = append(recipients, m.User.Email)
	}
	if project.OwnerID != nil && *project.OwnerID != post.AuthorID {
		var owner models.User
		if err := s.db.First(&owner, *project.OwnerID).Error; err == nil {
			recipients = append(recipients, owner.Email)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("New activity on %q", project.Title)
	if post.Type == models.PostTypeStatus {
		subject = fmt.Sprintf("Status update on %q", project.Title)
	}
	return s.email.Send(recipients, subject, post.Body)
}
