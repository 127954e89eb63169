package services

import (
	"encoding/json"
	"errors"

	"github.com/collabdesk/backend/internal/models"
	"gorm.io/gorm"
)

// PostService manages posts and status updates inside a project. Posting
// is editor-only; clients read. Adding and editing are blocked on finished
// projects, deleting is allowed regardless so a finished project can still
// be tidied up.
type PostService struct {
	db       *gorm.DB
	roles    *RoleService
	notifier Notifier
}

func NewPostService(db *gorm.DB, notifier Notifier) *PostService {
	return &PostService{
		db:       db,
		roles:    NewRoleService(db),
		notifier: notifier,
	}
}

type AddPostRequest struct {
	Body        string   `json:"body" binding:"required"`
	Type        string   `json:"type" binding:"omitempty,oneof=post status"`
	Attachments []string `json:"attachments"`
}

type EditPostRequest struct {
	Body        string   `json:"body" binding:"required"`
	Attachments []string `json:"attachments"`
}

// Add creates a post and bumps the project's last-post pointer; status
// posts also bump last-status and are length-capped.
func (s *PostService) Add(actor *models.User, projectID uint, req *AddPostRequest) (*models.Post, error) {
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

	postType := req.Type
	if postType == "" {
		postType = models.PostTypePost
	}
	if postType == models.PostTypeStatus && len(req.Body) > models.MaxStatusLength {
		return nil, ErrStatusTooLong
	}

	post := models.Post{
		ProjectID:   project.ID,
		AuthorID:    actor.ID,
		Body:        req.Body,
		Type:        postType,
		Attachments: encodeAttachments(req.Attachments),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"last_post_id": post.ID}
		if postType == models.PostTypeStatus {
			updates["last_status_id"] = post.ID
		}
		return tx.Model(project).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyNewPost(project, &post)
	return &post, nil
}

// Edit rewrites a post's body and attachments and marks it edited.
func (s *PostService) Edit(actor *models.User, postID uint, req *EditPostRequest) (*models.Post, error) {
	post, project, err := s.findPost(postID)
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
	if post.Type == models.PostTypeStatus && len(req.Body) > models.MaxStatusLength {
		return nil, ErrStatusTooLong
	}

	updates := map[string]interface{}{
		"body":   req.Body,
		"edited": true,
	}
	if req.Attachments != nil {
		updates["attachments"] = encodeAttachments(req.Attachments)
	}
	if err := s.db.Model(post).Updates(updates).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. Allowed on finished projects. The project's
// last-post/last-status pointers are moved back when they pointed at the
// deleted post.
func (s *PostService) Delete(actor *models.User, postID uint) error {
	post, project, err := s.findPost(postID)
	if err != nil {
		return err
	}

	canEdit, err := s.roles.CanEdit(project, actor.ID)
	if err != nil {
		return err
	}
	if !canEdit {
		return ErrNotAuthorized
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(post).Error; err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if project.LastPostID != nil && *project.LastPostID == post.ID {
			updates["last_post_id"] = lastPostID(tx, project.ID, "")
		}
		if project.LastStatusID != nil && *project.LastStatusID == post.ID {
			updates["last_status_id"] = lastPostID(tx, project.ID, models.PostTypeStatus)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(project).Updates(updates).Error
	})
}

// ListForProject returns a project's posts for an authorized viewer,
// newest first.
func (s *PostService) ListForProject(actor *models.User, projectID uint) ([]models.Post, error) {
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

	var posts []models.Post
	err = s.db.Where("project_id = ?", project.ID).
		Preload("Author").
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (s *PostService) findProject(projectID uint) (*models.Project, error) {
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

func (s *PostService) findPost(postID uint) (*models.Post, *models.Project, error) {
	var post models.Post
	err := s.db.First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrPostNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	project, err := s.findProject(post.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return &post, project, nil
}

// lastPostID finds the newest remaining post id of the given type, or nil.
func lastPostID(tx *gorm.DB, projectID uint, postType string) *uint {
	query := tx.Model(&models.Post{}).Where("project_id = ?", projectID)
	if postType != "" {
		query = query.Where("type = ?", postType)
	}

	var post models.Post
	if err := query.Order("created_at DESC").First(&post).Error; err != nil {
		return nil
	}
	id := post.ID
	return &id
}

func encodeAttachments(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	b, err := json.Marshal(keys)
	if err != nil {
		return ""
	}
	return string(b)
}
