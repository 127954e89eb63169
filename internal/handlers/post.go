package handlers

import (
	"github.com/collabdesk/backend/internal/services"
	"github.com/collabdesk/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
	users *services.UserService
}

func NewPostHandler(posts *services.PostService, users *services.UserService) *PostHandler {
	return &PostHandler{posts: posts, users: users}
}

// List returns a project's posts for an authorized viewer.
func (h *PostHandler) List(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	posts, err := h.posts.ListForProject(user, projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

// Create adds a post or status update to a project.
func (h *PostHandler) Create(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.AddPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.posts.Add(user, projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// Update edits a post's body and attachments.
func (h *PostHandler) Update(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.EditPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.posts.Edit(user, postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// Delete removes a post.
func (h *PostHandler) Delete(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.posts.Delete(user, postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "post deleted"})
}
