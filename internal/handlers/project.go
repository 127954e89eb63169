package handlers

import (
	"strconv"

	"github.com/collabdesk/backend/internal/middleware"
	"github.com/collabdesk/backend/internal/models"
	"github.com/collabdesk/backend/internal/services"
	"github.com/collabdesk/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projects *services.ProjectService
	users    *services.UserService
}

func NewProjectHandler(projects *services.ProjectService, users *services.UserService) *ProjectHandler {
	return &ProjectHandler{projects: projects, users: users}
}

// actingUser resolves the authenticated user or writes a 401.
func actingUser(c *gin.Context, users *services.UserService) (*models.User, bool) {
	user, err := users.FindByID(middleware.GetUserID(c))
	if err != nil {
		response.Unauthorized(c, "user not found")
		return nil, false
	}
	return user, true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// List returns every project the user belongs to.
func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}

	projects, err := h.projects.ListForUser(user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

// Get returns one project for an authorized viewer.
func (h *ProjectHandler) Get(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.GetForViewer(user, projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// CreateAsClient creates a project and invites a manager to own it.
func (h *ProjectHandler) CreateAsClient(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}

	var req services.CreateAsClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.CreateAsClient(user, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// CreateAsManager creates an owned project and invites clients.
func (h *ProjectHandler) CreateAsManager(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}

	var req services.CreateAsManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.CreateAsManager(user, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// Update edits title, description or image.
func (h *ProjectHandler) Update(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.EditProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Edit(user, projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Delete removes the project and all of its invites, members and posts.
func (h *ProjectHandler) Delete(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(user, projectID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "project deleted"})
}

// Finish marks the project finished.
func (h *ProjectHandler) Finish(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Finish(user, projectID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "project finished"})
}

// Revive reopens a finished project.
func (h *ProjectHandler) Revive(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Revive(user, projectID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "project revived"})
}

// Leave removes the acting user's membership.
func (h *ProjectHandler) Leave(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Leave(user, projectID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "left project"})
}

// Members lists the project's member rows.
func (h *ProjectHandler) Members(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Viewer check happens through the project load.
	if _, err := h.projects.GetForViewer(user, projectID); err != nil {
		response.Error(c, err)
		return
	}

	members, err := h.projects.Members(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, members)
}

type addMembersRequest struct {
	Emails []string `json:"emails" binding:"required,min=1"`
}

// AddManagers invites a list of emails as managers.
func (h *ProjectHandler) AddManagers(c *gin.Context) {
	h.addMembers(c, models.MemberRoleManager)
}

// AddClients invites a list of emails as clients.
func (h *ProjectHandler) AddClients(c *gin.Context) {
	h.addMembers(c, models.MemberRoleClient)
}

func (h *ProjectHandler) addMembers(c *gin.Context, role string) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req addMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var invites []*models.Invite
	var err error
	if role == models.MemberRoleManager {
		invites, err = h.projects.AddManagers(user, projectID, req.Emails)
	} else {
		invites, err = h.projects.AddClients(user, projectID, req.Emails)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"invited": len(invites), "invites": invites})
}

// RemoveManager strips a manager from the project.
func (h *ProjectHandler) RemoveManager(c *gin.Context) {
	h.removeMember(c, models.MemberRoleManager)
}

// RemoveClient strips a client from the project.
func (h *ProjectHandler) RemoveClient(c *gin.Context) {
	h.removeMember(c, models.MemberRoleClient)
}

func (h *ProjectHandler) removeMember(c *gin.Context, role string) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	targetID, ok := paramID(c, "userID")
	if !ok {
		return
	}

	var err error
	if role == models.MemberRoleManager {
		err = h.projects.RemoveManager(user, projectID, targetID)
	} else {
		err = h.projects.RemoveClient(user, projectID, targetID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "member removed"})
}
