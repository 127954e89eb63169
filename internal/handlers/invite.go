package handlers

import (
	"github.com/collabdesk/backend/internal/services"
	"github.com/collabdesk/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type InviteHandler struct {
	invites  *services.InviteService
	projects *services.ProjectService
	users    *services.UserService
}

func NewInviteHandler(invites *services.InviteService, projects *services.ProjectService, users *services.UserService) *InviteHandler {
	return &InviteHandler{invites: invites, projects: projects, users: users}
}

// ListMine returns the acting user's pending invites.
func (h *InviteHandler) ListMine(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}

	invites, err := h.invites.ListForUser(user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invites)
}

// ListForProject returns a project's pending invites to an authorized
// viewer.
func (h *InviteHandler) ListForProject(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if _, err := h.projects.GetForViewer(user, projectID); err != nil {
		response.Error(c, err)
		return
	}

	invites, err := h.invites.ListForProject(projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invites)
}

// Accept applies the invite's membership to the acting user.
func (h *InviteHandler) Accept(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	inviteID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.invites.Accept(user, inviteID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "invite accepted"})
}

// Reject discards the invite.
func (h *InviteHandler) Reject(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	inviteID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.invites.Reject(user, inviteID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "invite rejected"})
}

// Revoke withdraws a pending invite on behalf of the project.
func (h *InviteHandler) Revoke(c *gin.Context) {
	user, ok := actingUser(c, h.users)
	if !ok {
		return
	}
	inviteID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.invites.Revoke(user, inviteID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "invite revoked"})
}
