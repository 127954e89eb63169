package handlers

import (
	"time"

	"github.com/collabdesk/backend/internal/middleware"
	"github.com/collabdesk/backend/internal/models"
	"github.com/collabdesk/backend/internal/services"
	"github.com/collabdesk/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db    *gorm.DB
	auth  *services.AuthService
	users *services.UserService
}

func NewAuthHandler(db *gorm.DB, auth *services.AuthService, users *services.UserService) *AuthHandler {
	return &AuthHandler{db: db, auth: auth, users: users}
}

type tokenResponse struct {
	Token           string       `json:"token"`
	ExpireAt        time.Time    `json:"expire_at"`
	RefreshToken    string       `json:"refresh_token"`
	RefreshExpireAt time.Time    `json:"refresh_expire_at"`
	User            *models.User `json:"user"`
}

// Signup registers a new account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.Signup(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Login authenticates and returns access and refresh tokens.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tokenResponse{
		Token:           result.AccessToken,
		ExpireAt:        result.AccessExpireAt,
		RefreshToken:    result.RefreshToken,
		RefreshExpireAt: result.RefreshExpireAt,
		User:            result.User,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Refresh(req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tokenResponse{
		Token:           result.AccessToken,
		ExpireAt:        result.AccessExpireAt,
		RefreshToken:    result.RefreshToken,
		RefreshExpireAt: result.RefreshExpireAt,
		User:            result.User,
	})
}

// Logout revokes the presented refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		_ = h.auth.Logout(req.RefreshToken)
	}
	response.Success(c, gin.H{"message": "logged out"})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.users.FindByID(middleware.GetUserID(c))
	if err != nil {
		response.Unauthorized(c, "user not found")
		return
	}
	response.Success(c, user)
}
