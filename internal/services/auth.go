package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/collabdesk/backend/internal/config"
	"github.com/collabdesk/backend/internal/models"
	"github.com/collabdesk/backend/internal/utils"
	"github.com/collabdesk/backend/pkg/response"
	"gorm.io/gorm"
)

var (
	errInvalidCredentials = response.NewUnauthorized("invalid email or password")
	errEmailTaken         = response.NewBadRequest("email is already registered")
	errInvalidRefresh     = response.NewUnauthorized("invalid or expired refresh token")
)

type AuthService struct {
	db        *gorm.DB
	users     *UserService
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, users *UserService, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{db: db, users: users, jwtConfig: jwtCfg}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
	User            *models.User
}

// Signup registers an account. An existing lazily-created user (invited
// by email before ever signing up) is claimed by setting its password;
// an account that already has a password is rejected.
func (s *AuthService) Signup(req *SignupRequest) (*models.User, error) {
	user, err := s.users.FindOrCreateByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if user.PasswordHash != "" {
		return nil, errEmailTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"password_hash": hash}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by email and password and issues an access token
// plus a rotating refresh token.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	var user models.User
	err := s.db.Where("email = ?", NormalizeEmail(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if user.PasswordHash == "" || !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}

	result, err := s.issueTokens(&user, clientIP, userAgent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Save(&user)

	return result, nil
}

// Refresh rotates a refresh token: the presented token is revoked and
// replaced, and a fresh access token is issued.
func (s *AuthService) Refresh(refreshToken, clientIP, userAgent string) (*LoginResult, error) {
	record, err := s.findActiveRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, record.UserID).Error; err != nil {
		return nil, errInvalidRefresh
	}

	result, err := s.issueTokens(&user, clientIP, userAgent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.db.Model(record).Update("revoked_at", &now)
	return result, nil
}

// Logout revokes the presented refresh token.
func (s *AuthService) Logout(refreshToken string) error {
	record, err := s.findActiveRefreshToken(refreshToken)
	if err != nil {
		return nil // already gone, nothing to revoke
	}
	now := time.Now()
	return s.db.Model(record).Update("revoked_at", &now).Error
}

func (s *AuthService) issueTokens(user *models.User, clientIP, userAgent string) (*LoginResult, error) {
	accessHours := s.jwtConfig.ExpireHour
	if accessHours <= 0 {
		accessHours = 24
	}
	refreshHours := s.jwtConfig.RefreshExpireHour
	if refreshHours <= 0 {
		refreshHours = 24 * 14
	}

	token, err := utils.GenerateToken(user.ID, user.Email, accessHours)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	refreshExpireAt := time.Now().Add(time.Duration(refreshHours) * time.Hour)
	record := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   refreshExpireAt,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  time.Now().Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
		User:            user,
	}, nil
}

func (s *AuthService) findActiveRefreshToken(refreshToken string) (*models.RefreshToken, error) {
	if refreshToken == "" {
		return nil, errInvalidRefresh
	}

	hash := hashRefreshToken(refreshToken)
	var record models.RefreshToken
	err := s.db.Where("token_hash = ?", hash).First(&record).Error
	if err != nil {
		return nil, errInvalidRefresh
	}
	if record.RevokedAt != nil || record.ExpiresAt.Before(time.Now()) {
		return nil, errInvalidRefresh
	}
	return &record, nil
}

// generateRefreshToken returns a random opaque token and its sha256 hash;
// only the hash is stored.
func generateRefreshToken() (token, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, hashRefreshToken(token), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
