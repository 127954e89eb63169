package services

import (
	"errors"
	"strings"

	"github.com/collabdesk/backend/internal/models"
	"github.com/collabdesk/backend/pkg/logger"
	"gorm.io/gorm"
)

// UserService resolves and lazily creates users. Creation provisions a
// billing customer through the injected provider; a provisioning failure
// does not block user creation, the customer id is simply left empty and
// can be backfilled later.
type UserService struct {
	db      *gorm.DB
	billing BillingProvider
}

func NewUserService(db *gorm.DB, billing BillingProvider) *UserService {
	return &UserService{db: db, billing: billing}
}

// FindByID returns the user or gorm.ErrRecordNotFound.
func (s *UserService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreateByEmail returns the user with the given email, creating a
// bare account when none exists yet. Emails are matched case-insensitively
// and stored lowercased.
func (s *UserService) FindOrCreateByEmail(email string) (*models.User, error) {
	email = NormalizeEmail(email)

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{Email: email}
	if customerID, berr := s.billing.CreateCustomer(email); berr == nil {
		user.CustomerID = customerID
	} else {
		logger.Warn().Err(berr).Str("email", email).Msg("billing customer provisioning failed")
	}

	if err := s.db.Create(&user).Error; err != nil {
		// Lost a race against a concurrent creation for the same email;
		// the unique index on email makes the winner authoritative.
		if ferr := s.db.Where("email = ?", email).First(&user).Error; ferr == nil {
			return &user, nil
		}
		return nil, err
	}
	return &user, nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
