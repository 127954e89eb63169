package services

import (
	"github.com/collabdesk/backend/internal/models"
	"gorm.io/gorm"
)

// QuotaService evaluates plan-based limits on concurrently owned live
// projects. Checks are read-then-decide: two racing ownership changes on
// different projects can transiently exceed the cap, which is accepted and
// re-validated on the next ownership-sensitive operation.
type QuotaService struct {
	db *gorm.DB
}

func NewQuotaService(db *gorm.DB) *QuotaService {
	return &QuotaService{db: db}
}

// MaxProjects returns the live-project ownership cap for a plan tier.
func MaxProjects(planTier int) int {
	switch planTier {
	case models.PlanStarter:
		return 3
	case models.PlanStudio:
		return 10
	case models.PlanAgency:
		return 50
	default:
		return 1
	}
}

// OwnedLiveProjectCount counts non-finished projects owned by the user.
func (s *QuotaService) OwnedLiveProjectCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Project{}).
		Where("owner_id = ? AND is_finished = ?", userID, false).
		Count(&count).Error
	return count, err
}

// CheckQuota fails with ErrQuotaExceeded when the user's live ownership
// count has reached the plan cap. With allowEqual the count may sit at the
// cap, used by operations that do not add ownership.
func (s *QuotaService) CheckQuota(user *models.User, allowEqual bool) error {
	count, err := s.OwnedLiveProjectCount(user.ID)
	if err != nil {
		return err
	}

	max := int64(MaxProjects(user.PlanTier))
	if allowEqual {
		if count > max {
			return ErrQuotaExceeded
		}
		return nil
	}
	if count >= max {
		return ErrQuotaExceeded
	}
	return nil
}
