package services

import (
	"time"

	"github.com/collabdesk/backend/internal/models"
	"github.com/collabdesk/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// MaintenanceScheduler runs the daily housekeeping jobs: pruning old
// system logs per the configured retention and dropping expired or
// revoked refresh tokens.
type MaintenanceScheduler struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewMaintenanceScheduler(db *gorm.DB) *MaintenanceScheduler {
	return &MaintenanceScheduler{db: db, cron: cron.New()}
}

// Start registers the jobs and starts the scheduler. Cleanup also runs
// once immediately so a long-stopped server catches up on startup.
func (s *MaintenanceScheduler) Start() {
	go s.runAll()

	if _, err := s.cron.AddFunc("30 3 * * *", s.runAll); err != nil {
		logger.Error().Err(err).Msg("failed to schedule maintenance jobs")
		return
	}
	s.cron.Start()
	logger.Info().Msg("maintenance scheduler started")
}

func (s *MaintenanceScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *MaintenanceScheduler) runAll() {
	s.cleanupSystemLogs()
	s.cleanupRefreshTokens()
}

func (s *MaintenanceScheduler) cleanupSystemLogs() {
	svc := NewSystemLogService(s.db)
	deleted, err := svc.CleanupOldLogs(svc.GetRetentionDays())
	if err != nil {
		logger.Error().Err(err).Msg("system log cleanup failed")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Msg("system logs pruned")
	}
}

func (s *MaintenanceScheduler) cleanupRefreshTokens() {
	result := s.db.Where("expires_at < ? OR revoked_at IS NOT NULL", time.Now()).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		logger.Error().Err(result.Error).Msg("refresh token cleanup failed")
		return
	}
	if result.RowsAffected > 0 {
		logger.Info().Int64("deleted", result.RowsAffected).Msg("stale refresh tokens pruned")
	}
}
