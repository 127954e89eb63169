package main

import (
	"github.com/collabdesk/backend/internal/config"
	"github.com/collabdesk/backend/internal/handlers"
	"github.com/collabdesk/backend/internal/models"
	"github.com/collabdesk/backend/internal/services"
	"github.com/collabdesk/backend/internal/utils"
	"github.com/collabdesk/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	taskQueue      services.TaskQueue
	worker         *services.Worker
	maintenance    *services.MaintenanceScheduler
	authHandler    *handlers.AuthHandler
	projectHandler *handlers.ProjectHandler
	inviteHandler  *handlers.InviteHandler
	postHandler    *handlers.PostHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(models.GetDB())

	// Nightly cleanup of system logs and stale refresh tokens
	maintenance := services.NewMaintenanceScheduler(models.GetDB())
	maintenance.Start()

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	notificationService := services.NewNotificationService(models.GetDB())
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(notificationService.ProcessNotifyTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.NewWorker(&cfg.Redis)
		worker.SetProcessor(notificationService.ProcessNotifyTask)
		if err := worker.Start(); err != nil {
			logger.Warn().Err(err).Msg("Failed to start notification worker")
			worker = nil
		}
	}

	notifier := services.NewQueueNotifier(taskQueue)
	billing := services.NewLocalBillingProvider()
	userService := services.NewUserService(models.GetDB(), billing)
	inviteService := services.NewInviteService(models.GetDB(), userService, notifier)
	projectService := services.NewProjectService(models.GetDB(), userService, inviteService)
	postService := services.NewPostService(models.GetDB(), notifier)
	authService := services.NewAuthService(models.GetDB(), userService, &cfg.JWT)

	return &appServices{
		taskQueue:      taskQueue,
		worker:         worker,
		maintenance:    maintenance,
		authHandler:    handlers.NewAuthHandler(models.GetDB(), authService, userService),
		projectHandler: handlers.NewProjectHandler(projectService, userService),
		inviteHandler:  handlers.NewInviteHandler(inviteService, projectService, userService),
		postHandler:    handlers.NewPostHandler(postService, userService),
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.maintenance.Stop()
	logger.Info().Msg("Schedulers stopped")

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
}
