package main

import (
	"github.com/collabdesk/backend/internal/handlers"
	"github.com/collabdesk/backend/internal/middleware"
	"github.com/collabdesk/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the public auth routes
	authLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	r.GET("/health", handlers.Health())

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/signup", svc.authHandler.Signup)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)

			// Projects
			protected.GET("/projects", svc.projectHandler.List)
			protected.GET("/projects/:id", svc.projectHandler.Get)
			protected.POST("/projects/as-client", svc.projectHandler.CreateAsClient)
			protected.POST("/projects/as-manager", svc.projectHandler.CreateAsManager)
			protected.PUT("/projects/:id", svc.projectHandler.Update)
			protected.DELETE("/projects/:id", svc.projectHandler.Delete)
			protected.POST("/projects/:id/finish", svc.projectHandler.Finish)
			protected.POST("/projects/:id/revive", svc.projectHandler.Revive)
			protected.POST("/projects/:id/leave", svc.projectHandler.Leave)

			// Project members
			protected.GET("/projects/:id/members", svc.projectHandler.Members)
			protected.POST("/projects/:id/managers", svc.projectHandler.AddManagers)
			protected.POST("/projects/:id/clients", svc.projectHandler.AddClients)
			protected.DELETE("/projects/:id/managers/:userID", svc.projectHandler.RemoveManager)
			protected.DELETE("/projects/:id/clients/:userID", svc.projectHandler.RemoveClient)

			// Invites
			protected.GET("/invites", svc.inviteHandler.ListMine)
			protected.GET("/projects/:id/invites", svc.inviteHandler.ListForProject)
			protected.POST("/invites/:id/accept", svc.inviteHandler.Accept)
			protected.POST("/invites/:id/reject", svc.inviteHandler.Reject)
			protected.DELETE("/invites/:id", svc.inviteHandler.Revoke)

			// Posts
			protected.GET("/projects/:id/posts", svc.postHandler.List)
			protected.POST("/projects/:id/posts", svc.postHandler.Create)
			protected.PUT("/posts/:id", svc.postHandler.Update)
			protected.DELETE("/posts/:id", svc.postHandler.Delete)
		}
	}
}
