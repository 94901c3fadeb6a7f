package main

import (
	"github.com/gin-gonic/gin"
	"github.com/songyu/bugtrack/internal/middleware"
	"github.com/songyu/bugtrack/internal/services"
	"github.com/songyu/bugtrack/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for login attempts
	loginLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "bugtrack"})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), svc.authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Bugs
			protected.GET("/bugs",
				middleware.RequirePermission(services.ActionViewBugs), svc.bugHandler.List)
			protected.GET("/bugs/export",
				middleware.RequirePermission(services.ActionExportData), svc.uploadHandler.ExportBugs)
			protected.GET("/bugs/:id",
				middleware.RequirePermission(services.ActionViewBugs), svc.bugHandler.Get)
			protected.POST("/bugs",
				middleware.RequirePermission(services.ActionCreateBug), svc.bugHandler.Create)
			protected.PUT("/bugs/:id", svc.bugHandler.Update) // ownership checked in handler
			protected.POST("/bugs/:id/status",
				middleware.RequirePermission(services.ActionViewBugs), svc.bugHandler.SetStatus)
			protected.DELETE("/bugs/:id",
				middleware.RequirePermission(services.ActionDeleteBug), svc.bugHandler.Delete)

			// Stats
			protected.GET("/stats",
				middleware.RequirePermission(services.ActionViewStats), svc.bugHandler.Stats)

			// Uploads (bug attachments)
			protected.POST("/uploads",
				middleware.RequirePermission(services.ActionCreateBug), svc.uploadHandler.Upload)

			// Developers (list readable by anyone who can file a bug,
			// writes gated on registry management)
			protected.GET("/developers", svc.developerHandler.List)
			protected.GET("/developers/:id", svc.developerHandler.Get)
			devAdmin := protected.Group("/developers",
				middleware.RequirePermission(services.ActionManageDevelopers))
			{
				devAdmin.POST("", svc.developerHandler.Create)
				devAdmin.PUT("/:id", svc.developerHandler.Update)
				devAdmin.DELETE("/:id", svc.developerHandler.Delete)
			}

			// Users (admin only)
			users := protected.Group("/users", middleware.AdminRequired())
			{
				users.GET("", svc.userHandler.List)
				users.GET("/:id", svc.userHandler.Get)
				users.POST("", svc.userHandler.Create)
				users.PUT("/:id", svc.userHandler.Update)
				users.PUT("/:id/password", svc.userHandler.ResetPassword)
				users.DELETE("/:id", svc.userHandler.Delete)
			}
		}
	}
}
