package main

import (
	"github.com/songyu/bugtrack/internal/config"
	"github.com/songyu/bugtrack/internal/handlers"
	"github.com/songyu/bugtrack/internal/models"
	"github.com/songyu/bugtrack/internal/services"
	"github.com/songyu/bugtrack/internal/utils"
	"github.com/songyu/bugtrack/pkg/logger"
)

// appServices holds the initialized services and handlers the router needs.
type appServices struct {
	authHandler      *handlers.AuthHandler
	userHandler      *handlers.UserHandler
	developerHandler *handlers.DeveloperHandler
	bugHandler       *handlers.BugHandler
	uploadHandler    *handlers.UploadHandler
}

// bootstrap connects the database, brings the schema up to date and wires
// handlers to services. Schema failure is fatal: the server must not come
// up against tables it cannot trust.
func bootstrap(cfg *config.Config) (*appServices, error) {
	utils.SetJWTSecret(cfg.JWT.Secret)

	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := models.EnsureSchema(db); err != nil {
		return nil, err
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Database ready")

	authService := services.NewAuthService(db)
	developerService := services.NewDeveloperService(db)
	bugService := services.NewBugService(db)
	storageService := services.NewStorageService(cfg.Upload.Dir)
	exportService := services.NewExportService(bugService)

	return &appServices{
		authHandler:      handlers.NewAuthHandler(authService, &cfg.JWT),
		userHandler:      handlers.NewUserHandler(authService),
		developerHandler: handlers.NewDeveloperHandler(developerService),
		bugHandler:       handlers.NewBugHandler(bugService, authService),
		uploadHandler:    handlers.NewUploadHandler(storageService, exportService),
	}, nil
}
