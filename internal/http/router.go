package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(securityHeaders())

	healthController := NewHealthController(cfg.Database, cfg.Version)
	if cfg.Fs != nil {
		healthController.WithScratch(cfg.Fs, cfg.ScratchDir)
	}
	router.GET("/health", healthController.Status)

	// Import endpoint
	if cfg.Importer != nil {
		importController := NewInstagramImportController(cfg)
		router.POST("/api/import/instagram", importController.Import)
	}

	// Profile endpoints
	if cfg.Profiles != nil {
		profilesController := NewProfilesController(cfg.Profiles)
		router.GET("/api/profiles", profilesController.List)
		router.GET("/api/profiles/:id", profilesController.Get)
		router.DELETE("/api/profiles/:id", profilesController.Delete)
		router.DELETE("/api/profiles", profilesController.DeleteAll)
	}

	// Import history endpoints
	if cfg.Sessions != nil {
		importsController := NewImportsController(cfg.Sessions)
		router.GET("/api/imports", importsController.List)
		router.GET("/api/imports/:id", importsController.Get)
	}

	// Task endpoints (only if task queue is enabled)
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	// Migrated media
	if cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}

	return router
}
