// Package projectsrepobridge contains the project CRUD endpoints.
package projectsrepobridge

import (
	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
)

// Config holds configuration for the Project bridge
type Config struct {
	Log        *logger.Logger
	Repository *projectsrepo.Repository
	Tasks      *tasksrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for Project
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg)

	group.GET("/projects", b.httpList, cfg.Middleware...)
	group.POST("/projects", b.httpCreate, cfg.Middleware...)
	group.GET("/projects/{project_id}", b.httpGetByID, cfg.Middleware...)
	group.PUT("/projects/{project_id}", b.httpUpdate, cfg.Middleware...)
	group.DELETE("/projects/{project_id}", b.httpDelete, cfg.Middleware...)
}
