// Package tasktypesrepobridge contains the task type CRUD endpoints.
package tasktypesrepobridge

import (
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
)

// Config holds configuration for the TaskType bridge
type Config struct {
	Log        *logger.Logger
	Repository *tasktypesrepo.Repository
	Tasks      *tasksrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for TaskType
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg)

	group.GET("/types", b.httpList, cfg.Middleware...)
	group.POST("/types", b.httpCreate, cfg.Middleware...)
	group.GET("/types/{type_id}", b.httpGetByID, cfg.Middleware...)
	group.PUT("/types/{type_id}", b.httpUpdate, cfg.Middleware...)
	group.DELETE("/types/{type_id}", b.httpDelete, cfg.Middleware...)
}
