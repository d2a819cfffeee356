// Package tasksrepobridge contains the task CRUD endpoints.
package tasksrepobridge

import (
	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
)

// Config holds configuration for the Task bridge. Writes go through the
// sync engine so they get the same reference and cycle checks as a sync.
// Projects and TaskTypes are read to embed relations in responses.
type Config struct {
	Log        *logger.Logger
	Repository *tasksrepo.Repository
	Projects   *projectsrepo.Repository
	TaskTypes  *tasktypesrepo.Repository
	Engine     *syncengine.Engine
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for Task
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg)

	group.GET("/tasks", b.httpList, cfg.Middleware...)
	group.POST("/tasks", b.httpCreate, cfg.Middleware...)
	group.POST("/tasks/reorder", b.httpReorder, cfg.Middleware...)
	group.GET("/tasks/{task_id}", b.httpGetByID, cfg.Middleware...)
	group.PUT("/tasks/{task_id}", b.httpUpdate, cfg.Middleware...)
	group.DELETE("/tasks/{task_id}", b.httpDelete, cfg.Middleware...)
}
