// Package usersrepobridge contains the user endpoints.
package usersrepobridge

import (
	"github.com/jrazmi/yata/core/repositories/usersrepo"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
)

// Config holds configuration for the User bridge. Identity is applied to
// /users/me only; registering a user needs no caller.
type Config struct {
	Log        *logger.Logger
	Repository *usersrepo.Repository
	Identity   web.Middleware
}

// AddHttpRoutes registers all HTTP routes for User
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)

	group.POST("/users", b.httpCreate)
	group.GET("/users/me", b.httpMe, cfg.Identity)
}
