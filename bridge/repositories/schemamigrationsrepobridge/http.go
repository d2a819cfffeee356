// Package schemamigrationsrepobridge reports schema migration state over HTTP.
package schemamigrationsrepobridge

import (
	"context"

	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
)

type Config struct {
	Log        *logger.Logger
	Status     func(ctx context.Context) ([]schemamigrationsrepo.Status, error)
	Middleware []web.Middleware
}

func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Status)

	group.GET("/migrations", b.httpList, cfg.Middleware...)
}
