// Package syncbridge exposes the sync engine over HTTP.
package syncbridge

import (
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
)

type Config struct {
	Log        *logger.Logger
	Engine     *syncengine.Engine
	Middleware []web.Middleware
}

// AddHttpRoutes registers POST /sync.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Engine)

	group.POST("/sync", b.httpSync, cfg.Middleware...)
}
