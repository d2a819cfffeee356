// Package api mounts every bridge onto one web handler.
package api

import (
	"expvar"
	"net/http"

	"github.com/jrazmi/yata/app/yata/config"
	"github.com/jrazmi/yata/bridge/healthbridge"
	"github.com/jrazmi/yata/bridge/repositories/projectsrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/schemamigrationsrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/tasktypesrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/usersrepobridge"
	"github.com/jrazmi/yata/bridge/scaffolding/mid"
	"github.com/jrazmi/yata/bridge/syncbridge"
	"github.com/jrazmi/yata/infrastructure/web"
)

// Route prefixes.
const (
	APIRoute = "/api/v1"
	VarsPath = "/debug/vars"
)

// New builds the HTTP handler for cfg.
func New(cfg config.Yata, opts web.HandlerOptions) http.Handler {
	wh := web.NewWebHandler(opts,
		web.WithLogging(cfg.Logger.Logger),
		web.WithTelemetry(cfg.Telemetry),
		web.WithGlobalMiddleware(
			mid.Logger(cfg.Logger),
			mid.Errors(cfg.Logger),
			mid.Metrics(),
			mid.Panics(),
		),
	)

	repos := cfg.Datastore.Repositories
	identity := mid.Identity()
	authed := []web.Middleware{identity}

	api := wh.Group(APIRoute)

	healthbridge.AddHttpRoutes(api, healthbridge.Config{
		Log:   cfg.Logger,
		Check: cfg.Datastore.Check,
	})
	schemamigrationsrepobridge.AddHttpRoutes(api, schemamigrationsrepobridge.Config{
		Log:    cfg.Logger,
		Status: cfg.Datastore.MigrationStatus,
	})
	usersrepobridge.AddHttpRoutes(api, usersrepobridge.Config{
		Log:        cfg.Logger,
		Repository: repos.Users,
		Identity:   identity,
	})
	syncbridge.AddHttpRoutes(api, syncbridge.Config{
		Log:        cfg.Logger,
		Engine:     cfg.Engine,
		Middleware: []web.Middleware{identity, mid.SyncMetrics()},
	})
	tasksrepobridge.AddHttpRoutes(api, tasksrepobridge.Config{
		Log:        cfg.Logger,
		Repository: repos.Tasks,
		Projects:   repos.Projects,
		TaskTypes:  repos.TaskTypes,
		Engine:     cfg.Engine,
		Middleware: authed,
	})
	projectsrepobridge.AddHttpRoutes(api, projectsrepobridge.Config{
		Log:        cfg.Logger,
		Repository: repos.Projects,
		Tasks:      repos.Tasks,
		Middleware: authed,
	})
	tasktypesrepobridge.AddHttpRoutes(api, tasktypesrepobridge.Config{
		Log:        cfg.Logger,
		Repository: repos.TaskTypes,
		Tasks:      repos.Tasks,
		Middleware: authed,
	})

	wh.HandleRaw("GET "+VarsPath, expvar.Handler())

	return wh
}
