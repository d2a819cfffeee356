package schemamigrationsrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
)

type bridge struct {
	log    *logger.Logger
	status func(ctx context.Context) ([]schemamigrationsrepo.Status, error)
}

func newBridge(log *logger.Logger, status func(ctx context.Context) ([]schemamigrationsrepo.Status, error)) *bridge {
	return &bridge{
		log:    log,
		status: status,
	}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	status, err := b.status(ctx)
	if err != nil {
		b.log.ErrorContext(ctx, "migration status failed", "error", err)
		return errs.Newf(errs.Unavailable, "store unavailable")
	}
	return fopbridge.ListResponse[Migration](MarshalListToBridge(status))
}
