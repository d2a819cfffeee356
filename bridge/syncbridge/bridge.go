package syncbridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/bridge/scaffolding/mid"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
)

type bridge struct {
	log    *logger.Logger
	engine *syncengine.Engine
}

func newBridge(log *logger.Logger, engine *syncengine.Engine) *bridge {
	return &bridge{
		log:    log,
		engine: engine,
	}
}

func (b *bridge) httpSync(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var req SyncRequest
	if err := web.DecodeOptional(r, &req); err != nil {
		return errs.New(errs.Invalid, err)
	}
	since, err := parseLastPulledAt(req.LastPulledAt)
	if err != nil {
		return errs.FromError(err)
	}
	changes, err := MarshalChangesToCore(userID, req.Changes)
	if err != nil {
		return errs.FromError(err)
	}

	res, err := b.engine.Synchronize(ctx, userID, since, changes)
	if err != nil {
		return errs.FromError(err)
	}

	return MarshalResultToBridge(res)
}
