package usersrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/yata/bridge/scaffolding/mid"
	"github.com/jrazmi/yata/core/repositories/usersrepo"
	"github.com/jrazmi/yata/infrastructure/web"
)

type bridge struct {
	userRepository *usersrepo.Repository
}

func newBridge(userRepository *usersrepo.Repository) *bridge {
	return &bridge{
		userRepository: userRepository,
	}
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input CreateUserInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.Invalid, err)
	}

	user, err := b.userRepository.Create(ctx, MarshalCreateToRepository(input))
	if err != nil {
		return errs.FromError(err)
	}
	return fopbridge.NewCreatedResponse(MarshalToBridge(user))
}

func (b *bridge) httpMe(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	user, err := b.userRepository.Get(ctx, userID)
	if err != nil {
		return errs.FromError(err)
	}
	return fopbridge.NewRecordResponse(MarshalToBridge(user))
}
