package mid

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/infrastructure/web"
)

// UserIDHeader carries the caller identity. An upstream gateway has
// already authenticated it.
const UserIDHeader = "X-User-Id"

// Identity rejects requests without a caller identity and stores it for
// GetUserID.
func Identity() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				return errs.Newf(errs.Unauthenticated, "User ID required")
			}
			return next(setUserID(ctx, userID), r)
		}
	}
}
