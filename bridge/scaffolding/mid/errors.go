package mid

import (
	"context"
	"log/slog"
	"net/http"
	"path"

	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
)

// Errors turns any error coming out of the call chain into an errs.Error.
// Client errors are logged at warn: a 409 or 410 is routine for a syncing
// device. Internal details never reach the client.
func Errors(log *logger.Logger) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)
			err := isError(resp)
			if err == nil {
				return resp
			}

			appErr := errs.FromError(err)

			level := slog.LevelError
			if appErr.HTTPStatus() < http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			log.Log(ctx, level, "handled error during request",
				"err", err,
				"code", appErr.Code,
				"method", r.Method,
				"path", r.URL.Path,
				"source_err_file", path.Base(appErr.FileName),
				"source_err_func", path.Base(appErr.FuncName))

			if appErr.Code == errs.InternalOnlyLog {
				appErr = errs.Newf(errs.Internal, "Internal Server Error")
			}

			return appErr
		}
	}
}
