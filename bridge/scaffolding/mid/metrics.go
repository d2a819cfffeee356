package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/bridge/scaffolding/metrics"
	"github.com/jrazmi/yata/infrastructure/web"
)

// goroutineSample is how many requests pass between goroutine samples.
const goroutineSample = 100

// Metrics counts requests and error responses.
func Metrics() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			ctx = metrics.Set(ctx)
			resp := next(ctx, r)

			if metrics.AddRequests(ctx)%goroutineSample == 0 {
				metrics.AddGoroutines(ctx)
			}
			if isError(resp) != nil {
				metrics.AddErrors(ctx)
			}
			return resp
		}
	}
}

// SyncMetrics counts the outcome of each request on the sync route. It
// needs Metrics further out in the chain.
func SyncMetrics() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			var appErr *errs.Error
			err := isError(resp)
			switch {
			case err == nil:
				metrics.AddSyncs(ctx)
			case errors.As(err, &appErr) && appErr.Code == errs.ResyncRequired:
				metrics.AddResyncs(ctx)
			default:
				metrics.AddSyncFailures(ctx)
			}
			return resp
		}
	}
}
