// Package healthbridge reports whether the service can reach its store.
package healthbridge

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/jrazmi/yata/sdk/validation"
)

// Config holds configuration for the health bridge. Check pings the store.
type Config struct {
	Log   *logger.Logger
	Check func(ctx context.Context) error
	Now   func() time.Time
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (h Health) Encode() ([]byte, string, error) {
	data, err := json.Marshal(h)
	return data, "application/json", err
}

// AddHttpRoutes registers GET /health. It needs no caller identity.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	group.GET("/health", func(ctx context.Context, r *http.Request) web.Encoder {
		if cfg.Check != nil {
			if err := cfg.Check(ctx); err != nil {
				cfg.Log.ErrorContext(ctx, "health check failed", "error", err)
				return errs.Newf(errs.Unavailable, "store unavailable")
			}
		}
		return Health{Status: "ok", Timestamp: validation.FormatISO8601(cfg.Now())}
	})
}
