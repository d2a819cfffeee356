package web

import (
	"context"
	"net/http"
	"strings"
)

func (wh *WebHandler) buildHandlerChain(handler HandlerFunc, middleware ...Middleware) HandlerFunc {
	allMiddleware := make([]Middleware, 0, len(wh.globalMiddleware)+len(middleware))
	allMiddleware = append(allMiddleware, wh.globalMiddleware...)
	allMiddleware = append(allMiddleware, middleware...)

	final := handler
	for i := len(allMiddleware) - 1; i >= 0; i-- {
		final = allMiddleware[i](final)
	}

	return final
}

func (wh *WebHandler) hasPreflight(path string) bool {
	if wh.preflight[path] {
		return true
	}
	wh.preflight[path] = true
	return false
}

func (wh *WebHandler) corsMiddleware() Middleware {
	allowHeaders := strings.Join(wh.corsHeaders, ", ")

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, r *http.Request) Encoder {
			w := GetWriter(ctx)
			if w == nil {
				return NewError("internal server error: response writer not available")
			}

			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range wh.corsOrigins {
				if allowedOrigin == "*" || allowedOrigin == origin {
					w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
					break
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			if allowHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
			}
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				return NewNoResponse()
			}

			return next(ctx, r)
		}
	}
}
