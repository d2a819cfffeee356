// Package web is a thin layer over net/http that lets handlers return values
// to encode instead of writing to the ResponseWriter themselves.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jrazmi/yata/sdk/environment"
)

// Encoder defines behavior that can encode a data model and provide
// the content type for that encoding.
type Encoder interface {
	Encode() (data []byte, contentType string, err error)
}

// HandlerFunc represents a function that handles a http request and returns something to encode
type HandlerFunc func(ctx context.Context, r *http.Request) Encoder

// Middleware wraps a HandlerFunc
type Middleware func(HandlerFunc) HandlerFunc

// Telemetry stamps each request context with a trace id.
type Telemetry interface {
	SetTraceID(ctx context.Context) context.Context
	GetTraceID(ctx context.Context) string
}

type WebHandler struct {
	mux       *http.ServeMux
	log       *slog.Logger
	telemetry Telemetry

	corsOrigins    []string
	corsHeaders    []string
	defaultHeaders map[string]string

	globalMiddleware []Middleware
	preflight        map[string]bool
}

// HandlerOptions is the exportable configuration struct
type HandlerOptions struct {
	CORSOrigins []string `env:"CORS_ORIGINS" default:"*" separator:","`
	CORSHeaders []string `env:"CORS_HEADERS" default:"Accept,Content-Type,Authorization,X-User-Id" separator:","`
}

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	log              *slog.Logger
	telemetry        Telemetry
	corsOrigins      []string
	corsHeaders      []string
	defaultHeaders   map[string]string
	globalMiddleware []Middleware
}

// WithLogging sets the logger
func WithLogging(log *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.log = log
	}
}

// WithTelemetry sets the telemetry provider
func WithTelemetry(tel Telemetry) HandlerOption {
	return func(o *handlerOptions) {
		o.telemetry = tel
	}
}

// WithCORS sets CORS origins
func WithCORS(origins []string) HandlerOption {
	return func(o *handlerOptions) {
		o.corsOrigins = origins
	}
}

// WithDefaultHeaders sets headers written on every response.
func WithDefaultHeaders(headers map[string]string) HandlerOption {
	return func(o *handlerOptions) {
		if o.defaultHeaders == nil {
			o.defaultHeaders = make(map[string]string)
		}
		for k, v := range headers {
			o.defaultHeaders[k] = v
		}
	}
}

// WithGlobalMiddleware adds global middleware
func WithGlobalMiddleware(middleware ...Middleware) HandlerOption {
	return func(o *handlerOptions) {
		o.globalMiddleware = append(o.globalMiddleware, middleware...)
	}
}

// NewWebHandlerFromEnv creates a new WebHandler from environment variables
func NewWebHandlerFromEnv(prefix string, opts ...HandlerOption) (*WebHandler, error) {
	var options HandlerOptions
	if err := environment.ParseEnvTags(prefix, &options); err != nil {
		return nil, fmt.Errorf("parsing webhandler config: %w", err)
	}
	return NewWebHandler(options, opts...), nil
}

// NewWebHandler creates a new WebHandler with given config and applies options
func NewWebHandler(cfg HandlerOptions, opts ...HandlerOption) *WebHandler {
	internalOpts := &handlerOptions{
		corsOrigins:      cfg.CORSOrigins,
		corsHeaders:      cfg.CORSHeaders,
		defaultHeaders:   make(map[string]string),
		globalMiddleware: make([]Middleware, 0),
	}

	for _, opt := range opts {
		opt(internalOpts)
	}

	handler := &WebHandler{
		mux:              http.NewServeMux(),
		log:              internalOpts.log,
		telemetry:        internalOpts.telemetry,
		corsOrigins:      internalOpts.corsOrigins,
		corsHeaders:      internalOpts.corsHeaders,
		defaultHeaders:   internalOpts.defaultHeaders,
		globalMiddleware: internalOpts.globalMiddleware,
		preflight:        make(map[string]bool),
	}

	// CORS runs outermost so preflight requests never reach identity checks.
	if len(handler.corsOrigins) > 0 {
		handler.globalMiddleware = append([]Middleware{handler.corsMiddleware()}, handler.globalMiddleware...)
	}

	return handler
}

func (a *WebHandler) Handle(method, path string, handler HandlerFunc, middleware ...Middleware) {
	finalHandler := a.buildHandlerChain(handler, middleware...)

	httpHandler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if a.telemetry != nil {
			ctx = a.telemetry.SetTraceID(ctx)
		}
		ctx = setWriter(ctx, w)
		for k, v := range a.defaultHeaders {
			w.Header().Set(k, v)
		}

		resp := finalHandler(ctx, r)

		if err := Respond(ctx, w, resp); err != nil && a.log != nil {
			a.log.ErrorContext(ctx, "respond error", "error", err)
		}
	}

	pattern := fmt.Sprintf("%s %s", strings.ToUpper(method), path)
	a.mux.HandleFunc(pattern, httpHandler)

	// Preflight requests share the path but not the method.
	if len(a.corsOrigins) > 0 && !a.hasPreflight(path) {
		a.mux.HandleFunc("OPTIONS "+path, func(w http.ResponseWriter, r *http.Request) {
			ctx := setWriter(r.Context(), w)
			_ = Respond(ctx, w, a.corsMiddleware()(func(context.Context, *http.Request) Encoder {
				return NewNoResponse()
			})(ctx, r))
		})
	}
}

// HandleRaw registers a plain http.Handler. Global middleware is not applied.
func (a *WebHandler) HandleRaw(pattern string, handler http.Handler) {
	a.mux.Handle(pattern, handler)
}

func (a *WebHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}
