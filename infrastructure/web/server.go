package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/jrazmi/yata/sdk/environment"
)

// WebServer is an http.Server plus the settings it was built from.
type WebServer struct {
	*http.Server
	Config ServerConfig
}

// ServerConfig holds web server configuration (exportable)
type ServerConfig struct {
	Port            string        `env:"PORT" default:":3000"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"20s"`
}

type serveroptions struct {
	handler  http.Handler
	errorLog *log.Logger
}

type ServerOption func(*serveroptions)

func WithHandler(handler http.Handler) ServerOption {
	return func(o *serveroptions) {
		o.handler = handler
	}
}

// WithErrorLog routes net/http's internal errors to errorLog.
func WithErrorLog(errorLog *log.Logger) ServerOption {
	return func(o *serveroptions) {
		o.errorLog = errorLog
	}
}

// NewServerFromEnv creates a new WebServer from environment variables
func NewServerFromEnv(prefix string, opts ...ServerOption) (*WebServer, error) {
	var cfg ServerConfig
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing webserver config: %w", err)
	}
	return NewServer(cfg, opts...), nil
}

func NewServer(cfg ServerConfig, opts ...ServerOption) *WebServer {
	o := &serveroptions{}
	for _, opt := range opts {
		opt(o)
	}

	return &WebServer{
		Server: &http.Server{
			Addr:         cfg.Port,
			Handler:      o.handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			ErrorLog:     o.errorLog,
		},
		Config: cfg,
	}
}

// Run serves until ctx is done and then shuts down, giving in-flight
// requests up to ShutdownTimeout. If ready is non-nil it receives the bound
// address once the listener is open.
func (s *WebServer) Run(ctx context.Context, ready chan<- net.Addr) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	if ready != nil {
		ready <- ln.Addr()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)

	case <-ctx.Done():
	}

	timeout := s.Config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.Shutdown(sctx); err != nil {
		s.Close()
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}
	return nil
}
