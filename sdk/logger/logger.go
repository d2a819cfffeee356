// Package logger wraps slog with env-driven configuration and request-scoped
// trace ids.
package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/jrazmi/yata/sdk/environment"
)

// TraceIDFn extracts the trace id of the current request from its context.
type TraceIDFn func(ctx context.Context) string

// Logger is a wrapper around the standard slog.Logger.
type Logger struct {
	*slog.Logger
}

// Options is the exportable configuration struct.
type Options struct {
	Level       string `env:"LOG_LEVEL" default:"INFO"`
	Output      string `env:"LOG_OUTPUT" default:"STDOUT"`
	Format      string `env:"LOG_FORMAT" default:"json"`
	TimeFormat  string `env:"LOG_TIME_FORMAT" default:"RFC3339"`
	MaxSizeMB   int    `env:"LOG_MAX_SIZE_MB" default:"100"`
	MaxBackups  int    `env:"LOG_MAX_BACKUPS" default:"5"`
	MaxAgeDays  int    `env:"LOG_MAX_AGE_DAYS" default:"28"`
	AddSource   bool   `env:"LOG_ADD_SOURCE"`
	ServiceName string `env:"LOG_SERVICE_NAME"`
}

// options holds all configurable settings for the logger.
type options struct {
	level      slog.Level
	output     io.Writer
	addSource  bool
	format     string
	timeFormat string
	service    string
	traceID    TraceIDFn
}

// Option customizes the logger beyond what the environment provides.
type Option func(*options)

// WithLevel overrides the configured level.
func WithLevel(level string) Option {
	return func(o *options) {
		o.level = parseLevel(level)
	}
}

// WithOutput overrides the configured writer.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithService stamps every record with a service attribute.
func WithService(name string) Option {
	return func(o *options) {
		o.service = name
	}
}

// WithTraceID attaches the request trace id to every context-aware record.
func WithTraceID(fn TraceIDFn) Option {
	return func(o *options) {
		o.traceID = fn
	}
}

// NewDefault builds a JSON logger on stdout at INFO.
func NewDefault(opts ...Option) *Logger {
	return newLogger(Options{
		Level:      "INFO",
		Output:     "STDOUT",
		Format:     "json",
		TimeFormat: time.RFC3339,
	}, opts...)
}

// NewDiscard builds a logger that drops everything. Used by tests.
func NewDiscard() *Logger {
	return newLogger(Options{Level: "ERROR", Format: "text"}, WithOutput(io.Discard))
}

// NewFromEnv reads Options from the environment under prefix.
func NewFromEnv(prefix string, opts ...Option) (*Logger, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing logger config: %w", err)
	}
	return newLogger(cfg, opts...), nil
}

// NewStdLogger adapts the logger for APIs that want a *log.Logger, such as
// http.Server.ErrorLog.
func NewStdLogger(logger *Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(logger.Handler(), level)
}

func newLogger(cfg Options, opts ...Option) *Logger {
	o := &options{
		level:      parseLevel(cfg.Level),
		output:     parseOutput(cfg),
		addSource:  cfg.AddSource,
		timeFormat: cfg.TimeFormat,
		format:     cfg.Format,
		service:    cfg.ServiceName,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     o.level,
		AddSource: o.addSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.TimeKey || o.timeFormat == "" {
				return a
			}
			switch o.timeFormat {
			case "Unix":
				return slog.Int64(slog.TimeKey, a.Value.Time().Unix())
			case "UnixMilli":
				return slog.Int64(slog.TimeKey, a.Value.Time().UnixMilli())
			case "RFC3339Nano":
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339Nano))
			case "RFC3339":
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			default:
				return slog.String(slog.TimeKey, a.Value.Time().Format(o.timeFormat))
			}
		},
	}

	var handler slog.Handler
	switch o.format {
	case "text":
		handler = slog.NewTextHandler(o.output, handlerOpts)
	default:
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	}

	if o.traceID != nil {
		handler = &traceHandler{Handler: handler, traceID: o.traceID}
	}

	l := slog.New(handler)
	if o.service != "" {
		l = l.With("service", o.service)
	}
	return &Logger{Logger: l}
}

// traceHandler adds a trace_id attribute taken from the record's context.
type traceHandler struct {
	slog.Handler
	traceID TraceIDFn
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := h.traceID(ctx); id != "" {
			r.AddAttrs(slog.String("trace_id", id))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs), traceID: h.traceID}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name), traceID: h.traceID}
}

// InfoContextf logs an info message with formatting.
func (l *Logger) InfoContextf(ctx context.Context, format string, args ...any) {
	l.InfoContext(ctx, fmt.Sprintf(format, args...))
}

// ErrorContextf logs an error message with formatting.
func (l *Logger) ErrorContextf(ctx context.Context, format string, args ...any) {
	l.ErrorContext(ctx, fmt.Sprintf(format, args...))
}
