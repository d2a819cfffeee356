package postgresdb

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// MultiQueryTracer fans every trace event out to several tracers, since pgx
// accepts only one per connection config.
type MultiQueryTracer struct {
	Tracers []pgx.QueryTracer
}

func NewMultiQueryTracer(tracers ...pgx.QueryTracer) *MultiQueryTracer {
	return &MultiQueryTracer{Tracers: tracers}
}

func (m *MultiQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range m.Tracers {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (m *MultiQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range m.Tracers {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

type queryKey int

const queryStartKey queryKey = 1

type queryStart struct {
	sql  string
	args []any
	at   time.Time
}

// LoggingQueryTracer writes one debug record per query with its duration
// and affected rows. Failed queries are logged at warn. Records go through
// the context so request trace ids are attached.
type LoggingQueryTracer struct {
	logger  *slog.Logger
	maxArgs int
}

func NewLoggingQueryTracer(logger *slog.Logger) *LoggingQueryTracer {
	return &LoggingQueryTracer{logger: logger, maxArgs: 16}
}

// compactSQL folds a multi-line statement onto one line.
func compactSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	s = strings.ReplaceAll(s, "( ", "(")
	return strings.ReplaceAll(s, " )", ")")
}

func (l *LoggingQueryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	args := data.Args
	if len(args) > l.maxArgs {
		args = args[:l.maxArgs]
	}
	return context.WithValue(ctx, queryStartKey, queryStart{sql: data.SQL, args: args, at: time.Now()})
}

func (l *LoggingQueryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	start, _ := ctx.Value(queryStartKey).(queryStart)

	attrs := []slog.Attr{
		slog.String("sql", compactSQL(start.sql)),
		slog.Any("args", start.args),
		slog.String("command_tag", data.CommandTag.String()),
		slog.Int64("rows", data.CommandTag.RowsAffected()),
	}
	if !start.at.IsZero() {
		attrs = append(attrs, slog.Duration("took", time.Since(start.at)))
	}

	if data.Err != nil {
		attrs = append(attrs, slog.String("error", data.Err.Error()))
		l.logger.LogAttrs(ctx, slog.LevelWarn, "query failed", attrs...)
		return
	}
	l.logger.LogAttrs(ctx, slog.LevelDebug, "query", attrs...)
}
