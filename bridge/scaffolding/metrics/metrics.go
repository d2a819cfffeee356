// Package metrics publishes process counters through expvar.
package metrics

import (
	"context"
	"expvar"
	"runtime"
)

type metrics struct {
	goroutines *expvar.Int
	requests   *expvar.Int
	errors     *expvar.Int
	panics     *expvar.Int
	syncs      *expvar.Int
	failures   *expvar.Int
	resyncs    *expvar.Int
}

// m is process wide; expvar names can only be registered once.
var m metrics

func init() {
	m = metrics{
		goroutines: expvar.NewInt("goroutines"),
		requests:   expvar.NewInt("requests"),
		errors:     expvar.NewInt("errors"),
		panics:     expvar.NewInt("panics"),
		syncs:      expvar.NewInt("syncs"),
		failures:   expvar.NewInt("sync_failures"),
		resyncs:    expvar.NewInt("sync_resyncs"),
	}
}

type ctxKey int

const key ctxKey = 1

// Set stores the counters in ctx so handlers can reach them.
func Set(ctx context.Context) context.Context {
	return context.WithValue(ctx, key, &m)
}

func AddGoroutines(ctx context.Context) int64 {
	if v, ok := ctx.Value(key).(*metrics); ok {
		g := int64(runtime.NumGoroutine())
		v.goroutines.Set(g)
		return g
	}
	return 0
}

func AddRequests(ctx context.Context) int64 {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.requests.Add(1)
		return v.requests.Value()
	}
	return 0
}

func AddErrors(ctx context.Context) int64 {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.errors.Add(1)
		return v.errors.Value()
	}
	return 0
}

func AddPanics(ctx context.Context) int64 {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.panics.Add(1)
		return v.panics.Value()
	}
	return 0
}

// AddSyncs counts completed sync requests.
func AddSyncs(ctx context.Context) int64 {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.syncs.Add(1)
		return v.syncs.Value()
	}
	return 0
}

// AddSyncFailures counts sync requests that applied nothing.
func AddSyncFailures(ctx context.Context) int64 {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.failures.Add(1)
		return v.failures.Value()
	}
	return 0
}

// AddResyncs counts clients sent back to the epoch.
func AddResyncs(ctx context.Context) int64 {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.resyncs.Add(1)
		return v.resyncs.Value()
	}
	return 0
}
