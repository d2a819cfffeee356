package workers

import (
	"sync/atomic"
	"time"
)

// Metrics receives pool events.
type Metrics interface {
	WorkerStarted()
	WorkerStopped()
	Panic()
	CheckedOut()
	CheckoutFailed()
	Completed(elapsed time.Duration)
	Failed(elapsed time.Duration)
	Retried()
	Snapshot() Snapshot
}

// Snapshot is a point-in-time copy of a pool's counters.
type Snapshot struct {
	WorkersStarted int64         `json:"workers_started"`
	WorkersActive  int64         `json:"workers_active"`
	Panics         int64         `json:"panics"`
	CheckedOut     int64         `json:"checked_out"`
	CheckoutErrors int64         `json:"checkout_errors"`
	Completed      int64         `json:"completed"`
	Failed         int64         `json:"failed"`
	Retries        int64         `json:"retries"`
	TotalElapsed   time.Duration `json:"total_elapsed_ns"`
}

type noopMetrics struct{}

func (noopMetrics) WorkerStarted()          {}
func (noopMetrics) WorkerStopped()          {}
func (noopMetrics) Panic()                  {}
func (noopMetrics) CheckedOut()             {}
func (noopMetrics) CheckoutFailed()         {}
func (noopMetrics) Completed(time.Duration) {}
func (noopMetrics) Failed(time.Duration)    {}
func (noopMetrics) Retried()                {}
func (noopMetrics) Snapshot() Snapshot      { return Snapshot{} }

// Counters is a lock-free in-memory Metrics.
type Counters struct {
	started    atomic.Int64
	stopped    atomic.Int64
	panics     atomic.Int64
	checkedOut atomic.Int64
	checkout   atomic.Int64
	completed  atomic.Int64
	failed     atomic.Int64
	retries    atomic.Int64
	elapsed    atomic.Int64
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) WorkerStarted()  { c.started.Add(1) }
func (c *Counters) WorkerStopped()  { c.stopped.Add(1) }
func (c *Counters) Panic()          { c.panics.Add(1) }
func (c *Counters) CheckedOut()     { c.checkedOut.Add(1) }
func (c *Counters) CheckoutFailed() { c.checkout.Add(1) }
func (c *Counters) Retried()        { c.retries.Add(1) }

func (c *Counters) Completed(elapsed time.Duration) {
	c.completed.Add(1)
	c.elapsed.Add(int64(elapsed))
}

func (c *Counters) Failed(elapsed time.Duration) {
	c.failed.Add(1)
	c.elapsed.Add(int64(elapsed))
}

func (c *Counters) Snapshot() Snapshot {
	started := c.started.Load()
	return Snapshot{
		WorkersStarted: started,
		WorkersActive:  started - c.stopped.Load(),
		Panics:         c.panics.Load(),
		CheckedOut:     c.checkedOut.Load(),
		CheckoutErrors: c.checkout.Load(),
		Completed:      c.completed.Load(),
		Failed:         c.failed.Load(),
		Retries:        c.retries.Load(),
		TotalElapsed:   time.Duration(c.elapsed.Load()),
	}
}
