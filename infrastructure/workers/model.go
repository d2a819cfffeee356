package workers

import (
	"context"
	"time"
)

// Job is anything a pool can hand to a worker.
type Job interface {
	GetID() string
}

// Processor supplies jobs to a pool and records their outcome.
type Processor[T Job] interface {
	// Checkout returns the next job or ErrNoWorkAvailable. It is called
	// concurrently by every worker and must not hand a job out twice.
	Checkout(ctx context.Context, workerID string) (T, error)

	Process(ctx context.Context, job T) (T, error)

	Complete(ctx context.Context, job T, elapsed time.Duration) error

	Fail(ctx context.Context, job T, err error) error
}

// WorkFunc is one checkout-process-settle cycle of a worker.
type WorkFunc func(ctx context.Context, workerID string) error

type Middleware func(WorkFunc) WorkFunc

// PreProcessHook runs after checkout and before Process. Its error is
// logged but does not stop the job.
type PreProcessHook[T Job] func(ctx context.Context, job T) error

// PostProcessHook runs after Process with its error, before Complete or Fail.
type PostProcessHook[T Job] func(ctx context.Context, job T, err error) error
