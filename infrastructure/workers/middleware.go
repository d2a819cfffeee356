package workers

import (
	"context"
	"errors"
	"sync"
)

// ConsecutiveErrorShutdown stops a worker after more than limit failed
// cycles in a row. Idle cycles neither count nor reset.
func ConsecutiveErrorShutdown(limit int) Middleware {
	var (
		mu     sync.Mutex
		counts = make(map[string]int)
	)

	return func(next WorkFunc) WorkFunc {
		return func(ctx context.Context, workerID string) error {
			err := next(ctx, workerID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				counts[workerID] = 0
			case errors.Is(err, ErrNoWorkAvailable):
			default:
				counts[workerID]++
				if counts[workerID] > limit {
					return ErrWorkerShutdown
				}
			}
			return err
		}
	}
}

func (p *Pool[T]) chain() WorkFunc {
	fn := p.work
	for i := len(p.middleware) - 1; i >= 0; i-- {
		fn = p.middleware[i](fn)
	}
	return fn
}
