// Package workers runs background jobs on a fixed set of polling
// goroutines.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jrazmi/yata/sdk/environment"
)

var (
	ErrWorkerShutdown  = errors.New("worker should shutdown")
	ErrNoWorkAvailable = errors.New("no work available")
	ErrPoolRunning     = errors.New("pool already running")
)

// Options represents the exportable worker configuration
type Options struct {
	Name         string        `env:"WORKER_NAME" default:"worker"`
	WorkerCount  int           `env:"WORKER_COUNT" default:"1"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" default:"1s"`
	IdleInterval time.Duration `env:"WORKER_IDLE_INTERVAL" default:"1m"`
	MaxRetries   int           `env:"WORKER_MAX_RETRIES" default:"3"`
	RetryDelay   time.Duration `env:"WORKER_RETRY_DELAY" default:"1s"`
}

type options struct {
	log        *slog.Logger
	metrics    Metrics
	middleware []Middleware
}

// Option is a function that configures the pool
type Option func(*options)

// WithLogger sets the pool logger
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithMiddleware wraps every work cycle. The first middleware is outermost.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, mw...)
	}
}

// Pool polls a Processor from WorkerCount goroutines. A worker polls every
// PollInterval while it finds work and backs off to IdleInterval when the
// processor reports ErrNoWorkAvailable.
type Pool[T Job] struct {
	processor Processor[T]
	cfg       Options
	log       *slog.Logger
	metrics   Metrics

	middleware []Middleware
	workFunc   WorkFunc
	preHooks   []PreProcessHook[T]
	postHooks  []PostProcessHook[T]

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// NewFromEnv creates a pool configured from the environment under prefix.
func NewFromEnv[T Job](prefix string, processor Processor[T], opts ...Option) (*Pool[T], error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing worker config: %w", err)
	}
	return New(processor, cfg, opts...), nil
}

func New[T Job](processor Processor[T], cfg Options, opts ...Option) *Pool[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = noopMetrics{}
	}

	if cfg.Name == "" {
		cfg.Name = "worker"
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = time.Minute
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	p := &Pool[T]{
		processor:  processor,
		cfg:        cfg,
		log:        o.log,
		metrics:    o.metrics,
		middleware: o.middleware,
	}
	p.workFunc = p.chain()
	return p
}

// AddPreProcessHooks registers hooks run between Checkout and Process.
func (p *Pool[T]) AddPreProcessHooks(hooks ...PreProcessHook[T]) {
	p.preHooks = append(p.preHooks, hooks...)
}

// AddPostProcessHooks registers hooks run between Process and Complete/Fail.
func (p *Pool[T]) AddPostProcessHooks(hooks ...PostProcessHook[T]) {
	p.postHooks = append(p.postHooks, hooks...)
}

// Start runs the workers and blocks until ctx is done, Stop is called, or
// every worker has shut itself down.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrPoolRunning
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.cancel()
		p.running = false
		p.mu.Unlock()
	}()

	started := time.Now()
	p.log.InfoContext(ctx, "starting worker pool",
		"name", p.cfg.Name,
		"worker_count", p.cfg.WorkerCount,
		"poll_interval", p.cfg.PollInterval,
		"idle_interval", p.cfg.IdleInterval)

	var wg sync.WaitGroup
	for i := range p.cfg.WorkerCount {
		wg.Add(1)
		go func(workerID string) {
			defer wg.Done()
			p.worker(ctx, workerID)
		}(fmt.Sprintf("%s-%d", p.cfg.Name, i+1))
	}
	wg.Wait()

	p.log.InfoContext(context.WithoutCancel(ctx), "worker pool stopped", "name", p.cfg.Name, "runtime", time.Since(started))
	return nil
}

// Stop cancels a running pool. It does not wait for Start to return.
func (p *Pool[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.cancel()
	}
}

func (p *Pool[T]) Metrics() Snapshot {
	return p.metrics.Snapshot()
}

func (p *Pool[T]) worker(ctx context.Context, workerID string) {
	p.metrics.WorkerStarted()
	defer p.metrics.WorkerStopped()

	interval := p.cfg.PollInterval
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		err := p.safeWork(ctx, workerID)
		switch {
		case err == nil:
			interval = p.cfg.PollInterval
		case errors.Is(err, ErrWorkerShutdown):
			p.log.WarnContext(ctx, "worker shutting down", "worker_id", workerID)
			return
		case errors.Is(err, ErrNoWorkAvailable):
			interval = p.cfg.IdleInterval
		default:
			interval = p.cfg.PollInterval
			if ctx.Err() == nil {
				p.log.ErrorContext(ctx, "work cycle failed", "worker_id", workerID, "error", err)
			}
		}
		timer.Reset(interval)
	}
}

// safeWork turns a panic anywhere in the cycle, middleware included, into
// an error so the worker survives.
func (p *Pool[T]) safeWork(ctx context.Context, workerID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.Panic()
			p.log.ErrorContext(ctx, "panic in worker",
				"worker_id", workerID,
				"panic", r,
				"stack_trace", string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	return p.workFunc(ctx, workerID)
}

func (p *Pool[T]) work(ctx context.Context, workerID string) error {
	job, err := p.processor.Checkout(ctx, workerID)
	if err != nil {
		p.metrics.CheckoutFailed()
		if errors.Is(err, ErrNoWorkAvailable) {
			return err
		}
		return fmt.Errorf("checkout: %w", err)
	}
	p.metrics.CheckedOut()

	for _, hook := range p.preHooks {
		if err := hook(ctx, job); err != nil {
			p.log.ErrorContext(ctx, "pre-process hook failed", "job_id", job.GetID(), "error", err)
		}
	}

	start := time.Now()
	result, err := p.process(ctx, job)
	elapsed := time.Since(start)

	if err != nil {
		result = job
	}
	for _, hook := range p.postHooks {
		if hookErr := hook(ctx, result, err); hookErr != nil {
			p.log.ErrorContext(ctx, "post-process hook failed", "job_id", job.GetID(), "error", hookErr)
		}
	}

	// Settle even when ctx was cancelled mid-job.
	settleCtx := context.WithoutCancel(ctx)
	if err != nil {
		p.metrics.Failed(elapsed)
		if failErr := p.processor.Fail(settleCtx, job, err); failErr != nil {
			p.log.ErrorContext(ctx, "marking job failed", "job_id", job.GetID(), "error", failErr)
		}
		return fmt.Errorf("job %s: %w", job.GetID(), err)
	}

	p.metrics.Completed(elapsed)
	if completeErr := p.processor.Complete(settleCtx, result, elapsed); completeErr != nil {
		p.log.ErrorContext(ctx, "marking job complete", "job_id", job.GetID(), "error", completeErr)
	}
	return nil
}

// process calls Process up to MaxRetries times with doubling backoff.
// A panic inside Process fails the job rather than the worker.
func (p *Pool[T]) process(ctx context.Context, job T) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.Panic()
			p.log.ErrorContext(ctx, "panic in job",
				"job_id", job.GetID(),
				"panic", r,
				"stack_trace", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	delay := p.cfg.RetryDelay
	for attempt := 1; ; attempt++ {
		result, err = p.processor.Process(ctx, job)
		if err == nil || attempt >= p.cfg.MaxRetries || ctx.Err() != nil {
			break
		}

		p.metrics.Retried()
		p.log.WarnContext(ctx, "retrying job", "job_id", job.GetID(), "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	if err != nil && p.cfg.MaxRetries > 1 {
		err = fmt.Errorf("after %d attempts: %w", p.cfg.MaxRetries, err)
	}
	return result, err
}
