// Package worker implements a bounded worker pool for concurrent certification
// and verification jobs. Callers block until their own job completes.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mtiwari1/filecert/internal/certify"
	"github.com/mtiwari1/filecert/internal/metrics"
)

// ErrPoolClosed is returned by Do after Shutdown.
var ErrPoolClosed = errors.New("worker: pool closed")

// Kind selects the operation a job performs.
type Kind string

const (
	KindCertify Kind = "certify"
	KindVerify  Kind = "verify"
)

// Processor performs the actual work. *service.Service satisfies it.
type Processor interface {
	Certify(ctx context.Context, content io.Reader, filename, owner string) (certify.Record, error)
	Verify(ctx context.Context, content io.Reader, reference string) (certify.Verification, error)
}

// Job represents one certify or verify request.
// Contains a context.Context for cancellation and deadline propagation.
type Job struct {
	Ctx       context.Context
	ID        string
	Kind      Kind
	Source    io.Reader
	Filename  string // certify only
	Owner     string // certify only
	Reference string // verify only

	reply chan Result
}

// Result holds the outcome of processing a single job.
type Result struct {
	JobID        string
	Record       certify.Record
	Verification certify.Verification
	Latency      time.Duration
	Err          error
}

// Pool manages a fixed set of worker goroutines that process Jobs from a channel.
type Pool struct {
	workers int
	proc    Processor
	jobs    chan Job
	wg      sync.WaitGroup
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool with the given number of workers.
// Call Start() to launch the goroutines.
func NewPool(workers int, proc Processor, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		proc:    proc,
		jobs:    make(chan Job, workers*2), // small buffer for backpressure
		logger:  logger,
	}
}

// Start launches worker goroutines. Each reads from the jobs channel until it
// is closed.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Do enqueues job and waits for its result. It blocks while the queue is full
// and returns ctx.Err() if ctx ends first.
func (p *Pool) Do(ctx context.Context, job Job) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if job.Ctx == nil {
		job.Ctx = ctx
	}
	job.reply = make(chan Result, 1)

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return Result{}, ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return Result{}, fmt.Errorf("worker: enqueue %s: %w", job.Kind, ctx.Err())
	}

	select {
	case res := <-job.reply:
		return res, res.Err
	case <-ctx.Done():
		return Result{}, fmt.Errorf("worker: wait %s: %w", job.Kind, ctx.Err())
	}
}

// Shutdown stops accepting jobs, lets workers drain the queue and waits for
// them to exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		job.reply <- p.process(id, job)
	}
	p.logger.Info("worker exiting", slog.Int("worker_id", id))
}

// process handles a single job: logs start/end and runs the processor.
func (p *Pool) process(workerID int, job Job) Result {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	if err := ctx.Err(); err != nil {
		return Result{JobID: job.ID, Err: fmt.Errorf("job cancelled before processing: %w", err)}
	}

	start := time.Now()
	logger := p.logger.With(
		slog.Int("worker_id", workerID),
		slog.String("job_id", job.ID),
		slog.String("kind", string(job.Kind)),
	)
	logger.Debug("processing started")

	res := Result{JobID: job.ID}
	switch job.Kind {
	case KindCertify:
		res.Record, res.Err = p.proc.Certify(ctx, job.Source, job.Filename, job.Owner)
	case KindVerify:
		res.Verification, res.Err = p.proc.Verify(ctx, job.Source, job.Reference)
	default:
		res.Err = fmt.Errorf("worker: unknown job kind %q", job.Kind)
	}

	res.Latency = time.Since(start)
	metrics.JobLatency.WithLabelValues(string(job.Kind)).Observe(res.Latency.Seconds())

	if res.Err != nil {
		logger.Warn("processing failed",
			slog.Duration("latency", res.Latency),
			slog.String("error", res.Err.Error()),
		)
		return res
	}

	logger.Debug("processing completed", slog.Duration("latency", res.Latency))
	return res
}
