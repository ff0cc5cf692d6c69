package genealogy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mlm/internal/domain/lifecycle"
	"mlm/internal/domain/service"

	"github.com/google/uuid"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 1024
)

type jobKind int

const (
	jobRebuild jobKind = iota + 1
	jobRemove
)

func (k jobKind) String() string {
	if k == jobRemove {
		return "remove"
	}

	return "rebuild"
}

// JobMetrics observes the worker pool.
type JobMetrics interface {
	ObserveGenealogyJob(result string)
	SetGenealogyQueueDepth(depth int)
}

type noopJobMetrics struct{}

func (noopJobMetrics) ObserveGenealogyJob(string) {}

func (noopJobMetrics) SetGenealogyQueueDepth(int) {}

// AsyncOptions configures the worker pool.
type AsyncOptions struct {
	Workers   int
	QueueSize int
	Logger    *slog.Logger
	Metrics   JobMetrics
}

// AsyncIndexer applies index changes on a bounded pool of workers.
//
// Jobs are keyed by user. While a job for a user is still queued, later
// requests for the same user are folded into it; the last kind wins. Every job
// recomputes from the sponsor links current at execution time, so folding
// never loses a change. A full queue or a stopped pool applies the job inline.
type AsyncIndexer struct {
	next    service.GenealogyIndexer
	workers int
	logger  *slog.Logger
	metrics JobMetrics

	queue chan uuid.UUID
	quit  chan struct{}
	wg    sync.WaitGroup

	mu      sync.Mutex
	pending map[uuid.UUID]jobKind
	started bool
	stopped bool
}

// NewAsyncIndexer wraps next, which performs the actual index writes.
func NewAsyncIndexer(next service.GenealogyIndexer, opts AsyncOptions) *AsyncIndexer {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = noopJobMetrics{}
	}

	return &AsyncIndexer{
		next:    next,
		workers: opts.Workers,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		queue:   make(chan uuid.UUID, opts.QueueSize),
		quit:    make(chan struct{}),
		pending: make(map[uuid.UUID]jobKind),
	}
}

// Start launches the workers. Calling it twice has no effect.
func (a *AsyncIndexer) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started || a.stopped {
		return
	}
	a.started = true

	for range a.workers {
		a.wg.Add(1)
		go a.run()
	}
}

// Stop lets the workers drain the queue and waits for them until ctx expires.
func (a *AsyncIndexer) Stop(ctx context.Context) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()

		return nil
	}
	a.stopped = true
	started := a.started
	a.mu.Unlock()

	close(a.quit)
	if !started {
		a.drain()

		return nil
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		a.logger.Warn("Genealogy worker stopped with jobs pending", slog.Int("pending", a.QueueLen()))

		return ctx.Err()
	}
}

func (a *AsyncIndexer) Rebuild(ctx context.Context, userID uuid.UUID) error {
	return a.enqueue(ctx, userID, jobRebuild)
}

func (a *AsyncIndexer) Remove(ctx context.Context, userID uuid.UUID) error {
	return a.enqueue(ctx, userID, jobRemove)
}

// QueueLen returns the number of users waiting for a job.
func (a *AsyncIndexer) QueueLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.pending)
}

func (a *AsyncIndexer) enqueue(ctx context.Context, userID uuid.UUID, kind jobKind) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()

		return a.apply(ctx, userID, kind)
	}
	if _, queued := a.pending[userID]; queued {
		a.pending[userID] = kind
		a.mu.Unlock()
		a.metrics.ObserveGenealogyJob("coalesced")

		return nil
	}

	select {
	case a.queue <- userID:
		a.pending[userID] = kind
		a.metrics.SetGenealogyQueueDepth(len(a.pending))
		a.mu.Unlock()

		return nil
	default:
		a.mu.Unlock()
		a.logger.WarnContext(ctx, "Genealogy queue full, applying inline",
			slog.String("user_id", userID.String()),
			slog.String("kind", kind.String()),
		)

		return a.apply(ctx, userID, kind)
	}
}

func (a *AsyncIndexer) run() {
	defer a.wg.Done()

	for {
		select {
		case userID := <-a.queue:
			a.process(userID)
		case <-a.quit:
			a.drain()

			return
		}
	}
}

func (a *AsyncIndexer) drain() {
	for {
		select {
		case userID := <-a.queue:
			a.process(userID)
		default:
			return
		}
	}
}

func (a *AsyncIndexer) process(userID uuid.UUID) {
	a.mu.Lock()
	kind, ok := a.pending[userID]
	delete(a.pending, userID)
	a.metrics.SetGenealogyQueueDepth(len(a.pending))
	a.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	start := time.Now()
	if err := a.apply(ctx, userID, kind); err != nil {
		a.logger.Error("Genealogy job failed",
			slog.String("user_id", userID.String()),
			slog.String("kind", kind.String()),
			slog.Any("error", err),
		)

		return
	}

	a.logger.Debug("Genealogy job applied",
		slog.String("user_id", userID.String()),
		slog.String("kind", kind.String()),
		slog.Duration("took", time.Since(start)),
	)
}

func (a *AsyncIndexer) apply(ctx context.Context, userID uuid.UUID, kind jobKind) error {
	var err error
	if kind == jobRemove {
		err = a.next.Remove(ctx, userID)
	} else {
		err = a.next.Rebuild(ctx, userID)
	}

	if err != nil {
		a.metrics.ObserveGenealogyJob("failed")

		return err
	}
	a.metrics.ObserveGenealogyJob("ok")

	return nil
}
