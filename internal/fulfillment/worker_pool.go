// Package fulfillment consumes OrderPlaced events and fulfills the orders on a bounded
// pool of workers.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/metrics"
	orderDomain "github.com/allisson/orderflow/internal/order/domain"
)

// ErrQueueClosed is returned by Enqueue once the pool has been closed.
var ErrQueueClosed = apperrors.New("worker pool queue is closed")

// Handler processes a single order.
type Handler func(ctx context.Context, order *orderDomain.Order) error

// WorkerPool drains a bounded queue with a fixed number of workers. Enqueue blocks
// while the queue is full; items are never dropped and the queue never grows.
type WorkerPool struct {
	workerCount int
	queue       chan *orderDomain.Order
	handler     Handler
	metrics     metrics.BusinessMetrics
	logger      *slog.Logger

	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
	closeOnce sync.Once

	group *errgroup.Group
}

// NewWorkerPool creates a pool with workerCount workers and a queue holding up to
// queueCapacity orders. Both must be at least 1.
func NewWorkerPool(
	workerCount, queueCapacity int,
	handler Handler,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) (*WorkerPool, error) {
	if workerCount < 1 {
		return nil, apperrors.Wrapf(apperrors.ErrConfiguration, "worker count must be at least 1, got %d", workerCount)
	}
	if queueCapacity < 1 {
		return nil, apperrors.Wrapf(apperrors.ErrConfiguration, "queue capacity must be at least 1, got %d", queueCapacity)
	}

	return &WorkerPool{
		workerCount: workerCount,
		queue:       make(chan *orderDomain.Order, queueCapacity),
		handler:     handler,
		metrics:     businessMetrics,
		logger:      logger,
		done:        make(chan struct{}),
	}, nil
}

// Start launches the workers. Handlers get a context detached from ctx's
// cancellation so that queued orders are drained after shutdown begins.
func (p *WorkerPool) Start(ctx context.Context) {
	handlerCtx := context.WithoutCancel(ctx)
	p.group = &errgroup.Group{}

	for i := range p.workerCount {
		workerID := i + 1
		p.group.Go(func() error {
			p.work(handlerCtx, workerID)
			return nil
		})
	}

	p.logger.Info("worker pool started",
		slog.Int("worker_count", p.workerCount),
		slog.Int("queue_capacity", cap(p.queue)),
	)
}

// Enqueue hands order to the workers, blocking while the queue is full. It returns
// ctx.Err() if ctx ends first and ErrQueueClosed after Close.
func (p *WorkerPool) Enqueue(ctx context.Context, order *orderDomain.Order) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrQueueClosed
	}
	select {
	case <-p.done:
		return ErrQueueClosed
	default:
	}

	select {
	case p.queue <- order:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrQueueClosed
	}
}

// Close stops accepting orders. Workers finish what is already queued. Calling Close
// more than once is safe.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		// Wake blocked Enqueue calls so they release the read lock.
		close(p.done)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.closed = true
		close(p.queue)
	})
}

// Wait blocks until every worker has exited.
func (p *WorkerPool) Wait() {
	if p.group == nil {
		return
	}
	_ = p.group.Wait()
	p.logger.Info("worker pool stopped")
}

// QueueLength returns the number of orders waiting for a worker.
func (p *WorkerPool) QueueLength() int {
	return len(p.queue)
}

func (p *WorkerPool) work(ctx context.Context, workerID int) {
	for order := range p.queue {
		p.handle(ctx, workerID, order)
	}
}

// handle runs the handler once. Errors and panics are logged; the order is not retried.
func (p *WorkerPool) handle(ctx context.Context, workerID int, order *orderDomain.Order) {
	start := time.Now()
	status := "success"

	defer func() {
		if r := recover(); r != nil {
			status = "error"
			p.logger.Error("order handler panicked",
				slog.Int("worker_id", workerID),
				slog.String("order_short_code", order.OrderShortCode),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
		}
		p.metrics.RecordOperation(ctx, "fulfillment", "order_fulfill", status)
		p.metrics.RecordDuration(ctx, "fulfillment", "order_fulfill", time.Since(start), status)
	}()

	if err := p.handler(ctx, order); err != nil {
		status = "error"
		p.logger.Error("failed to fulfill order",
			slog.Int("worker_id", workerID),
			slog.String("order_short_code", order.OrderShortCode),
			slog.Any("error", err),
		)
	}
}
