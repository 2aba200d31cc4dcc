// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/mageshboopath1/live-esg/queue"
)

// DefaultPollInterval is how long a worker sleeps after an empty poll.
const DefaultPollInterval = 250 * time.Millisecond

// Handler processes deliveries of one task kind. Implementations settle
// every delivery they receive: ack on success, nack or dead-letter on
// failure. A delivery deliberately left unsettled stays leased until the
// lease expires and the queue redelivers it.
type Handler interface {
	// Kind reports which stage's tasks this handler consumes.
	Kind() queue.Kind

	// Handle processes one delivery. The returned error is informational;
	// by the time Handle returns, the delivery's fate on the queue has
	// been decided.
	Handle(ctx context.Context, d *queue.Delivery) error
}

// Worker polls one task kind off the queue and runs deliveries on a bounded
// goroutine pool.
type Worker struct {
	queue        queue.Queue
	handler      Handler
	pool         *ants.Pool
	pollInterval time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	inflight sync.WaitGroup
}

// Option configures a Worker.
type Option func(*Worker) error

// WithPoolSize sets the handler pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(w *Worker) error {
		if size < 1 {
			size = 1
		}
		if w.pool != nil {
			w.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		w.pool = pool
		return nil
	}
}

// WithPollInterval sets the sleep between empty polls.
// Default is DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) error {
		if d > 0 {
			w.pollInterval = d
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// New creates a Worker that feeds the handler's task kind to the handler.
func New(q queue.Queue, handler Handler, opts ...Option) (*Worker, error) {
	if q == nil {
		return nil, ErrQueueRequired
	}
	if handler == nil {
		return nil, ErrHandlerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		queue:        q,
		handler:      handler,
		pool:         pool,
		pollInterval: DefaultPollInterval,
		logger:       slog.Default(),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		if optErr := opt(w); optErr != nil {
			w.pool.Release()
			return nil, optErr
		}
	}
	w.logger = w.logger.With("worker", handler.Kind().String())

	return w, nil
}

// Start launches the poll loop. A worker can be started once.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return fmt.Errorf("worker for %s tasks already started", w.handler.Kind())
	}
	w.started = true

	go w.run()
	w.logger.Info("worker started")
	return nil
}

// run polls until Stop. Deliveries go to the pool, which blocks submission
// when full so consumption never outruns the handlers.
func (w *Worker) run() {
	defer close(w.done)
	ctx := context.Background()

	for {
		select {
		case <-w.stop:
			return
		default:
		}

		d, err := w.queue.Consume(ctx, w.handler.Kind())
		if err != nil {
			if !errors.Is(err, queue.ErrNoTask) {
				w.logger.Error("consume failed", "error", err)
			}
			w.idle()
			continue
		}

		w.inflight.Add(1)
		submitErr := w.pool.Submit(func() {
			defer w.inflight.Done()
			if handleErr := w.handler.Handle(ctx, d); handleErr != nil {
				w.logger.Error("task failed",
					"document_key", d.Task.DocumentKey,
					"company", d.Task.Payload.Company,
					"report_year", d.Task.Payload.ReportYear,
					"error", handleErr)
			}
		})
		if submitErr != nil {
			// Pool released mid-shutdown. The lease expires and the task
			// comes back for the next worker.
			w.inflight.Done()
			w.logger.Debug("submit rejected, leaving task to lease expiry", "error", submitErr)
			w.idle()
		}
	}
}

// idle sleeps one poll interval, or less if Stop arrives.
func (w *Worker) idle() {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()
	select {
	case <-w.stop:
	case <-timer.C:
	}
}

// Stop halts polling, waits for in-flight handlers to settle their
// deliveries, and releases the pool. Safe to call more than once.
func (w *Worker) Stop() {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	w.stopOnce.Do(func() { close(w.stop) })
	if started {
		<-w.done
	}
	w.inflight.Wait()
	w.pool.Release()
	w.logger.Info("worker stopped")
}

// settleAck acknowledges a delivery, tolerating a lease that expired while
// the handler ran. The redelivery finds the work already done and the
// idempotent upserts make the replay harmless.
func settleAck(ctx context.Context, q queue.Queue, d *queue.Delivery, logger *slog.Logger) error {
	err := q.Ack(ctx, d)
	if errors.Is(err, queue.ErrStaleReceipt) {
		logger.Warn("lease expired before ack, task will be redelivered",
			"document_key", d.Task.DocumentKey)
		return nil
	}
	return err
}
