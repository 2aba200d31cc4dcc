package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mageshboopath1/live-esg/ai"
	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/queue"
	"github.com/mageshboopath1/live-esg/storage"
)

// Defaults for the embedding executor.
const (
	DefaultEmbedBatchSize   = 16
	DefaultEmbedParallelism = 4
	DefaultEmbedMaxFailures = 3
	DefaultEmbedRetryDelay  = 5 * time.Second

	defaultEmbedAPIAttempts  = 3
	defaultEmbedAPIBaseDelay = 500 * time.Millisecond
)

// EmbedHandler embeds a document's pending chunks. Only chunks without a
// vector are loaded, and each batch is written as it completes, so a retried
// task picks up where the failed run stopped instead of re-embedding the
// whole document.
type EmbedHandler struct {
	chunks   storage.ChunkRepository
	queue    queue.Queue
	embedder ai.Embedder

	batchSize    int
	parallelism  int
	maxFailures  int
	failureDelay time.Duration
	apiAttempts  int
	apiBaseDelay time.Duration
	logger       *slog.Logger
}

var _ Handler = (*EmbedHandler)(nil)

// EmbedOption configures an EmbedHandler.
type EmbedOption func(*EmbedHandler) error

// WithEmbedBatchSize sets how many chunks go into one embedding request.
// Default is DefaultEmbedBatchSize.
func WithEmbedBatchSize(size int) EmbedOption {
	return func(h *EmbedHandler) error {
		if size > 0 {
			h.batchSize = size
		}
		return nil
	}
}

// WithEmbedParallelism bounds how many batches embed concurrently.
// Default is DefaultEmbedParallelism.
func WithEmbedParallelism(n int) EmbedOption {
	return func(h *EmbedHandler) error {
		if n > 0 {
			h.parallelism = n
		}
		return nil
	}
}

// WithEmbedFailureBudget sets how many executor failures a task may
// accumulate before it is dead-lettered, and the nack delay between them.
// A negative delay keeps the default.
func WithEmbedFailureBudget(maxFailures int, delay time.Duration) EmbedOption {
	return func(h *EmbedHandler) error {
		if maxFailures > 0 {
			h.maxFailures = maxFailures
		}
		if delay >= 0 {
			h.failureDelay = delay
		}
		return nil
	}
}

// WithEmbedRetry sets the in-process retry budget for embedding API calls.
func WithEmbedRetry(attempts int, baseDelay time.Duration) EmbedOption {
	return func(h *EmbedHandler) error {
		if attempts > 0 {
			h.apiAttempts = attempts
		}
		if baseDelay > 0 {
			h.apiBaseDelay = baseDelay
		}
		return nil
	}
}

// WithEmbedLogger sets a custom logger.
// Default is slog.Default().
func WithEmbedLogger(logger *slog.Logger) EmbedOption {
	return func(h *EmbedHandler) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

// NewEmbedHandler creates the embed-stage handler.
func NewEmbedHandler(chunks storage.ChunkRepository, q queue.Queue, embedder ai.Embedder, opts ...EmbedOption) (*EmbedHandler, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if q == nil {
		return nil, ErrQueueRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	h := &EmbedHandler{
		chunks:       chunks,
		queue:        q,
		embedder:     embedder,
		batchSize:    DefaultEmbedBatchSize,
		parallelism:  DefaultEmbedParallelism,
		maxFailures:  DefaultEmbedMaxFailures,
		failureDelay: DefaultEmbedRetryDelay,
		apiAttempts:  defaultEmbedAPIAttempts,
		apiBaseDelay: defaultEmbedAPIBaseDelay,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	h.logger = h.logger.With("worker", queue.KindEmbed.String())

	return h, nil
}

// Kind reports the stage this handler consumes.
func (h *EmbedHandler) Kind() queue.Kind { return queue.KindEmbed }

// Handle embeds the document's pending chunks and settles the delivery.
func (h *EmbedHandler) Handle(ctx context.Context, d *queue.Delivery) error {
	embedded, err := h.embedDocument(ctx, d.Task.DocumentKey)
	if err != nil {
		return h.fail(ctx, d, err)
	}

	if err := settleAck(ctx, h.queue, d, h.logger); err != nil {
		return err
	}
	h.logger.Info("document embedded",
		"document_key", d.Task.DocumentKey,
		"company", d.Task.Payload.Company,
		"report_year", d.Task.Payload.ReportYear,
		"chunks", embedded)
	return nil
}

// embedDocument embeds every chunk of the document that has no vector yet,
// in bounded parallel batches.
func (h *EmbedHandler) embedDocument(ctx context.Context, key core.ID) (int, error) {
	pending, err := h.chunks.GetUnembeddedChunks(ctx, key)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		h.logger.Debug("no pending chunks", "document_key", key)
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.parallelism)
	for start := 0; start < len(pending); start += h.batchSize {
		batch := pending[start:min(start+h.batchSize, len(pending))]
		g.Go(func() error {
			return h.embedBatch(gctx, batch)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(pending), nil
}

func (h *EmbedHandler) embedBatch(ctx context.Context, batch []*core.Chunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	var vectors [][]float32
	err := retryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = h.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, h.apiAttempts, h.apiBaseDelay, h.logger)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
	}

	for i := range batch {
		batch[i].Vector = vectors[i]
	}
	return h.chunks.UpdateChunkVectors(ctx, batch...)
}

// fail settles a failed delivery: nack within the failure budget, dead-letter
// once it is spent. Embed tasks have no admission gate, so the budget is
// enforced here.
func (h *EmbedHandler) fail(ctx context.Context, d *queue.Delivery, cause error) error {
	failures := d.Task.Failures + 1
	if failures >= h.maxFailures {
		reason := fmt.Sprintf("embedding failed %d times, last: %v", failures, cause)
		if dlErr := h.queue.DeadLetter(ctx, d, reason, core.Readiness{}); dlErr != nil && !errors.Is(dlErr, queue.ErrStaleReceipt) {
			h.logger.Error("dead-letter failed", "document_key", d.Task.DocumentKey, "error", dlErr)
		}
		h.logger.Error("embed task dead-lettered",
			"document_key", d.Task.DocumentKey,
			"failures", failures,
			"error", cause)
		return fmt.Errorf("%w: %w", ErrEmbeddingFailed, cause)
	}

	if nackErr := h.queue.Nack(ctx, d, h.failureDelay, queue.CauseExecutorFailure); nackErr != nil && !errors.Is(nackErr, queue.ErrStaleReceipt) {
		h.logger.Error("nack failed", "document_key", d.Task.DocumentKey, "error", nackErr)
	}
	return fmt.Errorf("%w: %w", ErrEmbeddingFailed, cause)
}
