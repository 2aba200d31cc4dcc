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
	"slices"
	"strings"
	"time"

	"github.com/mageshboopath1/live-esg/ai"
	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/gate"
	"github.com/mageshboopath1/live-esg/queue"
	"github.com/mageshboopath1/live-esg/scoring"
	"github.com/mageshboopath1/live-esg/storage"
)

const (
	// DefaultExtractFailureDelay is the nack delay after an executor failure.
	DefaultExtractFailureDelay = 10 * time.Second

	// DefaultExtractTextLimit caps the assembled document text handed to the
	// extractor, in bytes. Truncation happens at a chunk boundary.
	DefaultExtractTextLimit = 120_000
)

// ExtractHandler runs indicator extraction for documents whose embeddings
// are complete. Every delivery passes through the admission gate first;
// deferred and dead-lettered verdicts are settled on the queue without
// touching the executor.
type ExtractHandler struct {
	chunks     storage.ChunkRepository
	indicators storage.IndicatorRepository
	queue      queue.Queue
	gate       *gate.Gate
	extractor  ai.IndicatorExtractor
	catalog    *scoring.Catalog

	failureDelay time.Duration
	textLimit    int
	logger       *slog.Logger
}

var _ Handler = (*ExtractHandler)(nil)

// ExtractOption configures an ExtractHandler.
type ExtractOption func(*ExtractHandler) error

// WithExtractFailureDelay sets the nack delay after an executor failure.
// A negative delay keeps the default.
func WithExtractFailureDelay(d time.Duration) ExtractOption {
	return func(h *ExtractHandler) error {
		if d >= 0 {
			h.failureDelay = d
		}
		return nil
	}
}

// WithExtractTextLimit caps the assembled document text, in bytes.
// Zero or negative disables the cap.
func WithExtractTextLimit(limit int) ExtractOption {
	return func(h *ExtractHandler) error {
		h.textLimit = limit
		return nil
	}
}

// WithExtractLogger sets a custom logger.
// Default is slog.Default().
func WithExtractLogger(logger *slog.Logger) ExtractOption {
	return func(h *ExtractHandler) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

// NewExtractHandler creates the extract-stage handler.
func NewExtractHandler(
	chunks storage.ChunkRepository,
	indicators storage.IndicatorRepository,
	q queue.Queue,
	g *gate.Gate,
	extractor ai.IndicatorExtractor,
	catalog *scoring.Catalog,
	opts ...ExtractOption,
) (*ExtractHandler, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if indicators == nil {
		return nil, ErrIndicatorRepositoryRequired
	}
	if q == nil {
		return nil, ErrQueueRequired
	}
	if g == nil {
		return nil, ErrGateRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if catalog == nil {
		return nil, ErrCatalogRequired
	}

	h := &ExtractHandler{
		chunks:       chunks,
		indicators:   indicators,
		queue:        q,
		gate:         g,
		extractor:    extractor,
		catalog:      catalog,
		failureDelay: DefaultExtractFailureDelay,
		textLimit:    DefaultExtractTextLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	h.logger = h.logger.With("worker", queue.KindExtract.String())

	return h, nil
}

// Kind reports the stage this handler consumes.
func (h *ExtractHandler) Kind() queue.Kind { return queue.KindExtract }

// Handle runs one delivery through the admission gate and, if admitted,
// the extraction executor. Executor failures are nacked against the failure
// budget the gate enforces on the next delivery.
func (h *ExtractHandler) Handle(ctx context.Context, d *queue.Delivery) error {
	decision, err := h.gate.Decide(ctx, d.Task)
	if err != nil {
		return err
	}

	switch decision.Outcome {
	case gate.OutcomeDefer:
		if nackErr := h.queue.Nack(ctx, d, decision.Delay, queue.CauseReadinessDeferral); nackErr != nil && !errors.Is(nackErr, queue.ErrStaleReceipt) {
			return nackErr
		}
		return nil

	case gate.OutcomeDeadLetter:
		if dlErr := h.queue.DeadLetter(ctx, d, decision.Reason, decision.Readiness); dlErr != nil && !errors.Is(dlErr, queue.ErrStaleReceipt) {
			return dlErr
		}
		h.logger.Warn("extract task dead-lettered",
			"document_key", d.Task.DocumentKey,
			"reason", decision.Reason)
		return nil
	}

	count, err := h.extract(ctx, d.Task)
	if err != nil {
		if nackErr := h.queue.Nack(ctx, d, h.failureDelay, queue.CauseExecutorFailure); nackErr != nil && !errors.Is(nackErr, queue.ErrStaleReceipt) {
			h.logger.Error("nack failed", "document_key", d.Task.DocumentKey, "error", nackErr)
		}
		return fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	if err := settleAck(ctx, h.queue, d, h.logger); err != nil {
		return err
	}
	h.logger.Info("indicators extracted",
		"document_key", d.Task.DocumentKey,
		"company", d.Task.Payload.Company,
		"report_year", d.Task.Payload.ReportYear,
		"indicators", count)
	return nil
}

// extract assembles the document text, runs the extractor, and upserts the
// surviving indicators. Rows are keyed (DocumentKey, Code), so replays and
// re-extractions supersede earlier rows instead of duplicating them.
func (h *ExtractHandler) extract(ctx context.Context, task *queue.Task) (int, error) {
	chunks, err := h.chunks.GetChunks(ctx, task.DocumentKey)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %d has no chunks", task.DocumentKey)
	}

	text, truncated := assembleText(chunks, h.textLimit)
	if truncated {
		h.logger.Warn("document text truncated for extraction",
			"document_key", task.DocumentKey,
			"limit", h.textLimit)
	}

	raws, err := h.extractor.ExtractIndicators(ctx, text)
	if err != nil {
		return 0, err
	}

	rows := make([]*core.ExtractedIndicator, 0, len(raws))
	for _, raw := range raws {
		if _, ok := h.catalog.Lookup(raw.Code); !ok {
			h.logger.Warn("dropping indicator outside the catalog",
				"document_key", task.DocumentKey,
				"code", raw.Code)
			continue
		}
		rows = append(rows, &core.ExtractedIndicator{
			DocumentKey:  task.DocumentKey,
			Code:         raw.Code,
			RawValue:     raw.Value,
			NumericValue: raw.Numeric,
			HasNumeric:   raw.HasNumeric,
			Confidence:   raw.Confidence,
			SourcePages:  raw.Pages,
			SourceChunks: chunksForPages(chunks, raw.Pages, raw.Chunks),
		})
	}

	if len(rows) == 0 {
		h.logger.Info("no catalog indicators disclosed", "document_key", task.DocumentKey)
		return 0, nil
	}

	if _, err := h.indicators.PutIndicators(ctx, rows...); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// assembleText rebuilds the document text from its chunks in index order,
// inserting a [page N] marker wherever the page advances. The markers are
// the extractor's citation anchors. A positive limit truncates at a chunk
// boundary once the assembled text would exceed it; the first chunk is
// always included.
func assembleText(chunks []*core.Chunk, limit int) (string, bool) {
	var b strings.Builder
	page := 0
	truncated := false
	for _, chunk := range chunks {
		if limit > 0 && b.Len() > 0 && b.Len()+len(chunk.Text) > limit {
			truncated = true
			break
		}
		if chunk.Page != page {
			page = chunk.Page
			fmt.Fprintf(&b, "[page %d]\n", page)
		}
		b.WriteString(chunk.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), truncated
}

// chunksForPages resolves an indicator's citations to chunk indexes, which
// is how provenance identifies chunks within a document. Explicit chunk
// citations from the extractor pass through; otherwise the cited pages map
// to every chunk starting on them.
func chunksForPages(chunks []*core.Chunk, pages []int, explicit []uint64) []core.ID {
	if len(explicit) > 0 {
		ids := make([]core.ID, len(explicit))
		for i, idx := range explicit {
			ids[i] = core.ID(idx)
		}
		slices.Sort(ids)
		return slices.Compact(ids)
	}

	var ids []core.ID
	for _, chunk := range chunks {
		if slices.Contains(pages, chunk.Page) {
			ids = append(ids, core.ID(chunk.Index))
		}
	}
	return ids
}
