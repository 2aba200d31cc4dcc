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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/queue"
	"github.com/mageshboopath1/live-esg/storage"
)

// Ingestor runs the intake workflow for disclosure reports: fetch, extract
// page text, chunk, persist, and queue the embedding work.
type Ingestor struct {
	documents storage.DocumentRepository
	chunks    storage.ChunkRepository
	queue     queue.Queue
	fetcher   Fetcher
	chunker   *Chunker
	logger    *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor) error

// WithFetcher sets a custom source fetcher.
// Default dispatches between HTTP and filesystem by scheme.
func WithFetcher(fetcher Fetcher) Option {
	return func(ing *Ingestor) error {
		if fetcher == nil {
			fetcher = NewFetcher()
		}
		ing.fetcher = fetcher
		return nil
	}
}

// WithChunking sets the chunk size and overlap used when splitting pages.
func WithChunking(chunkSize, chunkOverlap int) Option {
	return func(ing *Ingestor) error {
		ing.chunker = NewChunker(chunkSize, chunkOverlap)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ing *Ingestor) error {
		if logger == nil {
			logger = slog.Default()
		}
		ing.logger = logger
		return nil
	}
}

// NewIngestor creates a new report ingestor.
func NewIngestor(
	documents storage.DocumentRepository,
	chunks storage.ChunkRepository,
	q queue.Queue,
	opts ...Option,
) (*Ingestor, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if q == nil {
		return nil, ErrQueueRequired
	}

	ing := &Ingestor{
		documents: documents,
		chunks:    chunks,
		queue:     q,
		fetcher:   NewFetcher(),
		chunker:   NewChunker(DefaultChunkSize, DefaultChunkOverlap),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(ing); err != nil {
			return nil, err
		}
	}

	return ing, nil
}

// Ingest fetches one report, persists its document and chunks, and enqueues
// its embed and extract tasks. The document's ChunkCount records the expected
// chunk total the readiness gate will later compare against. Re-ingesting the
// same (company, year) replaces the previous chunk set entirely.
func (ing *Ingestor) Ingest(ctx context.Context, source, company string, reportYear int) (*core.Document, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}
	if strings.TrimSpace(company) == "" {
		return nil, core.ErrEmptyCompany
	}
	if err := core.ValidateReportYear(reportYear); err != nil {
		return nil, err
	}

	data, err := ing.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	pages := ExtractPages(data)
	if len(pages) == 0 {
		return nil, fmt.Errorf("ingest %s: %w", source, ErrNoText)
	}

	documentKey := core.DocumentKeyFor(company, reportYear)
	chunks, err := ing.chunker.ChunkPages(documentKey, pages)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", source, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("ingest %s: %w", source, ErrNoText)
	}

	// Drop any previous chunk set before recording the new expected count, so
	// a stale fully-embedded set can't satisfy the readiness check while the
	// replacement is still being written.
	if err := ing.chunks.DeleteChunks(ctx, documentKey); err != nil {
		return nil, err
	}

	doc := &core.Document{
		Key:        documentKey,
		Company:    company,
		ReportYear: reportYear,
		SourceURL:  source,
		Title:      deriveTitle(source, company, reportYear),
		Pages:      pages[len(pages)-1].Number,
		ChunkCount: len(chunks),
	}
	doc, err = ing.documents.PutDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	if _, err := ing.chunks.AddChunks(ctx, chunks...); err != nil {
		return nil, err
	}

	// Both stage tasks go in up front. The extraction task is safe to enqueue
	// before any vector exists: the admission gate defers it until the
	// document's embeddings are complete.
	payload := queue.Payload{Company: company, ReportYear: reportYear}
	err = ing.queue.Enqueue(ctx, &queue.Task{
		Kind:        queue.KindEmbed,
		DocumentKey: documentKey,
		Payload:     payload,
	})
	if err != nil {
		return nil, err
	}
	err = ing.queue.Enqueue(ctx, &queue.Task{
		Kind:        queue.KindExtract,
		DocumentKey: documentKey,
		Payload:     payload,
	})
	if err != nil {
		return nil, err
	}

	ing.logger.Info("report ingested",
		"company", company,
		"year", reportYear,
		"pages", len(pages),
		"chunks", len(chunks))

	return doc, nil
}

// deriveTitle builds a readable title from the source reference, falling back
// to the report identity when the source gives nothing usable.
func deriveTitle(source, company string, reportYear int) string {
	base := path.Base(source)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == "/" {
		return fmt.Sprintf("%s %d disclosure", company, reportYear)
	}
	return base
}
