package storage

import (
	"context"

	"github.com/mageshboopath1/live-esg/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing disclosure documents.
type DocumentRepository interface {
	Repository
	// PutDocument inserts or updates a document.
	// Derives the key from (Company, ReportYear) when Key is zero.
	// Sets IngestedAt on first insert and refreshes UpdatedAt on every write.
	PutDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by key.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, key core.ID) (*core.Document, error)

	// GetDocumentByReport retrieves the document for a company's report year.
	// Returns ErrNotFound if no such document exists.
	GetDocumentByReport(ctx context.Context, company string, reportYear int) (*core.Document, error)

	// ListDocuments retrieves all documents, ordered by (Company, ReportYear).
	ListDocuments(ctx context.Context) ([]*core.Document, error)
}

// ChunkRepository provides operations for managing document chunks and the
// vectors the embedding stage writes onto them.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to storage.
	// Chunk identity is (DocumentKey, Index); re-adding overwrites.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunkVectors writes the embedding vectors carried on the given
	// chunks, stamping EmbeddedAt. Returns ErrNotFound if any chunk doesn't
	// exist.
	UpdateChunkVectors(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunks retrieves all chunks for a document, ordered by Index.
	GetChunks(ctx context.Context, documentKey core.ID) ([]*core.Chunk, error)

	// GetUnembeddedChunks retrieves the document's chunks that have no vector
	// yet, ordered by Index.
	GetUnembeddedChunks(ctx context.Context, documentKey core.ID) ([]*core.Chunk, error)

	// DeleteChunks removes all chunks for a document, including their
	// embedded-index entries. Re-ingestion calls this before writing the new
	// chunk set so stale chunks can't leak into readiness counts or
	// extraction text.
	DeleteChunks(ctx context.Context, documentKey core.ID) error
}

// ReadinessOracle answers whether a document's embedding work is durably
// complete. Check must reflect the store state at the time of the call,
// never a cached snapshot: a stale "ready" would admit extraction against an
// incomplete document.
type ReadinessOracle interface {
	Check(ctx context.Context, documentKey core.ID) (core.Readiness, error)
}

// IndicatorRepository provides operations for managing extracted indicators.
type IndicatorRepository interface {
	Repository
	// PutIndicators upserts indicators by (DocumentKey, Code). Re-extraction
	// supersedes earlier rows for the same identity, never merges into them.
	// Sets ExtractedAt if not already set.
	PutIndicators(ctx context.Context, indicators ...*core.ExtractedIndicator) ([]*core.ExtractedIndicator, error)

	// GetIndicators retrieves all indicators for a document, ordered by Code.
	GetIndicators(ctx context.Context, documentKey core.ID) ([]*core.ExtractedIndicator, error)

	// DeleteIndicators removes all indicators for a document.
	DeleteIndicators(ctx context.Context, documentKey core.ID) error
}

// ScoreRepository provides operations for managing composite scores.
type ScoreRepository interface {
	Repository
	// PutScore writes the score for (Company, ReportYear), overwriting any
	// previous run's score for the same key.
	PutScore(ctx context.Context, score *core.ESGScore) (*core.ESGScore, error)

	// GetScore retrieves the score for a document key.
	// Returns ErrNotFound if no score has been computed.
	GetScore(ctx context.Context, documentKey core.ID) (*core.ESGScore, error)

	// ListScores retrieves all scores, ordered by (Company, ReportYear).
	ListScores(ctx context.Context) ([]*core.ESGScore, error)
}
