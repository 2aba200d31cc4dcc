package worker

import "errors"

var (
	// ErrQueueRequired is returned when a task queue is not provided.
	ErrQueueRequired = errors.New("task queue required")

	// ErrHandlerRequired is returned when a task handler is not provided.
	ErrHandlerRequired = errors.New("task handler required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrIndicatorRepositoryRequired is returned when an indicator repository is not provided.
	ErrIndicatorRepositoryRequired = errors.New("indicator repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrExtractorRequired is returned when an indicator extractor is not provided.
	ErrExtractorRequired = errors.New("indicator extractor required")

	// ErrGateRequired is returned when an admission gate is not provided.
	ErrGateRequired = errors.New("admission gate required")

	// ErrCatalogRequired is returned when an indicator catalog is not provided.
	ErrCatalogRequired = errors.New("indicator catalog required")

	// ErrEmbeddingFailed wraps errors from the embedding executor.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrExtractionFailed wraps errors from the extraction executor.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrInvalidMaxAttempts is returned when a retry budget is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)
