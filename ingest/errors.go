package ingest

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrQueueRequired is returned when a task queue is not provided.
	ErrQueueRequired = errors.New("task queue required")

	// ErrEmptySource is returned when no source reference is given.
	ErrEmptySource = errors.New("empty source reference")

	// ErrNoText is returned when a fetched report yields no extractable text.
	ErrNoText = errors.New("report yielded no extractable text")
)
