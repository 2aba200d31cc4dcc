package pipeline

import "errors"

var (
	// ErrDrainTimeout indicates a stage did not drain within the monitor's
	// timeout. The accompanying report carries the partial progress.
	ErrDrainTimeout = errors.New("queue drain timed out")

	// ErrIngestorRequired is returned when an ingestor is not provided.
	ErrIngestorRequired = errors.New("ingestor required")

	// ErrQueueRequired is returned when a task queue is not provided.
	ErrQueueRequired = errors.New("task queue required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrIndicatorRepositoryRequired is returned when an indicator repository is not provided.
	ErrIndicatorRepositoryRequired = errors.New("indicator repository required")

	// ErrScoreRepositoryRequired is returned when a score repository is not provided.
	ErrScoreRepositoryRequired = errors.New("score repository required")

	// ErrEmbedHandlerRequired is returned when an embed handler is not provided.
	ErrEmbedHandlerRequired = errors.New("embed handler required")

	// ErrExtractHandlerRequired is returned when an extract handler is not provided.
	ErrExtractHandlerRequired = errors.New("extract handler required")

	// ErrAggregatorRequired is returned when an aggregator is not provided.
	ErrAggregatorRequired = errors.New("aggregator required")

	// ErrNoDocuments indicates a run had no successfully ingested documents
	// to push through the pipeline.
	ErrNoDocuments = errors.New("no documents to process")
)
