package ai

import "context"

// Embedder generates vector embeddings from disclosure text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// IndicatorExtractor pulls ESG indicator values out of disclosure text.
// Implementations must be thread-safe for concurrent use.
type IndicatorExtractor interface {
	// ExtractIndicators analyzes a document's text and returns the indicator
	// values it discloses, with confidence and page provenance. Only indicators
	// the document actually reports are returned; nothing is invented for
	// indicators the text never mentions.
	// Returns an empty slice if the text discloses nothing extractable.
	// Returns an error if extraction fails.
	ExtractIndicators(ctx context.Context, text string) ([]RawIndicator, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and IndicatorExtractor
// instances, ensuring they share configuration and rate limiting.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// IndicatorExtractor returns the indicator extraction service.
	// The returned IndicatorExtractor is safe for concurrent use.
	IndicatorExtractor() IndicatorExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
