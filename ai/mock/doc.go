// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder,
// ai.IndicatorExtractor, and ai.Provider for use in unit tests and the
// seeder. The mocks allow tests to run without external AI services and
// enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vectors, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockExtractor := mock.NewMockIndicatorExtractor()
//	mockExtractor.ExtractIndicatorsFunc = func(ctx context.Context, text string) ([]ai.RawIndicator, error) {
//	    return []ai.RawIndicator{{Code: "E-GHG-INT", Numeric: 412, HasNumeric: true, Confidence: 0.9}}, nil
//	}
//
//	// Check call counts
//	count := mockExtractor.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockIndicatorExtractor: Treats indicator codes literally present in the
//     text as disclosures, with stable per-code numeric readings and page
//     attribution from [page N] markers
//   - MockProvider: Aggregates mock embedder and extractor
package mock
