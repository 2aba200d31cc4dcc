package mock

import (
	"context"
	"hash/fnv"
	"regexp"
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/mageshboopath1/live-esg/ai"
)

var (
	// codePattern matches indicator codes like "E-GHG-INT" in document text.
	codePattern = regexp.MustCompile(`[A-Z]+(?:-[A-Z0-9]+)+`)
	// pagePattern matches the page markers the ingestion stage writes into text.
	pagePattern = regexp.MustCompile(`\[page (\d+)\]`)
)

// MockIndicatorExtractor is a test double for ai.IndicatorExtractor.
// It allows custom behavior injection via function fields and is safe to
// share between concurrent extract workers.
type MockIndicatorExtractor struct {
	// ExtractIndicatorsFunc is called by ExtractIndicators if set.
	// If nil, uses the default code-scanning behavior.
	ExtractIndicatorsFunc func(ctx context.Context, text string) ([]ai.RawIndicator, error)

	callCount atomic.Int64
}

// NewMockIndicatorExtractor creates a mock indicator extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockIndicatorExtractor() *MockIndicatorExtractor {
	return &MockIndicatorExtractor{}
}

// ExtractIndicators extracts deterministic mock readings from text.
// Default behavior: every indicator code literally present in the text yields
// one reading whose numeric value is derived from the code alone, attributed
// to the pages of the surrounding [page N] markers. Tests plant codes in
// chunk text to control exactly what gets "disclosed".
func (m *MockIndicatorExtractor) ExtractIndicators(ctx context.Context, text string) ([]ai.RawIndicator, error) {
	m.callCount.Add(1)

	if m.ExtractIndicatorsFunc != nil {
		return m.ExtractIndicatorsFunc(ctx, text)
	}

	markers := pagePattern.FindAllStringSubmatchIndex(text, -1)
	pageAt := func(offset int) int {
		page := 1
		for _, mk := range markers {
			if mk[0] > offset {
				break
			}
			if n, err := strconv.Atoi(text[mk[2]:mk[3]]); err == nil {
				page = n
			}
		}
		return page
	}

	pagesByCode := make(map[string][]int)
	for _, loc := range codePattern.FindAllStringIndex(text, -1) {
		code := text[loc[0]:loc[1]]
		page := pageAt(loc[0])
		if !slices.Contains(pagesByCode[code], page) {
			pagesByCode[code] = append(pagesByCode[code], page)
		}
	}

	codes := make([]string, 0, len(pagesByCode))
	for code := range pagesByCode {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	indicators := make([]ai.RawIndicator, 0, len(codes))
	for _, code := range codes {
		reading := deterministicReading(code)
		indicators = append(indicators, ai.RawIndicator{
			Code:       code,
			Value:      strconv.FormatFloat(reading, 'g', -1, 64) + " (mock reading)",
			Numeric:    reading,
			HasNumeric: true,
			Confidence: 0.9,
			Pages:      pagesByCode[code],
		})
	}

	return indicators, nil
}

// CallCount returns the number of times ExtractIndicators was called.
func (m *MockIndicatorExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockIndicatorExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractIndicatorsFunc = nil
}

// deterministicReading derives a stable numeric reading in [0, 100) from the
// code alone, so repeated extraction of the same code gives the same value.
func deterministicReading(code string) float64 {
	h := fnv.New32a()
	h.Write([]byte(code))
	return float64(h.Sum32()%1000) / 10
}
