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


package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/mageshboopath1/live-esg/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// IndicatorExtractor implements ai.IndicatorExtractor using OpenAI-compatible chat APIs.
type IndicatorExtractor struct {
	client        llms.Model
	systemPrompt  string
	minConfidence float64
	limiter       *ai.Limiter
	logger        *slog.Logger
}

// indicatorRow is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type indicatorRow struct {
	Code       string   `json:"code"`
	Value      string   `json:"value"`
	Numeric    *float64 `json:"numeric"`
	Confidence float64  `json:"confidence"`
	Pages      []int    `json:"pages"`
}

// extraction is the wrapper structure for the LLM's JSON response.
type extraction struct {
	Indicators []indicatorRow `json:"indicators"`
}

// newIndicatorExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance and share its rate limiter.
func newIndicatorExtractor(config *ai.Config, specs []ai.IndicatorSpec, limiter *ai.Limiter) (*IndicatorExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, errors.New("openai: at least one indicator spec is required")
	}

	// Create OpenAI client configured for chat/extraction
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &IndicatorExtractor{
		client:        client,
		systemPrompt:  buildSystemPrompt(specs),
		minConfidence: config.MinConfidence,
		limiter:       limiter,
		logger:        slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewIndicatorExtractor creates a new indicator extractor using the provided
// configuration and indicator catalog.
//
// Returns ai.IndicatorExtractor interface to enforce abstraction.
func NewIndicatorExtractor(config *ai.Config, specs []ai.IndicatorSpec) (ai.IndicatorExtractor, error) {
	return newIndicatorExtractor(config, specs, ai.NewLimiter(config.RequestsPerSecond))
}

// ExtractIndicators extracts disclosed indicator values from document text using an LLM.
// It applies confidence filtering and returns only readings at or above the minimum threshold.
func (e *IndicatorExtractor) ExtractIndicators(ctx context.Context, text string) ([]ai.RawIndicator, error) {
	// PDF text arrives with ragged spacing; compact it before spending prompt tokens on it.
	text = compactWhitespace(text)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(e.systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result extraction
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			if isRateLimited(err) {
				e.limiter.RecordRateLimitError(0)
			}
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []ai.RawIndicator{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Filter by confidence and convert to ai.RawIndicator
	extracted := make([]ai.RawIndicator, 0, len(result.Indicators))
	for _, row := range result.Indicators {
		code := strings.ToUpper(strings.TrimSpace(row.Code))
		if code == "" {
			continue
		}

		confidence := row.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		if confidence < e.minConfidence {
			continue
		}

		pages := make([]int, 0, len(row.Pages))
		for _, p := range row.Pages {
			if p > 0 {
				pages = append(pages, p)
			}
		}
		slices.Sort(pages)
		pages = slices.Compact(pages)

		indicator := ai.RawIndicator{
			Code:       code,
			Value:      strings.TrimSpace(row.Value),
			Confidence: confidence,
			Pages:      pages,
		}
		if row.Numeric != nil {
			indicator.Numeric = *row.Numeric
			indicator.HasNumeric = true
		}
		extracted = append(extracted, indicator)
	}

	// Sort by code so downstream processing sees a stable order
	slices.SortFunc(extracted, func(a, b ai.RawIndicator) int {
		return strings.Compare(a.Code, b.Code)
	})

	e.logger.Debug("extracted indicators",
		"total", len(result.Indicators),
		"filtered", len(extracted))

	return extracted, nil
}
