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
	"log/slog"
	"strings"

	"github.com/mageshboopath1/live-esg/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages embedder and indicator extractor instances, which share one
// rate limiter so the combined request rate stays under the configured ceiling.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	extractor *IndicatorExtractor
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use. The specs describe the
// indicator catalog the extractor will look for.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, specs []ai.IndicatorSpec) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	limiter := ai.NewLimiter(config.RequestsPerSecond)

	// Create embedder (using internal constructor for concrete type)
	embedder, err := newEmbedder(config, limiter)
	if err != nil {
		return nil, err
	}

	// Create indicator extractor (using internal constructor for concrete type)
	extractor, err := newIndicatorExtractor(config, specs, limiter)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		extractor: extractor,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// IndicatorExtractor returns the indicator extraction service.
func (p *Provider) IndicatorExtractor() ai.IndicatorExtractor {
	return p.extractor
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}

// isRateLimited reports whether an API error looks like a 429 response.
// langchaingo surfaces HTTP failures as plain errors, so the status is
// sniffed out of the message.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit")
}
