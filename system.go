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


package liveesg

import (
	"log/slog"
	"strings"
	"time"

	"github.com/mageshboopath1/live-esg/ai"
	"github.com/mageshboopath1/live-esg/ai/mock"
	"github.com/mageshboopath1/live-esg/ai/openai"
	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/gate"
	"github.com/mageshboopath1/live-esg/ingest"
	"github.com/mageshboopath1/live-esg/pipeline"
	"github.com/mageshboopath1/live-esg/queue"
	"github.com/mageshboopath1/live-esg/queue/badgerq"
	"github.com/mageshboopath1/live-esg/scoring"
	"github.com/mageshboopath1/live-esg/storage"
	badgerstore "github.com/mageshboopath1/live-esg/storage/badger"
	"github.com/mageshboopath1/live-esg/worker"
)

// System owns the pipeline's shared infrastructure: the badger backend, the
// repositories and task queue layered over it, the admission gate, the AI
// provider, and the indicator catalog. Stage components are created through
// the factory methods so they all share the same instances.
type System struct {
	backend    *badgerstore.Backend
	documents  storage.DocumentRepository
	chunks     storage.ChunkRepository
	indicators storage.IndicatorRepository
	scores     storage.ScoreRepository
	queue      *badgerq.Queue
	gate       *gate.Gate
	provider   ai.Provider
	catalog    *scoring.Catalog
	weights    scoring.Weights
	logger     *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig    *ai.Config
	mockAI      bool
	inMemory    bool
	gateConfig  gate.Config
	catalog     *scoring.Catalog
	weights     scoring.Weights
	quietWindow time.Duration
	logger      *slog.Logger
}

// WithAIConfig sets the OpenAI-compatible service configuration.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithMockAI swaps the AI provider for the deterministic in-process mock.
// Useful for offline runs and seeding.
func WithMockAI() SystemOption {
	return func(o *systemOptions) {
		o.mockAI = true
	}
}

// WithInMemory keeps the entire backend in memory. Nothing survives Close.
func WithInMemory() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// WithGateConfig sets the extraction gate's admission budgets.
func WithGateConfig(config gate.Config) SystemOption {
	return func(o *systemOptions) {
		o.gateConfig = config
	}
}

// WithCatalog replaces the default indicator catalog.
func WithCatalog(catalog *scoring.Catalog) SystemOption {
	return func(o *systemOptions) {
		if catalog != nil {
			o.catalog = catalog
		}
	}
}

// WithWeights sets the pillar weights used for aggregation.
func WithWeights(weights scoring.Weights) SystemOption {
	return func(o *systemOptions) {
		o.weights = weights
	}
}

// WithQuietWindow sets the readiness oracle's quiet window, used only for
// documents whose expected chunk count is unknown.
func WithQuietWindow(d time.Duration) SystemOption {
	return func(o *systemOptions) {
		o.quietWindow = d
	}
}

// WithLogger sets the logger shared by the system's components.
func WithLogger(logger *slog.Logger) SystemOption {
	return func(o *systemOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewSystem opens the backend at filePath and wires the shared components
// over it. An empty filePath with WithInMemory runs entirely in memory.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig:   ai.DefaultConfig(),
		gateConfig: gate.DefaultConfig(),
		weights:    scoring.DefaultWeights(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	catalog := options.catalog
	if catalog == nil {
		var err error
		catalog, err = scoring.DefaultCatalog()
		if err != nil {
			return nil, err
		}
	}

	backend, err := badgerstore.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documents := badgerstore.NewDocumentRepository(backend)
	chunks := badgerstore.NewChunkRepository(backend)
	indicators := badgerstore.NewIndicatorRepository(backend)
	scores := badgerstore.NewScoreRepository(backend)

	q, err := badgerq.New(backend, options.logger)
	if err != nil {
		backend.Close()
		return nil, err
	}

	oracle := badgerstore.NewReadinessOracle(backend, options.quietWindow)
	g, err := gate.New(oracle, options.gateConfig, options.logger)
	if err != nil {
		q.Close()
		backend.Close()
		return nil, err
	}

	var provider ai.Provider
	if options.mockAI {
		provider = mock.NewMockProvider()
	} else {
		provider, err = openai.NewProvider(options.aiConfig, indicatorSpecs(catalog))
		if err != nil {
			q.Close()
			backend.Close()
			return nil, err
		}
	}

	return &System{
		backend:    backend,
		documents:  documents,
		chunks:     chunks,
		indicators: indicators,
		scores:     scores,
		queue:      q,
		gate:       g,
		provider:   provider,
		catalog:    catalog,
		weights:    options.weights,
		logger:     options.logger,
	}, nil
}

// Close releases the provider, the queue, and the storage layer.
func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.queue.Close(); err != nil {
		s.logger.Error("error closing task queue", "err", err)
	}

	if err := s.documents.Close(); err != nil {
		s.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := s.chunks.Close(); err != nil {
		s.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := s.indicators.Close(); err != nil {
		s.logger.Error("error closing indicator repository", "err", err)
		return err
	}
	if err := s.scores.Close(); err != nil {
		s.logger.Error("error closing score repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *System) DocumentRepository() storage.DocumentRepository {
	return s.documents
}

func (s *System) ChunkRepository() storage.ChunkRepository {
	return s.chunks
}

func (s *System) IndicatorRepository() storage.IndicatorRepository {
	return s.indicators
}

func (s *System) ScoreRepository() storage.ScoreRepository {
	return s.scores
}

func (s *System) Queue() queue.Queue {
	return s.queue
}

func (s *System) Provider() ai.Provider {
	return s.provider
}

func (s *System) Catalog() *scoring.Catalog {
	return s.catalog
}

// NewIngestor creates a report ingestor over the system's stores and queue.
func (s *System) NewIngestor(opts ...ingest.Option) (*ingest.Ingestor, error) {
	return ingest.NewIngestor(s.documents, s.chunks, s.queue, opts...)
}

// NewEmbedHandler creates the embedding stage handler.
func (s *System) NewEmbedHandler(opts ...worker.EmbedOption) (*worker.EmbedHandler, error) {
	opts = append([]worker.EmbedOption{worker.WithEmbedLogger(s.logger)}, opts...)
	return worker.NewEmbedHandler(s.chunks, s.queue, s.provider.Embedder(), opts...)
}

// NewExtractHandler creates the extraction stage handler behind the gate.
func (s *System) NewExtractHandler(opts ...worker.ExtractOption) (*worker.ExtractHandler, error) {
	opts = append([]worker.ExtractOption{worker.WithExtractLogger(s.logger)}, opts...)
	return worker.NewExtractHandler(s.chunks, s.indicators, s.queue, s.gate,
		s.provider.IndicatorExtractor(), s.catalog, opts...)
}

// NewAggregator creates a score aggregator over the system's catalog and weights.
func (s *System) NewAggregator() (*scoring.Aggregator, error) {
	return scoring.NewAggregator(s.catalog, s.weights, s.logger)
}

// NewRunner wires a full pipeline runner from the system's components.
func (s *System) NewRunner(opts ...pipeline.RunnerOption) (*pipeline.Runner, error) {
	ingestor, err := s.NewIngestor()
	if err != nil {
		return nil, err
	}
	embed, err := s.NewEmbedHandler()
	if err != nil {
		return nil, err
	}
	extract, err := s.NewExtractHandler()
	if err != nil {
		return nil, err
	}
	aggregator, err := s.NewAggregator()
	if err != nil {
		return nil, err
	}

	opts = append([]pipeline.RunnerOption{pipeline.WithRunnerLogger(s.logger)}, opts...)
	return pipeline.NewRunner(ingestor, s.documents, s.indicators, s.scores, s.queue,
		embed, extract, aggregator, opts...)
}

// indicatorSpecs converts catalog definitions into the extractor's view.
// Catalog names carry the unit in a trailing parenthetical; the split keeps
// the prompt's name and unit fields separate.
func indicatorSpecs(catalog *scoring.Catalog) []ai.IndicatorSpec {
	specs := make([]ai.IndicatorSpec, 0, catalog.Len())
	for _, code := range catalog.Codes() {
		def, ok := catalog.Lookup(code)
		if !ok {
			continue
		}
		name, unit := splitNameUnit(def.Name)
		specs = append(specs, ai.IndicatorSpec{
			Code:     def.Code,
			Name:     name,
			Unit:     unit,
			Guidance: specGuidance(def),
		})
	}
	return specs
}

func splitNameUnit(name string) (string, string) {
	if !strings.HasSuffix(name, ")") {
		return name, ""
	}
	open := strings.LastIndex(name, " (")
	if open < 0 {
		return name, ""
	}
	return name[:open], name[open+2 : len(name)-1]
}

// specGuidance derives a disambiguation hint from how the indicator scores.
// Inverse indicators trip extractors up: reports often lead with a stated
// reduction rather than the absolute figure the pipeline needs.
func specGuidance(def *core.IndicatorDefinition) string {
	switch def.Normalization {
	case core.NormalizationInverseIntensity, core.NormalizationInverseCount, core.NormalizationInverseDays:
		return "Lower is better. Prefer the absolute full-year figure over a stated reduction."
	default:
		return ""
	}
}
