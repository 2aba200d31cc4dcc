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


package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/ingest"
	"github.com/mageshboopath1/live-esg/queue"
	"github.com/mageshboopath1/live-esg/scoring"
	"github.com/mageshboopath1/live-esg/storage"
	"github.com/mageshboopath1/live-esg/worker"
)

// Source identifies one report to ingest: where to fetch it and which
// company report year it belongs to.
type Source struct {
	Location   string
	Company    string
	ReportYear int
}

// Failure records one document that fell out of a run. Other documents are
// unaffected; failures surface here instead of aborting the run.
type Failure struct {
	Company    string
	ReportYear int
	Stage      string
	Err        error
}

// RunReport is the outcome of one full pipeline run.
type RunReport struct {
	Documents    []*core.Document
	Scores       []*core.ESGScore
	Failures     []Failure
	EmbedDrain   DrainReport
	ExtractDrain DrainReport
}

// Runner sequences the pipeline's macro stages over a set of report sources.
type Runner struct {
	ingestor   *ingest.Ingestor
	documents  storage.DocumentRepository
	indicators storage.IndicatorRepository
	scores     storage.ScoreRepository
	queue      queue.Queue
	embed      *worker.EmbedHandler
	extract    *worker.ExtractHandler
	aggregator *scoring.Aggregator

	workers      int
	pollInterval time.Duration
	monitor      MonitorConfig
	logger       *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithWorkers sets the handler pool size used for each stage.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) error {
		if n > 0 {
			r.workers = n
		}
		return nil
	}
}

// WithMonitor sets the drain monitor configuration for both stages.
func WithMonitor(config MonitorConfig) RunnerOption {
	return func(r *Runner) error {
		r.monitor = config
		return nil
	}
}

// WithStagePollInterval sets how often idle stage workers re-poll the queue.
// Default is worker.DefaultPollInterval.
func WithStagePollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) error {
		if d > 0 {
			r.pollInterval = d
		}
		return nil
	}
}

// WithRunnerLogger sets a custom logger.
// Default is slog.Default().
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a Runner over the pipeline's collaborators.
func NewRunner(
	ingestor *ingest.Ingestor,
	documents storage.DocumentRepository,
	indicators storage.IndicatorRepository,
	scores storage.ScoreRepository,
	q queue.Queue,
	embed *worker.EmbedHandler,
	extract *worker.ExtractHandler,
	aggregator *scoring.Aggregator,
	opts ...RunnerOption,
) (*Runner, error) {
	if ingestor == nil {
		return nil, ErrIngestorRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if indicators == nil {
		return nil, ErrIndicatorRepositoryRequired
	}
	if scores == nil {
		return nil, ErrScoreRepositoryRequired
	}
	if q == nil {
		return nil, ErrQueueRequired
	}
	if embed == nil {
		return nil, ErrEmbedHandlerRequired
	}
	if extract == nil {
		return nil, ErrExtractHandlerRequired
	}
	if aggregator == nil {
		return nil, ErrAggregatorRequired
	}

	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}

	r := &Runner{
		ingestor:     ingestor,
		documents:    documents,
		indicators:   indicators,
		scores:       scores,
		queue:        q,
		embed:        embed,
		extract:      extract,
		aggregator:   aggregator,
		workers:      workers,
		pollInterval: worker.DefaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run pushes the report set through the full pipeline: ingest (which queues
// both stage tasks per document), drain the embed stage, drain extraction,
// then aggregate and store one score per document. A failed source or
// document drops out of the run and is recorded in the report; a drain
// timeout aborts with the partial report.
func (r *Runner) Run(ctx context.Context, sources []Source) (*RunReport, error) {
	report := &RunReport{}

	for _, src := range sources {
		doc, err := r.ingestor.Ingest(ctx, src.Location, src.Company, src.ReportYear)
		if err != nil {
			r.logger.Error("ingest failed",
				"source", src.Location,
				"company", src.Company,
				"report_year", src.ReportYear,
				"error", err)
			report.Failures = append(report.Failures, Failure{
				Company:    src.Company,
				ReportYear: src.ReportYear,
				Stage:      "ingest",
				Err:        err,
			})
			continue
		}
		report.Documents = append(report.Documents, doc)
	}
	if len(report.Documents) == 0 {
		return report, ErrNoDocuments
	}

	drain, err := r.runStage(ctx, r.embed)
	report.EmbedDrain = drain
	if err != nil {
		return report, err
	}

	drain, err = r.runStage(ctx, r.extract)
	report.ExtractDrain = drain
	if err != nil {
		return report, err
	}

	scores, failures := r.scoreDocuments(ctx, report.Documents)
	report.Scores = scores
	report.Failures = append(report.Failures, failures...)

	r.logger.Info("pipeline run complete",
		"documents", len(report.Documents),
		"scores", len(report.Scores),
		"failures", len(report.Failures))
	return report, nil
}

// ScoreAll re-aggregates every stored document from its current indicators,
// without re-ingesting or re-extracting.
func (r *Runner) ScoreAll(ctx context.Context) ([]*core.ESGScore, []Failure, error) {
	docs, err := r.documents.ListDocuments(ctx)
	if err != nil {
		return nil, nil, err
	}
	scores, failures := r.scoreDocuments(ctx, docs)
	return scores, failures, nil
}

// runStage runs workers for one stage until its queue drains. The stats
// baseline is taken before the workers start, so tasks they settle before the
// monitor's first poll still show up as stage progress.
func (r *Runner) runStage(ctx context.Context, handler worker.Handler) (DrainReport, error) {
	base, err := r.queue.Stats(ctx)
	if err != nil {
		return DrainReport{}, err
	}

	w, err := worker.New(r.queue, handler,
		worker.WithPoolSize(r.workers),
		worker.WithPollInterval(r.pollInterval),
		worker.WithLogger(r.logger))
	if err != nil {
		return DrainReport{}, err
	}
	if err := w.Start(); err != nil {
		return DrainReport{}, err
	}
	defer w.Stop()

	report, err := WaitForDrainSince(ctx, r.queue, handler.Kind(), base[handler.Kind()], r.monitor)
	r.logger.Info("stage drained",
		"kind", report.Kind.String(),
		"phase", report.Phase.String(),
		"processed", report.Processed,
		"dead_lettered", report.DeadLettered,
		"remaining", report.Remaining,
		"waited", report.Waited)
	return report, err
}

// scoreDocuments aggregates and stores a score per document. The aggregation
// for one key never runs concurrently with itself here; concurrent runners
// against the same key resolve by overwrite, last writer wins.
func (r *Runner) scoreDocuments(ctx context.Context, docs []*core.Document) ([]*core.ESGScore, []Failure) {
	var scores []*core.ESGScore
	var failures []Failure

	for _, doc := range docs {
		score, err := r.scoreDocument(ctx, doc)
		if err != nil {
			r.logger.Warn("document not scored",
				"company", doc.Company,
				"report_year", doc.ReportYear,
				"error", err)
			failures = append(failures, Failure{
				Company:    doc.Company,
				ReportYear: doc.ReportYear,
				Stage:      "aggregate",
				Err:        err,
			})
			continue
		}
		scores = append(scores, score)
	}
	return scores, failures
}

func (r *Runner) scoreDocument(ctx context.Context, doc *core.Document) (*core.ESGScore, error) {
	rows, err := r.indicators.GetIndicators(ctx, doc.Key)
	if err != nil {
		return nil, err
	}
	score, err := r.aggregator.Aggregate(doc, rows)
	if err != nil {
		return nil, err
	}
	if _, err := r.scores.PutScore(ctx, score); err != nil {
		return nil, err
	}
	return score, nil
}
