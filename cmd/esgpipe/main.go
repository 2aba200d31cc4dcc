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


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	liveesg "github.com/mageshboopath1/live-esg"
	"github.com/mageshboopath1/live-esg/ai"
	"github.com/mageshboopath1/live-esg/gate"
	"github.com/mageshboopath1/live-esg/pipeline"
	"github.com/mageshboopath1/live-esg/queue"
	"github.com/mageshboopath1/live-esg/report"
	"github.com/mageshboopath1/live-esg/scoring"
	"github.com/mageshboopath1/live-esg/worker"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "esgpipe",
		Usage: "ESG disclosure scoring pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest a disclosure report and queue its pipeline work",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "source",
						Usage:    "Path or URL of the report (PDF or plain text)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "company",
						Usage:    "Company the report belongs to",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "year",
						Usage:    "Report year the disclosures cover",
						Required: true,
					},
				},
			},
			{
				Name:   "work",
				Usage:  "Run embed and extract workers until both queues drain",
				Action: workCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Handler pool size per stage (0 = half the CPUs)",
					},
					&cli.DurationFlag{
						Name:  "poll-interval",
						Usage: "Sleep between empty queue polls",
						Value: worker.DefaultPollInterval,
					},
					&cli.DurationFlag{
						Name:  "check-interval",
						Usage: "Delay before a deferred extraction is rechecked",
						Value: gate.DefaultCheckInterval,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Give up if the queues have not drained after this long",
						Value: pipeline.DefaultDrainTimeout,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "extractor-host",
						Usage: "Extraction service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "extractor-model",
						Usage: "Extraction model name",
						Value: "qwen2.5:7b",
					},
					&cli.Float64Flag{
						Name:  "rps",
						Usage: "Request rate limit per AI service",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "mock",
						Usage: "Use the deterministic in-process models instead of an AI service",
					},
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "Indicator catalog YAML (defaults to the built-in catalog)",
					},
				},
			},
			{
				Name:   "score",
				Usage:  "Aggregate stored indicators into ESG scores for every document",
				Action: scoreCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "Indicator catalog YAML (defaults to the built-in catalog)",
					},
				},
			},
			{
				Name:   "report",
				Usage:  "Export stored scores as an Excel workbook or CSV",
				Action: reportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format (xlsx or csv)",
						Value: "xlsx",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output path (required for xlsx; csv defaults to stdout)",
					},
					&cli.BoolFlag{
						Name:  "provenance",
						Usage: "Emit per-indicator provenance rows instead of the score summary (csv only)",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show document, score, and queue counts",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "deadletters",
				Usage:  "List tasks that exhausted their retry budgets",
				Action: deadlettersCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Limit to one stage (embed or extract)",
					},
				},
			},
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}
	source := c.String("source")

	// Open the system
	sys, err := liveesg.NewSystem(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sys.Close()

	ingestor, err := sys.NewIngestor()
	if err != nil {
		return fmt.Errorf("failed to create ingestor: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Source: %s\n", source)
	fmt.Fprintln(os.Stderr)

	doc, err := ingestor.Ingest(ctx, source, c.String("company"), c.Int("year"))
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %q %d: %d pages, %d chunks queued for embedding and extraction\n",
		doc.Company, doc.ReportYear, doc.Pages, doc.ChunkCount)
	return nil
}

func workCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Assemble system options
	var opts []liveesg.SystemOption
	if path := c.String("catalog"); path != "" {
		catalog, weights, err := scoring.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		opts = append(opts, liveesg.WithCatalog(catalog), liveesg.WithWeights(weights))
	}
	if c.Bool("mock") {
		opts = append(opts, liveesg.WithMockAI())
	} else {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithExtractorHost(c.String("extractor-host")),
			ai.WithExtractorModel(c.String("extractor-model")),
			ai.WithRequestsPerSecond(c.Float64("rps")),
		)
		if err := aiConfig.Validate(); err != nil {
			return fmt.Errorf("invalid AI configuration: %w", err)
		}
		opts = append(opts, liveesg.WithAIConfig(aiConfig))
	}
	gateConfig := gate.DefaultConfig()
	gateConfig.CheckInterval = c.Duration("check-interval")
	opts = append(opts, liveesg.WithGateConfig(gateConfig))

	// Open the system
	sys, err := liveesg.NewSystem(dbPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sys.Close()

	embedHandler, err := sys.NewEmbedHandler()
	if err != nil {
		return fmt.Errorf("failed to create embed handler: %w", err)
	}
	extractHandler, err := sys.NewExtractHandler()
	if err != nil {
		return fmt.Errorf("failed to create extract handler: %w", err)
	}

	// Snapshot queue stats before the workers start so everything they
	// settle counts as progress.
	base, err := sys.Queue().Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read queue stats: %w", err)
	}

	workerOpts := []worker.Option{
		worker.WithPollInterval(c.Duration("poll-interval")),
	}
	if n := c.Int("workers"); n > 0 {
		workerOpts = append(workerOpts, worker.WithPoolSize(n))
	}
	embedWorker, err := worker.New(sys.Queue(), embedHandler, workerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create embed worker: %w", err)
	}
	extractWorker, err := worker.New(sys.Queue(), extractHandler, workerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create extract worker: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	if c.Bool("mock") {
		fmt.Fprintln(os.Stderr, "Models: deterministic mock provider")
	} else {
		fmt.Fprintf(os.Stderr, "Embedding: %s (%s)\n", c.String("embedding-model"), c.String("embedding-host"))
		fmt.Fprintf(os.Stderr, "Extractor: %s (%s)\n", c.String("extractor-model"), c.String("extractor-host"))
	}
	fmt.Fprintln(os.Stderr)

	if err := embedWorker.Start(); err != nil {
		return fmt.Errorf("failed to start embed worker: %w", err)
	}
	defer embedWorker.Stop()
	if err := extractWorker.Start(); err != nil {
		return fmt.Errorf("failed to start extract worker: %w", err)
	}
	defer extractWorker.Stop()

	// Both workers run concurrently; the embed queue is expected to drain
	// first since the gate holds extractions until embeddings are complete.
	monitor := pipeline.MonitorConfig{Timeout: c.Duration("timeout")}
	for _, kind := range []queue.Kind{queue.KindEmbed, queue.KindExtract} {
		drain, drainErr := pipeline.WaitForDrainSince(ctx, sys.Queue(), kind, base[kind], monitor)
		fmt.Fprintf(os.Stderr, "%s stage: %s, %d processed, %d dead-lettered, %d remaining\n",
			kind, drain.Phase, drain.Processed, drain.DeadLettered, drain.Remaining)
		if drainErr != nil {
			return fmt.Errorf("%s stage did not drain: %w", kind, drainErr)
		}
	}

	return nil
}

func scoreCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	var opts []liveesg.SystemOption
	if path := c.String("catalog"); path != "" {
		catalog, weights, err := scoring.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		opts = append(opts, liveesg.WithCatalog(catalog), liveesg.WithWeights(weights))
	}

	// Open the system
	sys, err := liveesg.NewSystem(dbPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sys.Close()

	runner, err := sys.NewRunner()
	if err != nil {
		return fmt.Errorf("failed to create runner: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintln(os.Stderr)

	scores, failures, err := runner.ScoreAll(ctx)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	for _, score := range scores {
		fmt.Printf("%s %d: overall %.1f (%d indicators across %d pillars)\n",
			score.Company, score.ReportYear, score.Overall, len(score.Contributions), len(score.Pillars))
	}
	for _, failure := range failures {
		fmt.Fprintf(os.Stderr, "Skipped %s %d: %v\n", failure.Company, failure.ReportYear, failure.Err)
	}
	fmt.Fprintf(os.Stderr, "\nScored %d of %d documents\n", len(scores), len(scores)+len(failures))
	return nil
}

func reportCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}
	format := strings.ToLower(c.String("format"))
	outPath := c.String("out")
	if format != "xlsx" && format != "csv" {
		return fmt.Errorf("invalid format %q: must be one of xlsx, csv", format)
	}
	if format == "xlsx" && outPath == "" {
		return fmt.Errorf("an output path is required for xlsx (use --out)")
	}

	// Open the system
	sys, err := liveesg.NewSystem(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sys.Close()

	scores, err := sys.ScoreRepository().ListScores(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scores: %w", err)
	}
	if len(scores) == 0 {
		fmt.Fprintln(os.Stderr, "No scores stored; the report will be empty")
	}

	switch format {
	case "xlsx":
		if err := report.WriteWorkbook(outPath, scores); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d scores to %s\n", len(scores), outPath)
	case "csv":
		out := io.Writer(os.Stdout)
		if outPath != "" {
			f, createErr := os.Create(outPath)
			if createErr != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, createErr)
			}
			defer f.Close()
			out = f
		}
		if c.Bool("provenance") {
			err = report.WriteProvenanceCSV(out, scores)
		} else {
			err = report.WriteScoresCSV(out, scores)
		}
		if err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}

	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Open the system
	sys, err := liveesg.NewSystem(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sys.Close()

	docs, err := sys.DocumentRepository().ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	scores, err := sys.ScoreRepository().ListScores(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scores: %w", err)
	}
	stats, err := sys.Queue().Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read queue stats: %w", err)
	}

	fmt.Printf("Documents: %d\n", len(docs))
	fmt.Printf("Scores:    %d\n", len(scores))
	for _, kind := range []queue.Kind{queue.KindEmbed, queue.KindExtract} {
		ks := stats[kind]
		fmt.Printf("%-7s queue: %d ready, %d leased, %d dead-lettered, %d acked\n",
			kind, ks.Ready, ks.Leased, ks.DeadLettered, ks.Acked)
	}
	return nil
}

func deadlettersCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}
	kinds := []queue.Kind{queue.KindEmbed, queue.KindExtract}
	if kindStr := c.String("kind"); kindStr != "" {
		kind, err := parseKind(kindStr)
		if err != nil {
			return err
		}
		kinds = []queue.Kind{kind}
	}

	// Open the system
	sys, err := liveesg.NewSystem(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sys.Close()

	total := 0
	for _, kind := range kinds {
		letters, err := sys.Queue().DeadLetters(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to list %s dead letters: %w", kind, err)
		}
		for _, letter := range letters {
			fmt.Printf("%-7s  %s %d  attempts=%d failures=%d  %s  %s\n",
				letter.Task.Kind, letter.Task.Payload.Company, letter.Task.Payload.ReportYear,
				letter.Task.Attempts, letter.Task.Failures,
				letter.DeadAt.UTC().Format(time.RFC3339), letter.Reason)
			if letter.Readiness.ExpectedChunks > 0 || letter.Readiness.EmbeddedChunks > 0 {
				fmt.Printf("         embeddings %d/%d at dead-letter time\n",
					letter.Readiness.EmbeddedChunks, letter.Readiness.ExpectedChunks)
			}
		}
		total += len(letters)
	}
	if total == 0 {
		fmt.Fprintln(os.Stderr, "No dead letters")
	}
	return nil
}

func parseKind(s string) (queue.Kind, error) {
	switch strings.ToLower(s) {
	case "embed":
		return queue.KindEmbed, nil
	case "extract":
		return queue.KindExtract, nil
	default:
		return 0, fmt.Errorf("invalid task kind %q: must be one of embed, extract", s)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
