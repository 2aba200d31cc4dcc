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


package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/queue"
)

// Default budgets for task admission.
const (
	DefaultCheckInterval       = 30 * time.Second
	DefaultMaxReadinessRetries = 10
	DefaultMaxExecutorFailures = 3
)

var (
	// ErrNilTask indicates Decide was called without a task.
	ErrNilTask = errors.New("gate: task is nil")

	// ErrInvalidConfig indicates a Config failed validation.
	ErrInvalidConfig = errors.New("gate: invalid config")
)

// Oracle answers whether a document's embeddings are complete. Implementations
// must compute the answer fresh on every call; the gate relies on that to see
// chunks embedded since the previous check.
type Oracle interface {
	Check(ctx context.Context, key core.ID) (core.Readiness, error)
}

// Config holds the gate's admission budgets.
type Config struct {
	// CheckInterval is the delay before a deferred task is rechecked.
	CheckInterval time.Duration

	// MaxReadinessRetries bounds how many times a task may be deferred
	// waiting for embeddings before it is dead-lettered.
	MaxReadinessRetries int

	// MaxExecutorFailures bounds how many executor errors a task may
	// accumulate before it is dead-lettered. Tracked separately from
	// readiness deferrals.
	MaxExecutorFailures int
}

// DefaultConfig returns the default admission budgets.
func DefaultConfig() Config {
	return Config{
		CheckInterval:       DefaultCheckInterval,
		MaxReadinessRetries: DefaultMaxReadinessRetries,
		MaxExecutorFailures: DefaultMaxExecutorFailures,
	}
}

// Validate checks that the budgets are usable.
func (c Config) Validate() error {
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: CheckInterval must be positive", ErrInvalidConfig)
	}
	if c.MaxReadinessRetries < 1 {
		return fmt.Errorf("%w: MaxReadinessRetries must be at least 1", ErrInvalidConfig)
	}
	if c.MaxExecutorFailures < 1 {
		return fmt.Errorf("%w: MaxExecutorFailures must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// Outcome is the gate's verdict on one task delivery.
type Outcome int

const (
	// OutcomeAdmit releases the task to its executor.
	OutcomeAdmit Outcome = iota + 1
	// OutcomeDefer parks the task for another readiness check later.
	OutcomeDefer
	// OutcomeDeadLetter removes the task from circulation.
	OutcomeDeadLetter
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdmit:
		return "admit"
	case OutcomeDefer:
		return "defer"
	case OutcomeDeadLetter:
		return "dead-letter"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision is one admission verdict. Readiness carries the snapshot the
// decision was based on, preserved into dead letters for diagnosis.
type Decision struct {
	Outcome   Outcome
	Delay     time.Duration // recheck delay, set for OutcomeDefer
	Reason    string        // set for OutcomeDeadLetter
	Readiness core.Readiness
}

// Gate decides whether extraction tasks may run yet.
type Gate struct {
	oracle Oracle
	config Config
	logger *slog.Logger
}

// New creates a Gate with the given oracle and budgets.
func New(oracle Oracle, config Config, logger *slog.Logger) (*Gate, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Gate{
		oracle: oracle,
		config: config,
		logger: logger,
	}, nil
}

// Decide evaluates one delivery of a task against a fresh readiness snapshot.
//
// The order of checks matters: a task over its failure budget is dead-lettered
// without consulting the oracle, a ready document is admitted even on the
// task's last permitted attempt, and only then do exhausted readiness retries
// dead-letter the task. An oracle error is treated as "not ready" rather than
// failing the task, since a transient storage problem says nothing about the
// document.
func (g *Gate) Decide(ctx context.Context, task *queue.Task) (Decision, error) {
	if task == nil {
		return Decision{}, ErrNilTask
	}

	if task.Failures >= g.config.MaxExecutorFailures {
		d := Decision{
			Outcome: OutcomeDeadLetter,
			Reason:  fmt.Sprintf("executor failed %d times", task.Failures),
		}
		// Best-effort snapshot for the dead-letter record.
		if readiness, err := g.oracle.Check(ctx, task.DocumentKey); err == nil {
			d.Readiness = readiness
		}
		return d, nil
	}

	readiness, err := g.oracle.Check(ctx, task.DocumentKey)
	if err != nil {
		if task.Attempts >= g.config.MaxReadinessRetries {
			return Decision{
				Outcome: OutcomeDeadLetter,
				Reason:  fmt.Sprintf("document not ready after %d checks, last check failed: %v", task.Attempts, err),
			}, nil
		}
		g.logger.Warn("readiness check failed, deferring task",
			"document_key", task.DocumentKey,
			"attempts", task.Attempts,
			"error", err)
		return Decision{Outcome: OutcomeDefer, Delay: g.config.CheckInterval}, nil
	}

	if readiness.Ready {
		return Decision{Outcome: OutcomeAdmit, Readiness: readiness}, nil
	}

	if task.Attempts >= g.config.MaxReadinessRetries {
		return Decision{
			Outcome: OutcomeDeadLetter,
			Reason: fmt.Sprintf("document not ready after %d checks: %d/%d chunks embedded",
				task.Attempts, readiness.EmbeddedChunks, readiness.ExpectedChunks),
			Readiness: readiness,
		}, nil
	}

	g.logger.Debug("document not ready, deferring task",
		"document_key", task.DocumentKey,
		"attempts", task.Attempts,
		"embedded_chunks", readiness.EmbeddedChunks,
		"expected_chunks", readiness.ExpectedChunks)
	return Decision{
		Outcome:   OutcomeDefer,
		Delay:     g.config.CheckInterval,
		Readiness: readiness,
	}, nil
}
