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
	"fmt"
	"time"

	"github.com/mageshboopath1/live-esg/queue"
)

// Default monitor settings.
const (
	DefaultPollInterval  = 250 * time.Millisecond
	DefaultConfirmWindow = 1 * time.Second
	DefaultDrainTimeout  = 5 * time.Minute
)

// Phase is a state of the drain monitor's machine. The monitor starts in
// PhasePolling and terminates in exactly one of the other two.
type Phase int

const (
	// PhasePolling means the stage still has ready or leased tasks, or the
	// queue has not stayed empty for the full confirmation window yet.
	PhasePolling Phase = iota + 1
	// PhaseQuiescent means the queue held empty for the confirmation window.
	PhaseQuiescent
	// PhaseTimedOut means the timeout elapsed first.
	PhaseTimedOut
)

func (p Phase) String() string {
	switch p {
	case PhasePolling:
		return "polling"
	case PhaseQuiescent:
		return "quiescent"
	case PhaseTimedOut:
		return "timed-out"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MonitorConfig bounds one drain wait. Non-positive fields select defaults.
type MonitorConfig struct {
	// PollInterval is the time between depth checks.
	PollInterval time.Duration

	// ConfirmWindow is how long the queue must stay empty before the stage
	// counts as drained. A single empty poll is not enough: a producer may
	// still be enqueuing between polls.
	ConfirmWindow time.Duration

	// Timeout bounds the whole wait.
	Timeout time.Duration
}

func (c MonitorConfig) withDefaults() MonitorConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ConfirmWindow <= 0 {
		c.ConfirmWindow = DefaultConfirmWindow
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultDrainTimeout
	}
	return c
}

// DrainReport describes how a drain wait ended. It is returned for timeouts
// too, so operators always see the partial progress.
type DrainReport struct {
	Kind         queue.Kind
	Phase        Phase
	Processed    uint64 // tasks acked during the wait
	DeadLettered int    // tasks dead-lettered during the wait
	Remaining    int    // ready plus leased tasks at the end
	Waited       time.Duration
}

// WaitForDrain polls the stage's queue depth until it has stayed empty for
// the confirmation window, the timeout elapses, or the context ends. On
// timeout the report carries the progress made so far alongside
// ErrDrainTimeout; a context end returns the context's error the same way.
func WaitForDrain(ctx context.Context, q queue.Queue, kind queue.Kind, config MonitorConfig) (DrainReport, error) {
	stats, err := q.Stats(ctx)
	if err != nil {
		return DrainReport{Kind: kind, Phase: PhasePolling}, err
	}
	return WaitForDrainSince(ctx, q, kind, stats[kind], config)
}

// WaitForDrainSince is WaitForDrain against an explicit stats baseline.
// Callers that start consumers before waiting snapshot the baseline first,
// so tasks settled before the first poll still count as progress.
func WaitForDrainSince(ctx context.Context, q queue.Queue, kind queue.Kind, base queue.KindStats, config MonitorConfig) (DrainReport, error) {
	config = config.withDefaults()

	report := DrainReport{Kind: kind, Phase: PhasePolling}
	start := time.Now()
	deadline := start.Add(config.Timeout)

	finish := func(phase Phase) (DrainReport, error) {
		report.Phase = phase
		report.Waited = time.Since(start)
		if stats, statsErr := q.Stats(ctx); statsErr == nil {
			report.Processed = stats[kind].Acked - base.Acked
			report.DeadLettered = stats[kind].DeadLettered - base.DeadLettered
			report.Remaining = stats[kind].Ready + stats[kind].Leased
		}
		if phase == PhaseTimedOut {
			return report, ErrDrainTimeout
		}
		return report, nil
	}

	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()

	var emptySince time.Time
	for {
		depth, err := q.Depth(ctx, kind)
		if err != nil {
			return report, err
		}
		now := time.Now()

		if depth == 0 {
			if emptySince.IsZero() {
				emptySince = now
			}
			if now.Sub(emptySince) >= config.ConfirmWindow {
				return finish(PhaseQuiescent)
			}
		} else {
			emptySince = time.Time{}
		}

		if now.After(deadline) {
			return finish(PhaseTimedOut)
		}

		select {
		case <-ctx.Done():
			report, _ = finish(PhaseTimedOut)
			return report, ctx.Err()
		case <-ticker.C:
		}
	}
}
