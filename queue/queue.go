// Package queue defines the durable task queue that decouples the pipeline
// stages. Delivery is at-least-once: a consumed task is leased, not removed,
// and an expired lease puts the task back in the ready set. Handlers must
// therefore be idempotent; the storage layer's upsert keys make replays safe.
package queue

import (
	"context"
	"time"

	"github.com/mageshboopath1/live-esg/core"
)

// NackCause selects which attempt counter a Nack bumps. Keeping the bump
// inside the queue means a handler cannot forget it and spin a task forever.
type NackCause int

const (
	// CauseReadinessDeferral marks a task parked because its document's
	// embeddings were not complete yet. Bumps Task.Attempts.
	CauseReadinessDeferral NackCause = iota + 1
	// CauseExecutorFailure marks a task whose handler failed. Bumps
	// Task.Failures.
	CauseExecutorFailure
)

// Delivery is one leased task. The receipt is opaque to callers and
// identifies the lease for Ack, Nack, and DeadLetter.
type Delivery struct {
	Task    *Task
	Receipt string
}

// DeadLetteredTask is a task that exhausted a budget or could not be
// processed, preserved with the reason and the last readiness snapshot
// observed by the gate (zero for executor failures).
type DeadLetteredTask struct {
	Task      Task
	Reason    string
	Readiness core.Readiness
	DeadAt    time.Time
}

// KindStats describes one stage's queue state.
type KindStats struct {
	Ready        int
	Leased       int
	DeadLettered int
	Acked        uint64
}

// Stats maps each stage to its queue state.
type Stats map[Kind]KindStats

// Queue is a durable multi-stage task queue.
type Queue interface {
	// Enqueue validates and stores a task in the ready set. EnqueuedAt is
	// stamped if zero.
	Enqueue(ctx context.Context, task *Task) error

	// Consume leases the oldest ready task of the given kind. Expired leases
	// are reclaimed first, so a crashed consumer's tasks become visible
	// again here. Returns ErrNoTask when nothing is ready.
	Consume(ctx context.Context, kind Kind) (*Delivery, error)

	// Ack completes a delivery and removes the task. Returns ErrStaleReceipt
	// if the lease already expired and was reclaimed.
	Ack(ctx context.Context, d *Delivery) error

	// Nack returns a delivery's task to the ready set, visible again after
	// delay, with the counter chosen by cause bumped by one.
	Nack(ctx context.Context, d *Delivery, delay time.Duration, cause NackCause) error

	// DeadLetter removes a delivery's task from circulation, preserving it
	// with the reason and the readiness snapshot for diagnosis.
	DeadLetter(ctx context.Context, d *Delivery, reason string, readiness core.Readiness) error

	// Depth reports the number of unfinished tasks of a kind: ready plus
	// leased. The drain monitor polls this.
	Depth(ctx context.Context, kind Kind) (int, error)

	// Stats reports per-kind queue state.
	Stats(ctx context.Context) (Stats, error)

	// DeadLetters lists the preserved dead-lettered tasks of a kind in
	// dead-letter order.
	DeadLetters(ctx context.Context, kind Kind) ([]*DeadLetteredTask, error)

	// Close releases queue resources. The underlying store is not closed.
	Close() error
}
