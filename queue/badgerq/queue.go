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


// Package badgerq implements queue.Queue on BadgerDB. Tasks move between
// three key families per stage: ready (ordered by due time), leased (ordered
// by lease expiry), and dead. Every move happens in a single transaction, so
// a task is never visible in two families and never lost between them.
package badgerq

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/queue"
	badgerstore "github.com/mageshboopath1/live-esg/storage/badger"
)

const (
	// DefaultLeaseDuration bounds how long a consumer may hold a task before
	// it becomes visible to other consumers again.
	DefaultLeaseDuration = 5 * time.Minute

	sequenceName = "esgq:seq"

	// Transaction conflicts mean another consumer raced us to the same ready
	// key. A few immediate retries pick up the next task instead.
	consumeRetries = 3
)

// Queue is a durable BadgerDB-backed task queue.
type Queue struct {
	backend       *badgerstore.Backend
	logger        *slog.Logger
	seq           *badger.Sequence
	leaseDuration time.Duration
	now           func() time.Time
}

var _ queue.Queue = (*Queue)(nil)

// Option configures a Queue.
type Option func(*Queue)

// WithLeaseDuration overrides the consumer lease duration.
func WithLeaseDuration(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.leaseDuration = d
		}
	}
}

// New creates a Queue on the given backend.
func New(backend *badgerstore.Backend, logger *slog.Logger, opts ...Option) (*Queue, error) {
	seq, err := backend.GetSequence(sequenceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue sequence: %w", err)
	}

	q := &Queue{
		backend:       backend,
		logger:        logger,
		seq:           seq,
		leaseDuration: DefaultLeaseDuration,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Close releases the queue's sequence. The backend stays open.
func (q *Queue) Close() error {
	return q.seq.Release()
}

// Enqueue validates and stores a task in the ready set, due immediately.
func (q *Queue) Enqueue(ctx context.Context, task *queue.Task) error {
	if err := queue.ValidateTask(task); err != nil {
		return err
	}

	now := q.now().UTC()
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = now
	}

	seq, err := q.seq.Next()
	if err != nil {
		return err
	}

	return q.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeReadyKey(task.Kind, now, seq), queue.MarshalTask(task)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Consume leases the oldest due task of the given kind. Expired leases are
// reclaimed first so that tasks held by crashed consumers come back into
// circulation. Returns queue.ErrNoTask when nothing is due.
func (q *Queue) Consume(ctx context.Context, kind queue.Kind) (*queue.Delivery, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %d", queue.ErrInvalidTask, int(kind))
	}

	for attempt := 0; ; attempt++ {
		d, err := q.consumeOnce(kind)
		if errors.Is(err, badger.ErrConflict) && attempt < consumeRetries {
			continue
		}
		return d, err
	}
}

func (q *Queue) consumeOnce(kind queue.Kind) (*queue.Delivery, error) {
	now := q.now().UTC()
	var delivery *queue.Delivery

	err := q.backend.WithTx(func(tx *badger.Txn) error {
		reclaimed, err := q.reclaimExpired(tx, kind, now)
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeKindPrefix(readyPrefix, kind)
		it := tx.NewIterator(opts)

		var (
			taskKey []byte
			taskRaw []byte
			task    *queue.Task
			corrupt []corruptRecord
		)
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if timeFromKey(item.Key()).After(now) {
				break // ordered by due time, nothing further is due
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				it.Close()
				return err
			}
			decoded, err := queue.UnmarshalTask(raw)
			if err != nil {
				corrupt = append(corrupt, corruptRecord{key: item.KeyCopy(nil), cause: err})
				continue
			}
			taskKey = item.KeyCopy(nil)
			taskRaw = raw
			task = decoded
			break
		}
		it.Close()

		// Unreadable records would be redelivered forever; move them to the
		// dead set instead of failing the poll.
		for _, c := range corrupt {
			if err := q.quarantine(tx, kind, c, now); err != nil {
				return err
			}
		}

		if task == nil {
			if reclaimed > 0 || len(corrupt) > 0 {
				if err := tx.Commit(); err != nil {
					return err
				}
			}
			return queue.ErrNoTask
		}

		leaseKey := makeLeaseKey(kind, now.Add(q.leaseDuration), seqFromKey(taskKey))
		if err := tx.Delete(taskKey); err != nil {
			return err
		}
		if err := tx.Set(leaseKey, taskRaw); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		delivery = &queue.Delivery{Task: task, Receipt: string(leaseKey)}
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	return delivery, nil
}

type corruptRecord struct {
	key   []byte
	cause error
}

// reclaimExpired moves tasks whose lease has lapsed back to the ready set.
// Lease keys are ordered by expiry, so the scan stops at the first live one.
func (q *Queue) reclaimExpired(tx *badger.Txn, kind queue.Kind, now time.Time) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeKindPrefix(leasePrefix, kind)
	it := tx.NewIterator(opts)

	type expiredLease struct {
		key []byte
		val []byte
	}
	var expired []expiredLease
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		if timeFromKey(item.Key()).After(now) {
			break
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			it.Close()
			return 0, err
		}
		expired = append(expired, expiredLease{key: item.KeyCopy(nil), val: val})
	}
	it.Close()

	for _, lease := range expired {
		if err := tx.Delete(lease.key); err != nil {
			return 0, err
		}
		if err := tx.Set(makeReadyKey(kind, now, seqFromKey(lease.key)), lease.val); err != nil {
			return 0, err
		}
		q.logger.Warn("reclaimed expired task lease",
			"kind", kind.String(),
			"seq", seqFromKey(lease.key))
	}
	return len(expired), nil
}

func (q *Queue) quarantine(tx *badger.Txn, kind queue.Kind, c corruptRecord, now time.Time) error {
	if err := tx.Delete(c.key); err != nil {
		return err
	}
	record := &queue.DeadLetteredTask{
		Task:   queue.Task{Kind: kind},
		Reason: fmt.Sprintf("task decode failed: %v", c.cause),
		DeadAt: now,
	}
	if err := tx.Set(makeDeadKey(kind, seqFromKey(c.key)), queue.MarshalDeadLetter(record)); err != nil {
		return err
	}
	q.logger.Warn("quarantined unreadable task",
		"kind", kind.String(),
		"seq", seqFromKey(c.key),
		"error", c.cause)
	return nil
}

// Ack completes a delivery and removes its task. Concurrent acks of the same
// kind contend on the completed-task counter, so conflicts are retried.
func (q *Queue) Ack(ctx context.Context, d *queue.Delivery) error {
	var err error
	for attempt := 0; attempt <= consumeRetries; attempt++ {
		err = q.backend.WithTx(func(tx *badger.Txn) error {
			receipt := []byte(d.Receipt)
			if _, err := tx.Get(receipt); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return queue.ErrStaleReceipt
				}
				return err
			}
			if err := tx.Delete(receipt); err != nil {
				return err
			}
			if err := bumpAcked(tx, d.Task.Kind); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// Nack returns a delivery's task to the ready set, due again after delay,
// with the counter selected by cause bumped by one. The stored task is
// authoritative; counters on the caller's copy are ignored.
func (q *Queue) Nack(ctx context.Context, d *queue.Delivery, delay time.Duration, cause queue.NackCause) error {
	if cause != queue.CauseReadinessDeferral && cause != queue.CauseExecutorFailure {
		return fmt.Errorf("%w: unknown nack cause %d", queue.ErrInvalidTask, int(cause))
	}

	now := q.now().UTC()
	return q.backend.WithTx(func(tx *badger.Txn) error {
		receipt := []byte(d.Receipt)
		task, err := q.takeLeased(tx, receipt)
		if err != nil {
			return err
		}

		switch cause {
		case queue.CauseReadinessDeferral:
			task.Attempts++
		case queue.CauseExecutorFailure:
			task.Failures++
		}

		readyKey := makeReadyKey(task.Kind, now.Add(delay), seqFromKey(receipt))
		if err := tx.Set(readyKey, queue.MarshalTask(task)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		d.Task.Attempts = task.Attempts
		d.Task.Failures = task.Failures
		return nil
	}, true)
}

// DeadLetter removes a delivery's task from circulation, preserving it with
// the reason and the last readiness snapshot.
func (q *Queue) DeadLetter(ctx context.Context, d *queue.Delivery, reason string, readiness core.Readiness) error {
	now := q.now().UTC()
	return q.backend.WithTx(func(tx *badger.Txn) error {
		receipt := []byte(d.Receipt)
		task, err := q.takeLeased(tx, receipt)
		if err != nil {
			return err
		}

		record := &queue.DeadLetteredTask{
			Task:      *task,
			Reason:    reason,
			Readiness: readiness,
			DeadAt:    now,
		}
		if err := tx.Set(makeDeadKey(task.Kind, seqFromKey(receipt)), queue.MarshalDeadLetter(record)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		q.logger.Warn("task dead-lettered",
			"kind", task.Kind.String(),
			"document_key", task.DocumentKey,
			"reason", reason)
		return nil
	}, true)
}

// takeLeased resolves a receipt to its stored task and deletes the lease.
func (q *Queue) takeLeased(tx *badger.Txn, receipt []byte) (*queue.Task, error) {
	item, err := tx.Get(receipt)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, queue.ErrStaleReceipt
		}
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	task, err := queue.UnmarshalTask(raw)
	if err != nil {
		return nil, err
	}
	if err := tx.Delete(receipt); err != nil {
		return nil, err
	}
	return task, nil
}

// Depth reports the number of unfinished tasks of a kind, ready plus leased.
func (q *Queue) Depth(ctx context.Context, kind queue.Kind) (int, error) {
	var depth int
	err := q.backend.WithTx(func(tx *badger.Txn) error {
		ready, err := countPrefix(tx, makeKindPrefix(readyPrefix, kind))
		if err != nil {
			return err
		}
		leased, err := countPrefix(tx, makeKindPrefix(leasePrefix, kind))
		if err != nil {
			return err
		}
		depth = ready + leased
		return nil
	}, false)
	return depth, err
}

// Stats reports per-kind queue state.
func (q *Queue) Stats(ctx context.Context) (queue.Stats, error) {
	stats := make(queue.Stats, 2)
	err := q.backend.WithTx(func(tx *badger.Txn) error {
		for _, kind := range []queue.Kind{queue.KindEmbed, queue.KindExtract} {
			ready, err := countPrefix(tx, makeKindPrefix(readyPrefix, kind))
			if err != nil {
				return err
			}
			leased, err := countPrefix(tx, makeKindPrefix(leasePrefix, kind))
			if err != nil {
				return err
			}
			dead, err := countPrefix(tx, makeKindPrefix(deadPrefix, kind))
			if err != nil {
				return err
			}
			acked, err := readAcked(tx, kind)
			if err != nil {
				return err
			}
			stats[kind] = queue.KindStats{
				Ready:        ready,
				Leased:       leased,
				DeadLettered: dead,
				Acked:        acked,
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeadLetters lists a stage's dead-lettered tasks in dead-letter order.
func (q *Queue) DeadLetters(ctx context.Context, kind queue.Kind) ([]*queue.DeadLetteredTask, error) {
	var records []*queue.DeadLetteredTask
	err := q.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeKindPrefix(deadPrefix, kind)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				record, err := queue.UnmarshalDeadLetter(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func countPrefix(tx *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := tx.NewIterator(opts)
	defer it.Close()

	count := 0
	for it.Rewind(); it.Valid(); it.Next() {
		count++
	}
	return count, nil
}

func bumpAcked(tx *badger.Txn, kind queue.Kind) error {
	acked, err := readAcked(tx, kind)
	if err != nil {
		return err
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, acked+1)
	return tx.Set(makeAckedKey(kind), buf)
}

func readAcked(tx *badger.Txn, kind queue.Kind) (uint64, error) {
	item, err := tx.Get(makeAckedKey(kind))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var acked uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("malformed ack counter: %d bytes", len(val))
		}
		acked = binary.BigEndian.Uint64(val)
		return nil
	})
	return acked, err
}
