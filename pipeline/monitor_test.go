package pipeline

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/queue"
	"github.com/mageshboopath1/live-esg/queue/badgerq"
	badgerstore "github.com/mageshboopath1/live-esg/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMonitorQueue(t *testing.T) *badgerq.Queue {
	t.Helper()

	backend, err := badgerstore.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	q, err := badgerq.New(backend, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q
}

func enqueueEmbedTask(t *testing.T, q queue.Queue, key core.ID) {
	t.Helper()
	require.NoError(t, q.Enqueue(context.Background(), &queue.Task{
		Kind:        queue.KindEmbed,
		DocumentKey: key,
		Payload:     queue.Payload{Company: "Acme Corp", ReportYear: 2023},
	}))
}

func fastMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PollInterval:  2 * time.Millisecond,
		ConfirmWindow: 20 * time.Millisecond,
		Timeout:       5 * time.Second,
	}
}

func TestWaitForDrain_EmptyQueueQuiesces(t *testing.T) {
	q := newMonitorQueue(t)

	report, err := WaitForDrain(context.Background(), q, queue.KindEmbed, fastMonitorConfig())
	require.NoError(t, err)

	assert.Equal(t, PhaseQuiescent, report.Phase)
	assert.Equal(t, 0, report.Remaining)
	assert.Equal(t, uint64(0), report.Processed)
	assert.GreaterOrEqual(t, report.Waited, 20*time.Millisecond)
}

func TestWaitForDrainSince_WaitsForConsumers(t *testing.T) {
	q := newMonitorQueue(t)
	enqueueEmbedTask(t, q, 1)
	enqueueEmbedTask(t, q, 2)

	ctx := context.Background()
	base, err := q.Stats(ctx)
	require.NoError(t, err)

	// A consumer drains the queue while the monitor watches. The baseline is
	// snapshotted first, so acks landing before the first poll still count.
	go func() {
		for acked := 0; acked < 2; {
			d, err := q.Consume(ctx, queue.KindEmbed)
			if err != nil {
				time.Sleep(time.Millisecond)
				continue
			}
			if q.Ack(ctx, d) == nil {
				acked++
			}
		}
	}()

	report, err := WaitForDrainSince(ctx, q, queue.KindEmbed, base[queue.KindEmbed], fastMonitorConfig())
	require.NoError(t, err)

	assert.Equal(t, PhaseQuiescent, report.Phase)
	assert.Equal(t, uint64(2), report.Processed)
	assert.Equal(t, 0, report.Remaining)
	assert.Equal(t, 0, report.DeadLettered)
}

func TestWaitForDrainSince_TimeoutReportsPartialProgress(t *testing.T) {
	q := newMonitorQueue(t)
	enqueueEmbedTask(t, q, 1)
	enqueueEmbedTask(t, q, 2)

	ctx := context.Background()
	base, err := q.Stats(ctx)
	require.NoError(t, err)

	// One task acked before the wait begins, one left behind.
	d, err := q.Consume(ctx, queue.KindEmbed)
	require.NoError(t, err)
	require.NoError(t, q.Ack(ctx, d))

	report, err := WaitForDrainSince(ctx, q, queue.KindEmbed, base[queue.KindEmbed], MonitorConfig{
		PollInterval:  2 * time.Millisecond,
		ConfirmWindow: 10 * time.Millisecond,
		Timeout:       50 * time.Millisecond,
	})
	require.ErrorIs(t, err, ErrDrainTimeout)

	assert.Equal(t, PhaseTimedOut, report.Phase)
	assert.Equal(t, uint64(1), report.Processed)
	assert.Equal(t, 1, report.Remaining)
}

func TestWaitForDrain_ContextEndsTheWait(t *testing.T) {
	q := newMonitorQueue(t)
	enqueueEmbedTask(t, q, 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	report, err := WaitForDrain(ctx, q, queue.KindEmbed, MonitorConfig{
		PollInterval:  2 * time.Millisecond,
		ConfirmWindow: 10 * time.Millisecond,
		Timeout:       5 * time.Second,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, PhaseTimedOut, report.Phase)
}

func TestWaitForDrain_EmptinessMustHoldTheFullWindow(t *testing.T) {
	q := newMonitorQueue(t)

	// A task arriving inside the confirmation window resets it.
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Enqueue(context.Background(), &queue.Task{
			Kind:        queue.KindEmbed,
			DocumentKey: 9,
			Payload:     queue.Payload{Company: "Acme Corp", ReportYear: 2023},
		})
	}()

	start := time.Now()
	report, err := WaitForDrain(context.Background(), q, queue.KindEmbed, MonitorConfig{
		PollInterval:  2 * time.Millisecond,
		ConfirmWindow: 40 * time.Millisecond,
		Timeout:       80 * time.Millisecond,
	})
	require.ErrorIs(t, err, ErrDrainTimeout)
	assert.Equal(t, PhaseTimedOut, report.Phase)
	assert.Equal(t, 1, report.Remaining)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
