package worker

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/queue"
	"github.com/mageshboopath1/live-esg/queue/badgerq"
	badgerstore "github.com/mageshboopath1/live-esg/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ackHandler acks every delivery and records the document keys it saw.
type ackHandler struct {
	kind  queue.Kind
	queue queue.Queue
	delay time.Duration

	mu   sync.Mutex
	keys []core.ID
}

func (h *ackHandler) Kind() queue.Kind { return h.kind }

func (h *ackHandler) Handle(ctx context.Context, d *queue.Delivery) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	h.keys = append(h.keys, d.Task.DocumentKey)
	h.mu.Unlock()
	return h.queue.Ack(ctx, d)
}

func (h *ackHandler) seen() []core.ID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.keys)
}

func newWorkerQueue(t *testing.T) *badgerq.Queue {
	t.Helper()

	backend, err := badgerstore.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	q, err := badgerq.New(backend, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q
}

func enqueueTask(t *testing.T, q queue.Queue, kind queue.Kind, key core.ID) {
	t.Helper()
	require.NoError(t, q.Enqueue(context.Background(), &queue.Task{
		Kind:        kind,
		DocumentKey: key,
		Payload:     queue.Payload{Company: "Acme Corp", ReportYear: 2023},
	}))
}

func TestWorker_ProcessesQueuedTasks(t *testing.T) {
	q := newWorkerQueue(t)
	handler := &ackHandler{kind: queue.KindEmbed, queue: q}
	for i := 1; i <= 3; i++ {
		enqueueTask(t, q, queue.KindEmbed, core.ID(i))
	}

	w, err := New(q, handler, WithPollInterval(5*time.Millisecond), WithPoolSize(2))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.Eventually(t, func() bool {
		depth, depthErr := q.Depth(context.Background(), queue.KindEmbed)
		return depthErr == nil && depth == 0
	}, 5*time.Second, 10*time.Millisecond)

	w.Stop()

	assert.ElementsMatch(t, []core.ID{1, 2, 3}, handler.seen())

	stats, err := q.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats[queue.KindEmbed].Acked)
}

func TestWorker_StopWaitsForInflightDeliveries(t *testing.T) {
	q := newWorkerQueue(t)
	handler := &ackHandler{kind: queue.KindExtract, queue: q, delay: 100 * time.Millisecond}
	enqueueTask(t, q, queue.KindExtract, 7)

	w, err := New(q, handler, WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())

	// Wait for the task to be picked up, then stop while the handler runs.
	require.Eventually(t, func() bool {
		stats, statsErr := q.Stats(context.Background())
		return statsErr == nil && stats[queue.KindExtract].Ready == 0
	}, 5*time.Second, 5*time.Millisecond)

	w.Stop()

	stats, err := q.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats[queue.KindExtract].Acked)
	assert.Len(t, handler.seen(), 1)
}

func TestWorker_StartTwiceFails(t *testing.T) {
	q := newWorkerQueue(t)
	w, err := New(q, &ackHandler{kind: queue.KindEmbed, queue: q})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start())
	assert.Error(t, w.Start())
}

func TestNew_RequiredDependencies(t *testing.T) {
	q := newWorkerQueue(t)

	_, err := New(nil, &ackHandler{kind: queue.KindEmbed, queue: q})
	assert.ErrorIs(t, err, ErrQueueRequired)

	_, err = New(q, nil)
	assert.ErrorIs(t, err, ErrHandlerRequired)
}
