package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/storage"
)

func addTestChunks(t *testing.T, stores *MemoryStores, key core.ID, count int) []*core.Chunk {
	t.Helper()

	chunks := make([]*core.Chunk, count)
	for i := range chunks {
		chunks[i] = &core.Chunk{
			DocumentKey: key,
			Index:       i,
			Page:        i + 1,
			Text:        fmt.Sprintf("chunk %d text", i),
		}
	}
	if _, err := stores.Chunks.AddChunks(context.Background(), chunks...); err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}
	return chunks
}

func TestChunkBasics(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	key := core.DocumentKeyFor("Acme Corp", 2023)

	addTestChunks(t, stores, key, 3)

	chunks, err := stores.Chunks.GetChunks(ctx, key)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	// Ordered by index
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Fatalf("Position %d holds index %d", i, chunk.Index)
		}
		if chunk.Embedded() {
			t.Fatalf("Chunk %d unexpectedly embedded", i)
		}
	}
}

func TestChunkIsolationBetweenDocuments(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	keyA := core.DocumentKeyFor("Acme Corp", 2023)
	keyB := core.DocumentKeyFor("Zenith Ltd", 2023)

	addTestChunks(t, stores, keyA, 4)
	addTestChunks(t, stores, keyB, 2)

	chunksA, err := stores.Chunks.GetChunks(ctx, keyA)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}
	chunksB, err := stores.Chunks.GetChunks(ctx, keyB)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}

	if len(chunksA) != 4 || len(chunksB) != 2 {
		t.Fatalf("Cross-document leak: got %d and %d chunks", len(chunksA), len(chunksB))
	}
}

func TestUpdateChunkVectors(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	key := core.DocumentKeyFor("Acme Corp", 2023)
	chunks := addTestChunks(t, stores, key, 3)

	chunks[0].Vector = []float32{0.1, 0.2, 0.3}
	chunks[1].Vector = []float32{0.4, 0.5, 0.6}
	if err := stores.Chunks.UpdateChunkVectors(ctx, chunks[0], chunks[1]); err != nil {
		t.Fatalf("Failed to update vectors: %v", err)
	}

	stored, err := stores.Chunks.GetChunks(ctx, key)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}

	if !stored[0].Embedded() || !stored[1].Embedded() {
		t.Fatal("Expected first two chunks to be embedded")
	}
	if stored[2].Embedded() {
		t.Fatal("Third chunk should not be embedded")
	}
	if stored[0].EmbeddedAt.IsZero() {
		t.Fatal("Expected EmbeddedAt to be stamped")
	}
	if stored[0].Text != "chunk 0 text" {
		t.Fatalf("Vector update clobbered text: %q", stored[0].Text)
	}

	unembedded, err := stores.Chunks.GetUnembeddedChunks(ctx, key)
	if err != nil {
		t.Fatalf("Failed to get unembedded chunks: %v", err)
	}
	if len(unembedded) != 1 || unembedded[0].Index != 2 {
		t.Fatalf("Expected only chunk 2 unembedded, got %d chunks", len(unembedded))
	}
}

func TestUpdateChunkVectors_NotFound(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	err = stores.Chunks.UpdateChunkVectors(context.Background(), &core.Chunk{
		DocumentKey: core.ID(999),
		Index:       0,
		Text:        "ghost",
		Vector:      []float32{0.1},
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestAddChunks_PreEmbedded(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	key := core.DocumentKeyFor("Acme Corp", 2023)

	// Seed-style write: vector attached up front
	_, err = stores.Chunks.AddChunks(ctx, &core.Chunk{
		DocumentKey: key,
		Index:       0,
		Text:        "pre-embedded chunk",
		Vector:      []float32{0.9, 0.1},
	})
	if err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}

	oracle := NewReadinessOracle(stores.Backend, 0)
	state, err := oracle.Check(ctx, key)
	if err != nil {
		t.Fatalf("Readiness check failed: %v", err)
	}
	if state.EmbeddedChunks != 1 {
		t.Fatalf("Expected embedded index entry, got count %d", state.EmbeddedChunks)
	}
}

func TestAddChunks_Invalid(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	_, err = stores.Chunks.AddChunks(context.Background(), &core.Chunk{
		DocumentKey: 1,
		Index:       0,
		Text:        "",
	})
	if !errors.Is(err, core.ErrEmptyChunkText) {
		t.Fatalf("Expected ErrEmptyChunkText, got %v", err)
	}
}
