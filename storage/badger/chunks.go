package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{
		backend: backend,
	}
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks adds one or more chunks to storage.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.DocumentKey, chunk.Index)
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			// Chunks written with a vector already attached (seed data) go
			// straight into the embedded index.
			if chunk.Embedded() {
				if chunk.EmbeddedAt.IsZero() {
					chunk.EmbeddedAt = time.Now().UTC()
				}
				embKey := makeChunkEmbeddedKey(chunk.DocumentKey, chunk.Index)
				if err := tx.Set(embKey, storage.MarshalTime(chunk.EmbeddedAt)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// UpdateChunkVectors writes the vectors carried on the given chunks and
// maintains the embedded-chunk index the readiness oracle counts.
func (r *ChunkRepository) UpdateChunkVectors(ctx context.Context, chunks ...*core.Chunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.DocumentKey, chunk.Index)

			old, err := readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			old.Vector = chunk.Vector
			if chunk.EmbeddedAt.IsZero() {
				old.EmbeddedAt = time.Now().UTC()
			} else {
				old.EmbeddedAt = chunk.EmbeddedAt
			}
			chunk.EmbeddedAt = old.EmbeddedAt

			if err := tx.Set(key, storage.MarshalChunk(old)); err != nil {
				return err
			}

			embKey := makeChunkEmbeddedKey(chunk.DocumentKey, chunk.Index)
			if err := tx.Set(embKey, storage.MarshalTime(old.EmbeddedAt)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunks retrieves all chunks for a document, ordered by Index.
func (r *ChunkRepository) GetChunks(ctx context.Context, documentKey core.ID) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(documentKey)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetUnembeddedChunks retrieves the document's chunks without vectors, ordered by Index.
func (r *ChunkRepository) GetUnembeddedChunks(ctx context.Context, documentKey core.ID) ([]*core.Chunk, error) {
	chunks, err := r.GetChunks(ctx, documentKey)
	if err != nil {
		return nil, err
	}

	var results []*core.Chunk
	for _, chunk := range chunks {
		if !chunk.Embedded() {
			results = append(results, chunk)
		}
	}
	return results, nil
}

// DeleteChunks removes all chunks for a document along with their
// embedded-index entries.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, documentKey core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range [][]byte{
			makePartialChunkKey(documentKey),
			makePartialChunkEmbeddedKey(documentKey),
		} {
			// Collect first; deleting while an iterator is open is not allowed.
			var keys [][]byte
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			iter.Close()

			for _, key := range keys {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// readChunk reads a chunk from the transaction.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
