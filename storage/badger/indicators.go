package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/storage"
)

// IndicatorRepository implements storage.IndicatorRepository for BadgerDB.
type IndicatorRepository struct {
	backend *Backend
}

var _ storage.IndicatorRepository = (*IndicatorRepository)(nil)

// NewIndicatorRepository creates a new IndicatorRepository.
func NewIndicatorRepository(backend *Backend) *IndicatorRepository {
	return &IndicatorRepository{
		backend: backend,
	}
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *IndicatorRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *IndicatorRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutIndicators upserts indicators by (DocumentKey, Code). Redelivered or
// re-run extractions land on the same keys, so replays cannot duplicate rows.
func (r *IndicatorRepository) PutIndicators(ctx context.Context, indicators ...*core.ExtractedIndicator) ([]*core.ExtractedIndicator, error) {
	for _, ind := range indicators {
		if err := core.ValidateExtractedIndicator(ind); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, ind := range indicators {
			if ind.ExtractedAt.IsZero() {
				ind.ExtractedAt = time.Now().UTC()
			}
			key := makeIndicatorKey(ind.DocumentKey, ind.Code)
			if err := tx.Set(key, storage.MarshalIndicator(ind)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return indicators, err
}

// GetIndicators retrieves all indicators for a document. The key layout
// returns them sorted by Code.
func (r *IndicatorRepository) GetIndicators(ctx context.Context, documentKey core.ID) ([]*core.ExtractedIndicator, error) {
	var results []*core.ExtractedIndicator
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialIndicatorKey(documentKey)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var ind *core.ExtractedIndicator
			err := iter.Item().Value(func(val []byte) error {
				var err error
				ind, err = storage.UnmarshalIndicator(val)
				return err
			})
			if err != nil {
				return err
			}
			if ind != nil {
				results = append(results, ind)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteIndicators removes all indicators for a document.
func (r *IndicatorRepository) DeleteIndicators(ctx context.Context, documentKey core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialIndicatorKey(documentKey)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
