package badger

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/storage"
)

// ScoreRepository implements storage.ScoreRepository for BadgerDB.
type ScoreRepository struct {
	backend *Backend
}

var _ storage.ScoreRepository = (*ScoreRepository)(nil)

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(backend *Backend) *ScoreRepository {
	return &ScoreRepository{
		backend: backend,
	}
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *ScoreRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ScoreRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutScore writes the score for (Company, ReportYear). Last writer wins at
// that granularity; runs are distinguished by RunID, not versioned here.
func (r *ScoreRepository) PutScore(ctx context.Context, score *core.ESGScore) (*core.ESGScore, error) {
	if score == nil {
		return nil, fmt.Errorf("%w: score is nil", storage.ErrInvalidRecord)
	}
	if score.Company == "" {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidRecord, core.ErrEmptyCompany)
	}

	if score.DocumentKey == 0 {
		score.DocumentKey = core.DocumentKeyFor(score.Company, score.ReportYear)
	}
	if score.ComputedAt.IsZero() {
		score.ComputedAt = time.Now().UTC()
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeScoreKey(score.DocumentKey)
		if err := tx.Set(key, storage.MarshalScore(score)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return score, err
}

// GetScore retrieves the score for a document key.
func (r *ScoreRepository) GetScore(ctx context.Context, documentKey core.ID) (*core.ESGScore, error) {
	var result *core.ESGScore
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeScoreKey(documentKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalScore(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// ListScores retrieves all scores, ordered by (Company, ReportYear).
func (r *ScoreRepository) ListScores(ctx context.Context) ([]*core.ESGScore, error) {
	var results []*core.ESGScore
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(scorePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var score *core.ESGScore
			err := iter.Item().Value(func(val []byte) error {
				var err error
				score, err = storage.UnmarshalScore(val)
				return err
			})
			if err != nil {
				return err
			}
			if score != nil {
				results = append(results, score)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.ESGScore) int {
		if c := cmp.Compare(a.Company, b.Company); c != 0 {
			return c
		}
		return cmp.Compare(a.ReportYear, b.ReportYear)
	})

	return results, nil
}
