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


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/storage"
)

const defaultQuietWindow = 30 * time.Second

// ReadinessOracle implements storage.ReadinessOracle over the embedded-chunk
// index.
//
// Every Check runs inside a single transaction, so the answer reflects one
// consistent snapshot of the store, never a cache. The primary signal is the
// expected-count comparison: a document whose ChunkCount was recorded at
// chunking time is ready once that many chunks carry vectors. When ChunkCount
// is unknown (zero), the oracle falls back to a quiescence heuristic: every
// currently stored chunk is embedded and no vector has been written for at
// least the quiet window. A false "not ready" only costs one retry cycle, so
// ambiguous states always resolve to not ready.
type ReadinessOracle struct {
	backend     *Backend
	quietWindow time.Duration
	now         func() time.Time
}

var _ storage.ReadinessOracle = (*ReadinessOracle)(nil)

// NewReadinessOracle creates a ReadinessOracle.
// A non-positive quietWindow selects the 30s default.
func NewReadinessOracle(backend *Backend, quietWindow time.Duration) *ReadinessOracle {
	if quietWindow <= 0 {
		quietWindow = defaultQuietWindow
	}
	return &ReadinessOracle{
		backend:     backend,
		quietWindow: quietWindow,
		now:         time.Now,
	}
}

// Check reports a document's embedding completeness.
// An unknown document is reported as not ready rather than an error; the
// caller's retry budget decides how long to keep asking.
func (o *ReadinessOracle) Check(ctx context.Context, documentKey core.ID) (core.Readiness, error) {
	var state core.Readiness

	err := o.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, makeDocumentKey(documentKey))
		if err != nil {
			return err
		}
		if doc != nil {
			state.ExpectedChunks = doc.ChunkCount
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkEmbeddedKey(documentKey)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var at time.Time
			err := iter.Item().Value(func(val []byte) error {
				var err error
				at, err = storage.UnmarshalTime(val)
				return err
			})
			if err != nil {
				iter.Close()
				return err
			}
			state.EmbeddedChunks++
			if at.After(state.LastVectorAt) {
				state.LastVectorAt = at
			}
		}
		iter.Close()

		if doc == nil {
			return nil
		}

		if state.ExpectedChunks > 0 {
			state.Ready = state.EmbeddedChunks >= state.ExpectedChunks
			return nil
		}

		// Expected count unknown; count stored chunks and require quiescence.
		total := 0
		copts := badger.DefaultIteratorOptions
		copts.Prefix = makePartialChunkKey(documentKey)
		copts.PrefetchValues = false
		citer := tx.NewIterator(copts)
		for citer.Rewind(); citer.Valid(); citer.Next() {
			total++
		}
		citer.Close()

		state.Ready = total > 0 &&
			state.EmbeddedChunks >= total &&
			o.now().Sub(state.LastVectorAt) >= o.quietWindow
		return nil
	}, false)
	if err != nil {
		return core.Readiness{}, err
	}

	return state, nil
}
