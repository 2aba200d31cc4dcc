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

// MemoryStores bundles in-memory repositories over one shared backend for
// testing. Close the bundle when done.
type MemoryStores struct {
	Documents  *DocumentRepository
	Chunks     *ChunkRepository
	Indicators *IndicatorRepository
	Scores     *ScoreRepository
	Backend    *Backend
}

// NewMemoryStores creates in-memory repositories for testing.
func NewMemoryStores() (*MemoryStores, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	return &MemoryStores{
		Documents:  NewDocumentRepository(backend),
		Chunks:     NewChunkRepository(backend),
		Indicators: NewIndicatorRepository(backend),
		Scores:     NewScoreRepository(backend),
		Backend:    backend,
	}, nil
}

// Close closes the repositories and the shared backend.
func (s *MemoryStores) Close() {
	s.Documents.Close()
	s.Chunks.Close()
	s.Indicators.Close()
	s.Scores.Close()
	s.Backend.Close()
}
