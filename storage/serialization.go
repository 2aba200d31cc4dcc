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


package storage

import (
	"time"

	"github.com/mageshboopath1/live-esg/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalTime serializes a timestamp to bytes.
func MarshalTime(t time.Time) []byte {
	buf := make([]byte, core.TimeMUS.Size(t))
	core.TimeMUS.Marshal(t, buf)
	return buf
}

// UnmarshalTime deserializes a timestamp from bytes.
func UnmarshalTime(data []byte) (time.Time, error) {
	t, _, err := core.TimeMUS.Unmarshal(data)
	return t, err
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalIndicator serializes an ExtractedIndicator to bytes.
func MarshalIndicator(ind *core.ExtractedIndicator) []byte {
	buf := make([]byte, core.ExtractedIndicatorMUS.Size(*ind))
	core.ExtractedIndicatorMUS.Marshal(*ind, buf)
	return buf
}

// UnmarshalIndicator deserializes an ExtractedIndicator from bytes.
func UnmarshalIndicator(data []byte) (*core.ExtractedIndicator, error) {
	ind, _, err := core.ExtractedIndicatorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &ind, nil
}

// MarshalScore serializes an ESGScore to bytes.
func MarshalScore(score *core.ESGScore) []byte {
	buf := make([]byte, core.ESGScoreMUS.Size(*score))
	core.ESGScoreMUS.Marshal(*score, buf)
	return buf
}

// UnmarshalScore deserializes an ESGScore from bytes.
func UnmarshalScore(data []byte) (*core.ESGScore, error) {
	score, _, err := core.ESGScoreMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &score, nil
}
