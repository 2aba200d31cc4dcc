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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidIndicator indicates an ExtractedIndicator failed validation.
	ErrInvalidIndicator = errors.New("invalid extracted indicator")

	// ErrInvalidDefinition indicates an IndicatorDefinition failed validation.
	ErrInvalidDefinition = errors.New("invalid indicator definition")

	// ErrEmptyCompany indicates the Company field is empty.
	ErrEmptyCompany = errors.New("company cannot be empty")

	// ErrInvalidReportYear indicates a report year outside the accepted range.
	ErrInvalidReportYear = errors.New("report year out of range")

	// ErrEmptyChunkText indicates a chunk with no text content.
	ErrEmptyChunkText = errors.New("chunk text cannot be empty")

	// ErrEmptyIndicatorCode indicates the indicator Code field is empty.
	ErrEmptyIndicatorCode = errors.New("indicator code cannot be empty")

	// ErrInvalidPillar indicates a pillar outside {E, S, G}.
	ErrInvalidPillar = errors.New("invalid pillar")

	// ErrInvalidNormalization indicates an unknown normalization kind.
	ErrInvalidNormalization = errors.New("invalid normalization kind")

	// ErrInvalidWeight indicates an indicator weight outside (0, 1].
	ErrInvalidWeight = errors.New("indicator weight must be in (0, 1]")

	// ErrInvalidConfidence indicates a confidence outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be in [0, 1]")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
