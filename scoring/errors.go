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


package scoring

import "errors"

var (
	// ErrNoExtractableData indicates all three pillars were missing, so no
	// score can be computed. Zero is a valid score; this condition must never
	// be collapsed into one.
	ErrNoExtractableData = errors.New("no extractable data for any pillar")

	// ErrInvalidRawValue indicates a raw value outside an indicator's domain,
	// such as a negative count for an inverse kind.
	ErrInvalidRawValue = errors.New("invalid raw value")

	// ErrDuplicateCode indicates a catalog defined the same indicator code twice.
	ErrDuplicateCode = errors.New("duplicate indicator code")

	// ErrEmptyCatalog indicates a catalog with no indicator definitions.
	ErrEmptyCatalog = errors.New("catalog has no indicator definitions")

	// ErrInvalidWeights indicates a pillar weight configuration that cannot
	// be used for an overall-score combination.
	ErrInvalidWeights = errors.New("invalid pillar weights")

	// ErrNilDocument indicates Aggregate was called without a document.
	ErrNilDocument = errors.New("document is nil")
)
