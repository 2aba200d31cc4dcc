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

import (
	"fmt"
	"time"
)

// Report years accepted by ingestion. Disclosure reporting in scope starts
// well after 1990, and a year more than one ahead of wall-clock is a typo.
const minReportYear = 1990

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Company must not be empty
//   - ReportYear must be plausible (1990 .. next year)
//
// NOT validated (populated by processors):
//   - ChunkCount (0 is valid until chunking records it)
//   - Key (derived, 0 only for zero-value documents)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Company == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyCompany)
	}

	if err := ValidateReportYear(doc.ReportYear); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - DocumentKey must be set
//   - Text must not be empty
//
// NOT validated (populated by processors):
//   - Vector and EmbeddedAt (empty until the embedding stage runs)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.DocumentKey == 0 {
		return fmt.Errorf("%w: document key is zero", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	return nil
}

// ValidateExtractedIndicator validates an ExtractedIndicator according to
// domain rules.
//
// Validation rules:
//   - DocumentKey must be set
//   - Code must not be empty
//   - Confidence must lie in [0, 1]
//
// Whether the code resolves to a definition is the catalog's concern, checked
// at aggregation time, not here.
func ValidateExtractedIndicator(ind *ExtractedIndicator) error {
	if ind == nil {
		return fmt.Errorf("%w: indicator is nil", ErrInvalidIndicator)
	}

	if ind.DocumentKey == 0 {
		return fmt.Errorf("%w: document key is zero", ErrInvalidIndicator)
	}

	if ind.Code == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIndicator, ErrEmptyIndicatorCode)
	}

	if !IsValidConfidence(ind.Confidence) {
		return fmt.Errorf("%w: %w: value %v", ErrInvalidIndicator, ErrInvalidConfidence, ind.Confidence)
	}

	return nil
}

// ValidateIndicatorDefinition validates an IndicatorDefinition according to
// domain rules.
//
// Validation rules:
//   - Code must not be empty
//   - Pillar must be one of E, S, G
//   - Weight must lie in (0, 1]
//   - Normalization must be a known kind
//   - Inverse kinds require a positive Ceiling
func ValidateIndicatorDefinition(def *IndicatorDefinition) error {
	if def == nil {
		return fmt.Errorf("%w: definition is nil", ErrInvalidDefinition)
	}

	if def.Code == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, ErrEmptyIndicatorCode)
	}

	if err := ValidatePillar(def.Pillar); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	if def.Weight <= 0 || def.Weight > 1 {
		return fmt.Errorf("%w: %w: value %v", ErrInvalidDefinition, ErrInvalidWeight, def.Weight)
	}

	if err := ValidateNormalizationKind(def.Normalization); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}

	if def.Normalization != NormalizationPercentage && def.Ceiling <= 0 {
		return fmt.Errorf("%w: %s requires a positive ceiling", ErrInvalidDefinition, def.Normalization)
	}

	return nil
}

// ValidatePillar validates that a Pillar has a valid value.
func ValidatePillar(p Pillar) error {
	switch p {
	case PillarEnvironmental, PillarSocial, PillarGovernance:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidPillar, string(p))
}

// ValidateNormalizationKind validates that a NormalizationKind has a valid value.
func ValidateNormalizationKind(kind NormalizationKind) error {
	switch kind {
	case NormalizationPercentage, NormalizationInverseIntensity,
		NormalizationInverseCount, NormalizationInverseDays:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidNormalization, string(kind))
}

// ValidateReportYear checks that a report year is plausible.
func ValidateReportYear(year int) error {
	if year < minReportYear || year > time.Now().Year()+1 {
		return fmt.Errorf("%w: value %d", ErrInvalidReportYear, year)
	}
	return nil
}

// IsValidConfidence checks if a confidence value lies in [0, 1].
func IsValidConfidence(c float64) bool {
	return c >= 0 && c <= 1
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
