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

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mageshboopath1/live-esg/core"
)

// Weights maps each pillar to its configured share of the overall score.
type Weights map[core.Pillar]float64

// DefaultWeights returns the default pillar weighting.
func DefaultWeights() Weights {
	return Weights{
		core.PillarEnvironmental: 0.33,
		core.PillarSocial:        0.33,
		core.PillarGovernance:    0.34,
	}
}

// Validate checks that every pillar has a positive weight. The weights need
// not sum to 1; the aggregator renormalizes over present pillars anyway.
func (w Weights) Validate() error {
	for _, pillar := range core.Pillars() {
		weight, ok := w[pillar]
		if !ok {
			return fmt.Errorf("%w: missing pillar %s", ErrInvalidWeights, pillar)
		}
		if weight <= 0 {
			return fmt.Errorf("%w: pillar %s weight %v must be positive", ErrInvalidWeights, pillar, weight)
		}
	}
	return nil
}

// Aggregator turns a document's extracted indicators into pillar scores and
// an overall score.
//
// Aggregation is deterministic: indicators are visited in catalog code order,
// never in input or map order, so identical inputs produce bit-identical
// scores across runs. Only the run ID and timestamp differ between runs.
type Aggregator struct {
	catalog *Catalog
	weights Weights
	logger  *slog.Logger
}

// NewAggregator creates an Aggregator. Nil weights select the defaults.
func NewAggregator(catalog *Catalog, weights Weights, logger *slog.Logger) (*Aggregator, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{
		catalog: catalog,
		weights: weights,
		logger:  logger,
	}, nil
}

// Aggregate computes the score for one document from its extracted
// indicators.
//
// An indicator is excluded, never defaulted to zero, when its code has no
// definition, it carries no numeric reading, or its raw value is outside the
// indicator's domain. A pillar with no usable indicators is missing, and its
// configured weight is redistributed proportionally over the present pillars.
// When all three pillars are missing the run fails with ErrNoExtractableData
// instead of fabricating a zero score.
func (a *Aggregator) Aggregate(doc *core.Document, extracted []*core.ExtractedIndicator) (*core.ESGScore, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	byCode := make(map[string]*core.ExtractedIndicator, len(extracted))
	for _, ind := range extracted {
		if _, ok := a.catalog.Lookup(ind.Code); !ok {
			a.logger.Error("extracted indicator has no definition",
				"code", ind.Code,
				"document_key", doc.Key)
			continue
		}
		byCode[ind.Code] = ind
	}

	var (
		pillars       []core.PillarScore
		contributions []core.IndicatorContribution
	)
	for _, pillar := range core.Pillars() {
		var (
			weightedSum float64
			weightTotal float64
			used        []string
		)
		for _, def := range a.catalog.ByPillar(pillar) {
			ind, ok := byCode[def.Code]
			if !ok {
				continue
			}
			if !ind.HasNumeric {
				a.logger.Warn("indicator has no numeric reading, excluded",
					"code", def.Code,
					"raw_value", ind.RawValue,
					"document_key", doc.Key)
				continue
			}
			normalized, err := Normalize(def, ind.NumericValue)
			if err != nil {
				a.logger.Error("indicator value rejected",
					"code", def.Code,
					"raw_value", ind.RawValue,
					"document_key", doc.Key,
					"error", err)
				continue
			}

			weightedSum += normalized * def.Weight
			weightTotal += def.Weight
			used = append(used, def.Code)
			contributions = append(contributions, core.IndicatorContribution{
				Code:         def.Code,
				Pillar:       pillar,
				RawValue:     ind.RawValue,
				NumericValue: ind.NumericValue,
				Normalized:   normalized,
				Weight:       def.Weight,
				Confidence:   ind.Confidence,
				SourcePages:  slices.Clone(ind.SourcePages),
				SourceChunks: slices.Clone(ind.SourceChunks),
			})
		}

		if weightTotal > 0 {
			pillars = append(pillars, core.PillarScore{
				Pillar:         pillar,
				Score:          weightedSum / weightTotal,
				TotalWeight:    weightTotal,
				IndicatorsUsed: used,
			})
		}
	}

	if len(pillars) == 0 {
		return nil, fmt.Errorf("%w: %s %d", ErrNoExtractableData, doc.Company, doc.ReportYear)
	}

	var presentTotal float64
	for _, ps := range pillars {
		presentTotal += a.weights[ps.Pillar]
	}

	var overall float64
	weights := make([]core.PillarWeight, 0, len(pillars))
	for _, ps := range pillars {
		adjusted := a.weights[ps.Pillar] / presentTotal
		overall += ps.Score * adjusted
		weights = append(weights, core.PillarWeight{Pillar: ps.Pillar, Weight: adjusted})
	}

	slices.SortFunc(contributions, func(x, y core.IndicatorContribution) int {
		return cmp.Compare(x.Code, y.Code)
	})

	return &core.ESGScore{
		Company:       doc.Company,
		ReportYear:    doc.ReportYear,
		DocumentKey:   doc.Key,
		Pillars:       pillars,
		Overall:       overall,
		Weights:       weights,
		Contributions: contributions,
		RunID:         uuid.NewString(),
		ComputedAt:    time.Now().UTC(),
	}, nil
}
