package scoring

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onePerPillarCatalog gives each pillar a single full-weight percentage
// indicator, so expected scores can be read straight off the raw values.
func onePerPillarCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := NewCatalog([]core.IndicatorDefinition{
		{Code: "E-A", Pillar: core.PillarEnvironmental, Weight: 1.0, Normalization: core.NormalizationPercentage},
		{Code: "S-B", Pillar: core.PillarSocial, Weight: 1.0, Normalization: core.NormalizationPercentage},
		{Code: "G-C", Pillar: core.PillarGovernance, Weight: 1.0, Normalization: core.NormalizationPercentage},
	})
	require.NoError(t, err)
	return catalog
}

func newTestAggregator(t *testing.T, catalog *Catalog, weights Weights) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(catalog, weights, slog.Default())
	require.NoError(t, err)
	return agg
}

func testDocument() *core.Document {
	return &core.Document{
		Key:        core.DocumentKeyFor("Acme Corp", 2023),
		Company:    "Acme Corp",
		ReportYear: 2023,
	}
}

func numeric(code string, value float64) *core.ExtractedIndicator {
	return &core.ExtractedIndicator{
		DocumentKey:  1,
		Code:         code,
		RawValue:     "reported value",
		NumericValue: value,
		HasNumeric:   true,
		Confidence:   0.9,
	}
}

func TestAggregate_SingleIndicatorPillar(t *testing.T) {
	agg := newTestAggregator(t, onePerPillarCatalog(t), nil)

	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{
		numeric("E-A", 65),
	})
	require.NoError(t, err)

	// One percentage indicator at weight 1.0 passes straight through.
	e, ok := score.Pillar(core.PillarEnvironmental)
	require.True(t, ok)
	assert.Equal(t, 65.0, e.Score)
	assert.Equal(t, 1.0, e.TotalWeight)
	assert.Equal(t, []string{"E-A"}, e.IndicatorsUsed)
}

func TestAggregate_MissingPillarRenormalization(t *testing.T) {
	agg := newTestAggregator(t, onePerPillarCatalog(t), Weights{
		core.PillarEnvironmental: 0.33,
		core.PillarSocial:        0.33,
		core.PillarGovernance:    0.34,
	})

	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{
		numeric("E-A", 60),
		numeric("S-B", 70),
	})
	require.NoError(t, err)

	// G is missing: its 0.34 is dropped and E and S renormalize to 0.5 each,
	// giving exactly (60 + 70) / 2.
	assert.Equal(t, 65.0, score.Overall)
	assert.Len(t, score.Pillars, 2)

	_, ok := score.Pillar(core.PillarGovernance)
	assert.False(t, ok)

	require.Len(t, score.Weights, 2)
	assert.Equal(t, core.PillarWeight{Pillar: core.PillarEnvironmental, Weight: 0.5}, score.Weights[0])
	assert.Equal(t, core.PillarWeight{Pillar: core.PillarSocial, Weight: 0.5}, score.Weights[1])
}

func TestAggregate_AllPillarsPresent(t *testing.T) {
	agg := newTestAggregator(t, onePerPillarCatalog(t), nil)

	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{
		numeric("E-A", 50),
		numeric("S-B", 50),
		numeric("G-C", 50),
	})
	require.NoError(t, err)

	assert.Len(t, score.Pillars, 3)
	assert.InDelta(t, 50.0, score.Overall, 1e-9)

	var weightSum float64
	for _, w := range score.Weights {
		weightSum += w.Weight
	}
	assert.InDelta(t, 1.0, weightSum, 1e-9)
}

func TestAggregate_NoExtractableData(t *testing.T) {
	agg := newTestAggregator(t, onePerPillarCatalog(t), nil)

	_, err := agg.Aggregate(testDocument(), nil)
	assert.ErrorIs(t, err, ErrNoExtractableData)
}

func TestAggregate_ZeroIsAValidScore(t *testing.T) {
	agg := newTestAggregator(t, onePerPillarCatalog(t), nil)

	// A genuine zero must aggregate to zero, not be confused with missing data.
	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{
		numeric("E-A", 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.Overall)

	e, ok := score.Pillar(core.PillarEnvironmental)
	require.True(t, ok)
	assert.Equal(t, 0.0, e.Score)
	assert.Equal(t, 1.0, e.TotalWeight)
}

func TestAggregate_NegativeInverseValueExcluded(t *testing.T) {
	catalog, err := NewCatalog([]core.IndicatorDefinition{
		{Code: "S-INJ-RATE", Pillar: core.PillarSocial, Weight: 0.30, Normalization: core.NormalizationInverseCount, Ceiling: 10},
		{Code: "S-DIV-WF", Pillar: core.PillarSocial, Weight: 0.25, Normalization: core.NormalizationPercentage},
	})
	require.NoError(t, err)
	agg := newTestAggregator(t, catalog, nil)

	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{
		numeric("S-INJ-RATE", -2), // data error, must be excluded, not clamped
		numeric("S-DIV-WF", 50),
	})
	require.NoError(t, err)

	s, ok := score.Pillar(core.PillarSocial)
	require.True(t, ok)
	// The rejected indicator's weight leaves the denominator entirely.
	assert.InDelta(t, 0.25, s.TotalWeight, 1e-9)
	assert.InDelta(t, 50.0, s.Score, 1e-9)
	assert.Equal(t, []string{"S-DIV-WF"}, s.IndicatorsUsed)

	for _, c := range score.Contributions {
		assert.NotEqual(t, "S-INJ-RATE", c.Code)
	}
}

func TestAggregate_UnresolvedCodeExcluded(t *testing.T) {
	agg := newTestAggregator(t, onePerPillarCatalog(t), nil)

	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{
		numeric("X-NOT-IN-CATALOG", 90),
		numeric("E-A", 40),
	})
	require.NoError(t, err)

	// The unresolved code is logged and dropped; the run completes.
	assert.Equal(t, 40.0, score.Overall)
	assert.Len(t, score.Contributions, 1)
}

func TestAggregate_NonNumericExcluded(t *testing.T) {
	agg := newTestAggregator(t, onePerPillarCatalog(t), nil)

	qualitative := &core.ExtractedIndicator{
		DocumentKey: 1,
		Code:        "S-B",
		RawValue:    "policy in place, no figure disclosed",
		HasNumeric:  false,
		Confidence:  0.7,
	}
	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{
		qualitative,
		numeric("E-A", 80),
	})
	require.NoError(t, err)

	_, ok := score.Pillar(core.PillarSocial)
	assert.False(t, ok)
	assert.Equal(t, 80.0, score.Overall)
}

func TestAggregate_WeightedAverageWithinPillar(t *testing.T) {
	catalog, err := NewCatalog([]core.IndicatorDefinition{
		{Code: "G-BRD-IND", Pillar: core.PillarGovernance, Weight: 0.6, Normalization: core.NormalizationPercentage},
		{Code: "G-ETH-INC", Pillar: core.PillarGovernance, Weight: 0.2, Normalization: core.NormalizationInverseCount, Ceiling: 20},
	})
	require.NoError(t, err)
	agg := newTestAggregator(t, catalog, nil)

	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{
		numeric("G-BRD-IND", 80), // normalized 80
		numeric("G-ETH-INC", 5),  // normalized 100*(1-5/20) = 75
	})
	require.NoError(t, err)

	g, ok := score.Pillar(core.PillarGovernance)
	require.True(t, ok)
	expected := (80*0.6 + 75*0.2) / 0.8
	assert.InDelta(t, expected, g.Score, 1e-9)
	assert.InDelta(t, 0.8, g.TotalWeight, 1e-9)
}

func TestAggregate_ProvenanceRetained(t *testing.T) {
	agg := newTestAggregator(t, onePerPillarCatalog(t), nil)

	ind := &core.ExtractedIndicator{
		DocumentKey:  1,
		Code:         "E-A",
		RawValue:     "62% of consumption",
		NumericValue: 62,
		HasNumeric:   true,
		Confidence:   0.84,
		SourcePages:  []int{14, 15},
		SourceChunks: []core.ID{101, 105},
	}
	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{ind})
	require.NoError(t, err)

	require.Len(t, score.Contributions, 1)
	c := score.Contributions[0]
	assert.Equal(t, "E-A", c.Code)
	assert.Equal(t, core.PillarEnvironmental, c.Pillar)
	assert.Equal(t, "62% of consumption", c.RawValue)
	assert.Equal(t, 62.0, c.NumericValue)
	assert.Equal(t, 62.0, c.Normalized)
	assert.Equal(t, 1.0, c.Weight)
	assert.Equal(t, 0.84, c.Confidence)
	assert.Equal(t, []int{14, 15}, c.SourcePages)
	assert.Equal(t, []core.ID{101, 105}, c.SourceChunks)
}

func TestAggregate_ContributionsSortedByCode(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	agg := newTestAggregator(t, catalog, nil)

	score, err := agg.Aggregate(testDocument(), []*core.ExtractedIndicator{
		numeric("S-INJ-RATE", 1.2),
		numeric("G-BRD-IND", 85),
		numeric("E-GHG-INT", 120),
		numeric("E-ENE-REN", 40),
	})
	require.NoError(t, err)

	codes := make([]string, len(score.Contributions))
	for i, c := range score.Contributions {
		codes[i] = c.Code
	}
	assert.True(t, slices.IsSorted(codes), "contributions must be sorted by code, got %v", codes)
}

func TestAggregate_Deterministic(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	agg := newTestAggregator(t, catalog, nil)

	indicators := []*core.ExtractedIndicator{
		numeric("E-GHG-INT", 120),
		numeric("E-ENE-REN", 40),
		numeric("E-WST-REC", 75),
		numeric("S-INJ-RATE", 1.2),
		numeric("S-DIV-WF", 44),
		numeric("G-BRD-IND", 85),
		numeric("G-ETH-INC", 2),
		numeric("G-AUD-DAYS", 90),
	}

	first, err := agg.Aggregate(testDocument(), indicators)
	require.NoError(t, err)

	// Same rows in reverse order: input order must not leak into the result.
	reversed := slices.Clone(indicators)
	slices.Reverse(reversed)
	second, err := agg.Aggregate(testDocument(), reversed)
	require.NoError(t, err)

	assert.Equal(t, first.Pillars, second.Pillars)
	assert.Equal(t, first.Overall, second.Overall)
	assert.Equal(t, first.Weights, second.Weights)
	assert.Equal(t, first.Contributions, second.Contributions)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestNewAggregator_Invalid(t *testing.T) {
	catalog := onePerPillarCatalog(t)

	_, err := NewAggregator(nil, nil, slog.Default())
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = NewAggregator(catalog, Weights{core.PillarEnvironmental: 0.5}, slog.Default())
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = NewAggregator(catalog, Weights{
		core.PillarEnvironmental: 0.5,
		core.PillarSocial:        -0.1,
		core.PillarGovernance:    0.5,
	}, slog.Default())
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestAggregate_NilDocument(t *testing.T) {
	agg := newTestAggregator(t, onePerPillarCatalog(t), nil)

	_, err := agg.Aggregate(nil, nil)
	assert.ErrorIs(t, err, ErrNilDocument)
}
