package badger

import (
	"context"
	"testing"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/mageshboopath1/live-esg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutScore_OverwriteSemantics(t *testing.T) {
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	ctx := context.Background()

	first := &core.ESGScore{
		Company:    "Acme Corp",
		ReportYear: 2023,
		Overall:    61.5,
		RunID:      "run-1",
		Pillars: []core.PillarScore{
			{Pillar: core.PillarEnvironmental, Score: 60, TotalWeight: 1.0, IndicatorsUsed: []string{"E-GHG-INT"}},
		},
	}
	stored, err := stores.Scores.PutScore(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, core.DocumentKeyFor("Acme Corp", 2023), stored.DocumentKey)
	assert.False(t, stored.ComputedAt.IsZero())

	// A later run overwrites, never merges.
	second := &core.ESGScore{
		Company:    "Acme Corp",
		ReportYear: 2023,
		Overall:    64.0,
		RunID:      "run-2",
	}
	_, err = stores.Scores.PutScore(ctx, second)
	require.NoError(t, err)

	got, err := stores.Scores.GetScore(ctx, stored.DocumentKey)
	require.NoError(t, err)
	assert.Equal(t, 64.0, got.Overall)
	assert.Equal(t, "run-2", got.RunID)
	assert.Empty(t, got.Pillars)
}

func TestGetScore_NotFound(t *testing.T) {
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	_, err = stores.Scores.GetScore(context.Background(), core.ID(404))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPutScore_ProvenanceRoundTrip(t *testing.T) {
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	ctx := context.Background()

	score := &core.ESGScore{
		Company:    "Acme Corp",
		ReportYear: 2023,
		Overall:    65.0,
		RunID:      "b2f6d25a-5d9f-4b2e-9a44-3c1f0a9e77aa",
		Pillars: []core.PillarScore{
			{Pillar: core.PillarEnvironmental, Score: 60, TotalWeight: 0.8, IndicatorsUsed: []string{"E-GHG-INT", "E-REN-PCT"}},
			{Pillar: core.PillarSocial, Score: 70, TotalWeight: 1.0, IndicatorsUsed: []string{"S-INJ-RATE"}},
		},
		Weights: []core.PillarWeight{
			{Pillar: core.PillarEnvironmental, Weight: 0.5},
			{Pillar: core.PillarSocial, Weight: 0.5},
		},
		Contributions: []core.IndicatorContribution{
			{
				Code:         "E-GHG-INT",
				Pillar:       core.PillarEnvironmental,
				RawValue:     "4.2 tCO2e/$M",
				NumericValue: 4.2,
				Normalized:   58.0,
				Weight:       0.5,
				Confidence:   0.9,
				SourcePages:  []int{10, 11},
				SourceChunks: []core.ID{101, 102},
			},
		},
	}

	stored, err := stores.Scores.PutScore(ctx, score)
	require.NoError(t, err)

	got, err := stores.Scores.GetScore(ctx, stored.DocumentKey)
	require.NoError(t, err)

	require.Len(t, got.Pillars, 2)
	assert.Equal(t, score.Pillars, got.Pillars)
	assert.Equal(t, score.Weights, got.Weights)
	require.Len(t, got.Contributions, 1)
	assert.Equal(t, score.Contributions[0], got.Contributions[0])
	assert.Equal(t, score.RunID, got.RunID)
}

func TestListScores_Ordering(t *testing.T) {
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	ctx := context.Background()

	for _, s := range []*core.ESGScore{
		{Company: "Zenith Ltd", ReportYear: 2023, Overall: 50},
		{Company: "Acme Corp", ReportYear: 2024, Overall: 61},
		{Company: "Acme Corp", ReportYear: 2023, Overall: 58},
	} {
		_, err := stores.Scores.PutScore(ctx, s)
		require.NoError(t, err)
	}

	listed, err := stores.Scores.ListScores(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	assert.Equal(t, "Acme Corp", listed[0].Company)
	assert.Equal(t, 2023, listed[0].ReportYear)
	assert.Equal(t, "Acme Corp", listed[1].Company)
	assert.Equal(t, 2024, listed[1].ReportYear)
	assert.Equal(t, "Zenith Ltd", listed[2].Company)
}

func TestPutScore_Invalid(t *testing.T) {
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	_, err = stores.Scores.PutScore(context.Background(), &core.ESGScore{Company: ""})
	assert.ErrorIs(t, err, storage.ErrInvalidRecord)
}
