package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fixtureScores returns two hand-built scores in deliberately unsorted order.
// Globex never disclosed governance, so its G cells must come out blank.
func fixtureScores() []*core.ESGScore {
	return []*core.ESGScore{
		{
			Company:     "Globex",
			ReportYear:  2022,
			DocumentKey: 2,
			Pillars: []core.PillarScore{
				{Pillar: core.PillarEnvironmental, Score: 60.5, TotalWeight: 1.5, IndicatorsUsed: []string{"E-WST-REC"}},
				{Pillar: core.PillarSocial, Score: 40, TotalWeight: 1, IndicatorsUsed: []string{"S-DIV-WF"}},
			},
			Overall: 52.3,
			Weights: []core.PillarWeight{
				{Pillar: core.PillarEnvironmental, Weight: 0.6},
				{Pillar: core.PillarSocial, Weight: 0.4},
			},
			Contributions: []core.IndicatorContribution{
				{
					Code: "E-WST-REC", Pillar: core.PillarEnvironmental,
					RawValue: "78% diverted", NumericValue: 78, Normalized: 78,
					Weight: 1.5, Confidence: 0.8,
					SourcePages: []int{31}, SourceChunks: []core.ID{7},
				},
			},
			RunID:      "run-globex",
			ComputedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			Company:     "Acme Corp",
			ReportYear:  2023,
			DocumentKey: 1,
			Pillars: []core.PillarScore{
				{Pillar: core.PillarEnvironmental, Score: 70.5, TotalWeight: 1.5, IndicatorsUsed: []string{"E-GHG-INT"}},
				{Pillar: core.PillarSocial, Score: 55, TotalWeight: 1.2, IndicatorsUsed: []string{"S-INJ-RATE"}},
				{Pillar: core.PillarGovernance, Score: 62, TotalWeight: 1, IndicatorsUsed: []string{"G-BRD-IND"}},
			},
			Overall: 63.9,
			Weights: []core.PillarWeight{
				{Pillar: core.PillarEnvironmental, Weight: 0.4},
				{Pillar: core.PillarSocial, Weight: 0.35},
				{Pillar: core.PillarGovernance, Weight: 0.25},
			},
			Contributions: []core.IndicatorContribution{
				{
					Code: "E-GHG-INT", Pillar: core.PillarEnvironmental,
					RawValue: "412 tCO2e/$M revenue", NumericValue: 412, Normalized: 58.8,
					Weight: 1.5, Confidence: 0.9,
					SourcePages: []int{12, 14}, SourceChunks: []core.ID{3, 4},
				},
				{
					Code: "S-INJ-RATE", Pillar: core.PillarSocial,
					RawValue: "0.8 per 200k hours", NumericValue: 0.8, Normalized: 84,
					Weight: 1.2, Confidence: 0.85,
					SourcePages: []int{40}, SourceChunks: []core.ID{11},
				},
			},
			RunID:      "run-acme",
			ComputedAt: time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC),
		},
	}
}

func TestBuildWorkbook(t *testing.T) {
	f, err := BuildWorkbook(fixtureScores())
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer reopened.Close()

	assert.ElementsMatch(t, []string{ScoresSheet, ProvenanceSheet}, reopened.GetSheetList())

	rows, err := reopened.GetRows(ScoresSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Company", "Year",
		"Environmental", "Social", "Governance", "Overall",
		"E Weight", "S Weight", "G Weight",
		"Indicators", "Computed At",
	}, rows[0])

	// Sorted by company, so Acme Corp leads despite input order.
	assert.Equal(t, []string{
		"Acme Corp", "2023",
		"70.5", "55", "62", "63.9",
		"0.4", "0.35", "0.25",
		"2", "2026-03-01T10:05:00Z",
	}, rows[1])

	// Globex has no governance: blank score and weight cells, not zeros.
	assert.Equal(t, []string{
		"Globex", "2022",
		"60.5", "40", "", "52.3",
		"0.6", "0.4", "",
		"1", "2026-03-01T10:00:00Z",
	}, rows[2])
}

func TestBuildWorkbook_ProvenanceSheet(t *testing.T) {
	f, err := BuildWorkbook(fixtureScores())
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.GetRows(ProvenanceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{
		"Company", "Year", "Code", "Pillar",
		"Raw Value", "Numeric", "Normalized", "Weight", "Confidence",
		"Pages", "Chunks",
	}, rows[0])

	assert.Equal(t, []string{
		"Acme Corp", "2023", "E-GHG-INT", "E",
		"412 tCO2e/$M revenue", "412", "58.8", "1.5", "0.9",
		"12, 14", "3, 4",
	}, rows[1])
	assert.Equal(t, []string{
		"Acme Corp", "2023", "S-INJ-RATE", "S",
		"0.8 per 200k hours", "0.8", "84", "1.2", "0.85",
		"40", "11",
	}, rows[2])
	assert.Equal(t, "Globex", rows[3][0])
	assert.Equal(t, "E-WST-REC", rows[3][2])
}

func TestBuildWorkbook_NoScores(t *testing.T) {
	f, err := BuildWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ScoresSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	provRows, err := f.GetRows(ProvenanceSheet)
	require.NoError(t, err)
	require.Len(t, provRows, 1)
}

func TestWriteWorkbook_SavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	require.NoError(t, WriteWorkbook(path, fixtureScores()))

	reopened, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.GetRows(ScoresSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
