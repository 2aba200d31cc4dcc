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


package report

import (
	"fmt"
	"io"
	"time"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	ScoresSheet     = "Scores"
	ProvenanceSheet = "Provenance"
)

var scoresHeader = []any{
	"Company", "Year",
	"Environmental", "Social", "Governance", "Overall",
	"E Weight", "S Weight", "G Weight",
	"Indicators", "Computed At",
}

var provenanceHeader = []any{
	"Company", "Year", "Code", "Pillar",
	"Raw Value", "Numeric", "Normalized", "Weight", "Confidence",
	"Pages", "Chunks",
}

// BuildWorkbook renders the scores into a two-sheet workbook: one row per
// score on the Scores sheet, one row per indicator contribution on the
// Provenance sheet. A pillar a company never disclosed gets blank score and
// weight cells, not zeros. Input order does not matter; rows are sorted by
// (Company, ReportYear).
//
// The caller owns the returned file and must Close it.
func BuildWorkbook(scores []*core.ESGScore) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", ScoresSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename scores sheet: %w", err)
	}
	if _, err := f.NewSheet(ProvenanceSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create provenance sheet: %w", err)
	}

	if err := writeRow(f, ScoresSheet, 1, scoresHeader); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRow(f, ProvenanceSheet, 1, provenanceHeader); err != nil {
		f.Close()
		return nil, err
	}

	provRow := 2
	for i, score := range orderScores(scores) {
		if err := writeRow(f, ScoresSheet, i+2, scoreRow(score)); err != nil {
			f.Close()
			return nil, err
		}
		for _, contribution := range score.Contributions {
			if err := writeRow(f, ProvenanceSheet, provRow, contributionRow(score, contribution)); err != nil {
				f.Close()
				return nil, err
			}
			provRow++
		}
	}

	return f, nil
}

// WriteWorkbook builds the workbook and saves it at path.
func WriteWorkbook(path string, scores []*core.ESGScore) error {
	f, err := BuildWorkbook(scores)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// WriteWorkbookTo builds the workbook and streams it to w.
func WriteWorkbookTo(w io.Writer, scores []*core.ESGScore) error {
	f, err := BuildWorkbook(scores)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d on %s: %w", row, sheet, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("row %d on %s: %w", row, sheet, err)
	}
	return nil
}

func scoreRow(score *core.ESGScore) []any {
	row := []any{score.Company, score.ReportYear}

	for _, pillar := range core.Pillars() {
		if ps, ok := score.Pillar(pillar); ok {
			row = append(row, ps.Score)
		} else {
			row = append(row, nil)
		}
	}
	row = append(row, score.Overall)

	for _, pillar := range core.Pillars() {
		row = append(row, pillarWeightCell(score, pillar))
	}

	row = append(row, len(score.Contributions))
	row = append(row, score.ComputedAt.UTC().Format(time.RFC3339))
	return row
}

// pillarWeightCell returns the renormalized weight used for the pillar, or
// nil for a blank cell when the pillar was absent from the combination.
func pillarWeightCell(score *core.ESGScore, pillar core.Pillar) any {
	for _, w := range score.Weights {
		if w.Pillar == pillar {
			return w.Weight
		}
	}
	return nil
}

func contributionRow(score *core.ESGScore, c core.IndicatorContribution) []any {
	return []any{
		score.Company, score.ReportYear,
		c.Code, string(c.Pillar),
		c.RawValue, c.NumericValue, c.Normalized, c.Weight, c.Confidence,
		joinInts(c.SourcePages), joinIDs(c.SourceChunks),
	}
}
