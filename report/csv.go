package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mageshboopath1/live-esg/core"
)

var scoresCSVHeader = []string{
	"company", "year",
	"environmental", "social", "governance", "overall",
	"e_weight", "s_weight", "g_weight",
	"indicators", "computed_at",
}

var provenanceCSVHeader = []string{
	"company", "year", "code", "pillar",
	"raw_value", "numeric", "normalized", "weight", "confidence",
	"pages", "chunks",
}

// WriteScoresCSV writes one row per score to w, mirroring the workbook's
// Scores sheet. Floats keep full precision so exported rows can be compared
// across runs; missing pillars are empty fields.
func WriteScoresCSV(w io.Writer, scores []*core.ESGScore) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoresCSVHeader); err != nil {
		return fmt.Errorf("write scores header: %w", err)
	}

	for _, score := range orderScores(scores) {
		record := []string{score.Company, strconv.Itoa(score.ReportYear)}
		for _, pillar := range core.Pillars() {
			if ps, ok := score.Pillar(pillar); ok {
				record = append(record, formatFloat(ps.Score))
			} else {
				record = append(record, "")
			}
		}
		record = append(record, formatFloat(score.Overall))
		for _, pillar := range core.Pillars() {
			record = append(record, formatWeight(score, pillar))
		}
		record = append(record,
			strconv.Itoa(len(score.Contributions)),
			score.ComputedAt.UTC().Format(time.RFC3339))

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write score row for %s %d: %w", score.Company, score.ReportYear, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteProvenanceCSV writes one row per indicator contribution to w,
// mirroring the workbook's Provenance sheet.
func WriteProvenanceCSV(w io.Writer, scores []*core.ESGScore) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(provenanceCSVHeader); err != nil {
		return fmt.Errorf("write provenance header: %w", err)
	}

	for _, score := range orderScores(scores) {
		for _, c := range score.Contributions {
			record := []string{
				score.Company, strconv.Itoa(score.ReportYear),
				c.Code, string(c.Pillar),
				c.RawValue,
				formatFloat(c.NumericValue),
				formatFloat(c.Normalized),
				formatFloat(c.Weight),
				formatFloat(c.Confidence),
				joinInts(c.SourcePages),
				joinIDs(c.SourceChunks),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write provenance row for %s: %w", c.Code, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// orderScores returns the scores sorted by (Company, ReportYear) without
// touching the input slice.
func orderScores(scores []*core.ESGScore) []*core.ESGScore {
	ordered := slices.Clone(scores)
	slices.SortStableFunc(ordered, func(a, b *core.ESGScore) int {
		if c := strings.Compare(a.Company, b.Company); c != 0 {
			return c
		}
		return a.ReportYear - b.ReportYear
	})
	return ordered
}

func formatWeight(score *core.ESGScore, pillar core.Pillar) string {
	for _, w := range score.Weights {
		if w.Pillar == pillar {
			return formatFloat(w.Weight)
		}
	}
	return ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func joinIDs(ids []core.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}
