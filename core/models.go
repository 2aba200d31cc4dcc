package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentKeyFor derives the canonical document key for a company's report year.
// Identical (company, year) pairs always map to the same key, so re-ingesting a
// report addresses the same document.
func DocumentKeyFor(company string, reportYear int) ID {
	return IDFromContent("(" + company + "," + strconv.Itoa(reportYear) + ")")
}

// Pillar identifies one of the three sustainability scoring dimensions.
type Pillar string

const (
	// PillarEnvironmental covers emissions, energy, water, and waste indicators.
	PillarEnvironmental Pillar = "E"
	// PillarSocial covers workforce, safety, and community indicators.
	PillarSocial Pillar = "S"
	// PillarGovernance covers board, ethics, and transparency indicators.
	PillarGovernance Pillar = "G"
)

// Pillars returns the three pillars in their canonical order.
func Pillars() []Pillar {
	return []Pillar{PillarEnvironmental, PillarSocial, PillarGovernance}
}

// NormalizationKind selects the transform mapping a raw indicator value onto
// the common 0-100 scale.
type NormalizationKind string

const (
	// NormalizationPercentage clamps a raw percentage into [0, 100].
	NormalizationPercentage NormalizationKind = "percentage"
	// NormalizationInverseIntensity scores lower intensity ratios higher.
	NormalizationInverseIntensity NormalizationKind = "inverse_intensity"
	// NormalizationInverseCount scores lower event counts higher.
	NormalizationInverseCount NormalizationKind = "inverse_count"
	// NormalizationInverseDays scores fewer days higher.
	NormalizationInverseDays NormalizationKind = "inverse_days"
)

// Document represents one ingested disclosure report.
type Document struct {
	Key        ID
	Company    string
	ReportYear int
	SourceURL  string
	Title      string
	Pages      int
	ChunkCount int       // Expected chunk total, recorded at chunking time (0 = unknown)
	IngestedAt time.Time // When the document was first persisted
	UpdatedAt  time.Time // When the record was last updated
}

// Tuple returns a string representation of the document identity as "(Company,Year)".
// This is used for generating deterministic keys.
func (d *Document) Tuple() string {
	return "(" + d.Company + "," + strconv.Itoa(d.ReportYear) + ")"
}

// Chunk is one contiguous slice of a document's text. The embedding stage
// fills in Vector and EmbeddedAt after the chunk is persisted.
type Chunk struct {
	DocumentKey ID
	Index       int
	Page        int // 1-based page the chunk starts on
	Text        string
	Vector      []float32
	EmbeddedAt  time.Time
}

// Embedded reports whether the embedding stage has written this chunk's vector.
func (c *Chunk) Embedded() bool {
	return len(c.Vector) > 0
}

// Readiness is a point-in-time snapshot of a document's embedding completeness,
// computed fresh on every gate evaluation and never cached.
type Readiness struct {
	Ready          bool
	EmbeddedChunks int
	ExpectedChunks int // 0 when the document's chunk count is unknown
	LastVectorAt   time.Time
}

// IndicatorDefinition is static reference data describing one scorable indicator.
type IndicatorDefinition struct {
	Code          string
	Name          string
	Pillar        Pillar
	Weight        float64 // In (0, 1]
	Normalization NormalizationKind
	Ceiling       float64 // Reference ceiling for inverse kinds; raw >= ceiling floors at 0
}

// ExtractedIndicator is one indicator value pulled from a document by the
// extraction stage. Immutable once written; re-extraction supersedes the row
// for the same (DocumentKey, Code), never merges into it.
type ExtractedIndicator struct {
	DocumentKey  ID
	Code         string
	RawValue     string // Verbatim value as reported in the document
	NumericValue float64
	HasNumeric   bool    // False when no numeric reading could be parsed
	Confidence   float64 // In [0, 1]
	SourcePages  []int
	SourceChunks []ID // Chunk indexes within the document, resolved from the cited pages
	ExtractedAt  time.Time
}

// PillarScore is the weighted average for one pillar over its usable indicators.
type PillarScore struct {
	Pillar         Pillar
	Score          float64 // In [0, 100]
	TotalWeight    float64 // Sum of definition weights actually used
	IndicatorsUsed []string
}

// PillarWeight records one pillar's weight as used in an overall-score combination,
// after any renormalization over present pillars.
type PillarWeight struct {
	Pillar Pillar
	Weight float64
}

// IndicatorContribution preserves everything needed to explain one indicator's
// effect on a score without re-querying the extraction store.
type IndicatorContribution struct {
	Code         string
	Pillar       Pillar
	RawValue     string
	NumericValue float64
	Normalized   float64
	Weight       float64
	Confidence   float64
	SourcePages  []int
	SourceChunks []ID
}

// ESGScore is the composite result of one aggregation run for a company's
// report year. Subsequent runs for the same key overwrite, never merge.
type ESGScore struct {
	Company       string
	ReportYear    int
	DocumentKey   ID
	Pillars       []PillarScore // Present pillars only, in canonical order
	Overall       float64
	Weights       []PillarWeight          // Weights actually used, in canonical order
	Contributions []IndicatorContribution // Sorted by indicator code
	RunID         string
	ComputedAt    time.Time
}

// Pillar returns the score for p, if that pillar had usable indicators.
func (s *ESGScore) Pillar(p Pillar) (PillarScore, bool) {
	for _, ps := range s.Pillars {
		if ps.Pillar == p {
			return ps, true
		}
	}
	return PillarScore{}, false
}
