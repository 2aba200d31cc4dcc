package ai

// RawIndicator is one indicator reading as it comes back from an extractor,
// before any catalog validation or persistence. Chunk attribution is optional;
// extractors that only see page markers leave Chunks empty and the caller maps
// pages back to chunks.
type RawIndicator struct {
	// Code is the catalog code of the indicator, e.g. "E-GHG-INT".
	Code string

	// Value is the verbatim figure as the document reports it,
	// e.g. "412 tCO2e per $M revenue".
	Value string

	// Numeric is the parsed numeric reading in the indicator's unit.
	// Only meaningful when HasNumeric is true.
	Numeric float64

	// HasNumeric is false when the disclosure is qualitative and no
	// numeric reading could be parsed from it.
	HasNumeric bool

	// Confidence is the extractor's confidence in this reading, in [0, 1].
	Confidence float64

	// Pages lists the 1-based pages the reading was found on.
	Pages []int

	// Chunks lists the chunk keys the reading was found in, when known.
	Chunks []uint64
}

// IndicatorSpec describes one indicator to an extractor: what to look for and
// how to read it. Specs are derived from the scoring catalog at wiring time so
// the extractor package stays independent of catalog internals.
type IndicatorSpec struct {
	// Code is the catalog code the extractor must echo back, e.g. "S-INJ-RATE".
	Code string

	// Name is the human-readable indicator name, e.g. "Lost-time injury rate".
	Name string

	// Unit is the unit the numeric reading should be expressed in,
	// e.g. "% of total energy", "tCO2e per $M revenue". Empty for
	// qualitative indicators.
	Unit string

	// Guidance gives the extractor disambiguation hints, e.g. which of
	// several similar disclosed figures to prefer.
	Guidance string
}
