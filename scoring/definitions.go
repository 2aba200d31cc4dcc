package scoring

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mageshboopath1/live-esg/core"
	"gopkg.in/yaml.v3"
)

// Catalog is the resolved set of indicator definitions for a scoring run.
// Lookups are by exact code; per-pillar listings come back sorted by code so
// aggregation visits indicators in a fixed order.
type Catalog struct {
	defs  map[string]*core.IndicatorDefinition
	codes []string
}

// NewCatalog validates the definitions and builds a Catalog. Duplicate codes
// are rejected rather than last-one-wins, since a silent override would shift
// scores without a trace.
func NewCatalog(defs []core.IndicatorDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}

	catalog := &Catalog{
		defs:  make(map[string]*core.IndicatorDefinition, len(defs)),
		codes: make([]string, 0, len(defs)),
	}
	for i := range defs {
		def := defs[i]
		if err := core.ValidateIndicatorDefinition(&def); err != nil {
			return nil, err
		}
		if _, exists := catalog.defs[def.Code]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, def.Code)
		}
		catalog.defs[def.Code] = &def
		catalog.codes = append(catalog.codes, def.Code)
	}
	slices.Sort(catalog.codes)
	return catalog, nil
}

// Lookup resolves an indicator code to its definition.
func (c *Catalog) Lookup(code string) (*core.IndicatorDefinition, bool) {
	def, ok := c.defs[code]
	return def, ok
}

// Codes returns all indicator codes, sorted. Callers must not modify the
// returned slice.
func (c *Catalog) Codes() []string {
	return c.codes
}

// ByPillar returns the pillar's definitions sorted by code.
func (c *Catalog) ByPillar(pillar core.Pillar) []*core.IndicatorDefinition {
	var defs []*core.IndicatorDefinition
	for _, code := range c.codes {
		if def := c.defs[code]; def.Pillar == pillar {
			defs = append(defs, def)
		}
	}
	return defs
}

// Len returns the number of definitions in the catalog.
func (c *Catalog) Len() int {
	return len(c.codes)
}

// catalogFile is the YAML shape of an indicator catalog. Pillar weights are
// optional; a file that omits them keeps the default weighting.
type catalogFile struct {
	Indicators    []indicatorSpec    `yaml:"indicators"`
	PillarWeights map[string]float64 `yaml:"pillar_weights,omitempty"`
}

type indicatorSpec struct {
	Code          string  `yaml:"code"`
	Name          string  `yaml:"name"`
	Pillar        string  `yaml:"pillar"`
	Weight        float64 `yaml:"weight"`
	Normalization string  `yaml:"normalization"`
	Ceiling       float64 `yaml:"ceiling,omitempty"`
}

// LoadCatalog reads an indicator catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	catalog, _, err := LoadConfig(path)
	return catalog, err
}

// ParseCatalog builds a Catalog from YAML bytes.
func ParseCatalog(data []byte) (*Catalog, error) {
	catalog, _, err := ParseConfig(data)
	return catalog, err
}

// LoadConfig reads an indicator catalog and pillar weights from a YAML file.
// A file without a pillar_weights section keeps the default weighting.
func LoadConfig(path string) (*Catalog, Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig builds a Catalog and Weights from YAML bytes.
func ParseConfig(data []byte) (*Catalog, Weights, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	defs := make([]core.IndicatorDefinition, 0, len(file.Indicators))
	for _, spec := range file.Indicators {
		defs = append(defs, core.IndicatorDefinition{
			Code:          strings.TrimSpace(spec.Code),
			Name:          strings.TrimSpace(spec.Name),
			Pillar:        core.Pillar(strings.TrimSpace(spec.Pillar)),
			Weight:        spec.Weight,
			Normalization: core.NormalizationKind(strings.TrimSpace(spec.Normalization)),
			Ceiling:       spec.Ceiling,
		})
	}
	catalog, err := NewCatalog(defs)
	if err != nil {
		return nil, nil, err
	}

	weights := DefaultWeights()
	if len(file.PillarWeights) > 0 {
		weights = make(Weights, len(file.PillarWeights))
		for pillar, weight := range file.PillarWeights {
			weights[core.Pillar(strings.TrimSpace(pillar))] = weight
		}
		if err := weights.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return catalog, weights, nil
}

// DefaultDefinitions returns the compiled-in indicator set used when no
// catalog file is configured. Ceilings are reference values beyond which an
// inverse indicator scores 0.
func DefaultDefinitions() []core.IndicatorDefinition {
	return []core.IndicatorDefinition{
		{
			Code:          "E-GHG-INT",
			Name:          "GHG emissions intensity (tCO2e per $M revenue)",
			Pillar:        core.PillarEnvironmental,
			Weight:        0.30,
			Normalization: core.NormalizationInverseIntensity,
			Ceiling:       500,
		},
		{
			Code:          "E-ENE-REN",
			Name:          "Renewable energy share of consumption (%)",
			Pillar:        core.PillarEnvironmental,
			Weight:        0.25,
			Normalization: core.NormalizationPercentage,
		},
		{
			Code:          "E-WAT-INT",
			Name:          "Water withdrawal intensity (m3 per $M revenue)",
			Pillar:        core.PillarEnvironmental,
			Weight:        0.20,
			Normalization: core.NormalizationInverseIntensity,
			Ceiling:       10000,
		},
		{
			Code:          "E-WST-REC",
			Name:          "Waste diverted from landfill (%)",
			Pillar:        core.PillarEnvironmental,
			Weight:        0.25,
			Normalization: core.NormalizationPercentage,
		},
		{
			Code:          "S-INJ-RATE",
			Name:          "Total recordable injury rate (per 200k hours)",
			Pillar:        core.PillarSocial,
			Weight:        0.30,
			Normalization: core.NormalizationInverseCount,
			Ceiling:       10,
		},
		{
			Code:          "S-DIV-WF",
			Name:          "Workforce diversity (%)",
			Pillar:        core.PillarSocial,
			Weight:        0.25,
			Normalization: core.NormalizationPercentage,
		},
		{
			Code:          "S-TRN-COV",
			Name:          "Employees receiving regular training (%)",
			Pillar:        core.PillarSocial,
			Weight:        0.25,
			Normalization: core.NormalizationPercentage,
		},
		{
			Code:          "S-PAY-GAP",
			Name:          "Median gender pay gap (%)",
			Pillar:        core.PillarSocial,
			Weight:        0.20,
			Normalization: core.NormalizationInverseIntensity,
			Ceiling:       50,
		},
		{
			Code:          "G-BRD-IND",
			Name:          "Board independence (%)",
			Pillar:        core.PillarGovernance,
			Weight:        0.35,
			Normalization: core.NormalizationPercentage,
		},
		{
			Code:          "G-BRD-DIV",
			Name:          "Board gender diversity (%)",
			Pillar:        core.PillarGovernance,
			Weight:        0.25,
			Normalization: core.NormalizationPercentage,
		},
		{
			Code:          "G-ETH-INC",
			Name:          "Confirmed ethics incidents (count)",
			Pillar:        core.PillarGovernance,
			Weight:        0.20,
			Normalization: core.NormalizationInverseCount,
			Ceiling:       20,
		},
		{
			Code:          "G-AUD-DAYS",
			Name:          "Days from year end to audited filing",
			Pillar:        core.PillarGovernance,
			Weight:        0.20,
			Normalization: core.NormalizationInverseDays,
			Ceiling:       365,
		},
	}
}

// DefaultCatalog builds a Catalog from the compiled-in indicator set.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(DefaultDefinitions())
}
