package scoring

import (
	"testing"

	"github.com/mageshboopath1/live-esg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func percentageDef(code string) *core.IndicatorDefinition {
	return &core.IndicatorDefinition{
		Code:          code,
		Pillar:        core.PillarEnvironmental,
		Weight:        0.5,
		Normalization: core.NormalizationPercentage,
	}
}

func inverseDef(code string, kind core.NormalizationKind, ceiling float64) *core.IndicatorDefinition {
	return &core.IndicatorDefinition{
		Code:          code,
		Pillar:        core.PillarEnvironmental,
		Weight:        0.5,
		Normalization: kind,
		Ceiling:       ceiling,
	}
}

func TestNormalize_Percentage(t *testing.T) {
	tests := []struct {
		name     string
		raw      float64
		expected float64
	}{
		{"in range", 65, 65},
		{"zero", 0, 0},
		{"full", 100, 100},
		{"clamped low", -5, 0},
		{"clamped high", 130, 100},
	}

	def := percentageDef("E-ENE-REN")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(def, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_InverseRamp(t *testing.T) {
	tests := []struct {
		name     string
		kind     core.NormalizationKind
		ceiling  float64
		raw      float64
		expected float64
	}{
		{"zero scores full", core.NormalizationInverseIntensity, 500, 0, 100},
		{"midpoint", core.NormalizationInverseIntensity, 500, 250, 50},
		{"at ceiling", core.NormalizationInverseIntensity, 500, 500, 0},
		{"beyond ceiling floors", core.NormalizationInverseIntensity, 500, 900, 0},
		{"count midpoint", core.NormalizationInverseCount, 10, 5, 50},
		{"days near zero", core.NormalizationInverseDays, 365, 36.5, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(inverseDef("E-GHG-INT", tt.kind, tt.ceiling), tt.raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestNormalize_InverseStrictlyDecreasing(t *testing.T) {
	def := inverseDef("S-INJ-RATE", core.NormalizationInverseCount, 10)

	prev := 101.0
	for raw := 0.0; raw < 10.0; raw += 0.5 {
		got, err := Normalize(def, raw)
		require.NoError(t, err)
		assert.Less(t, got, prev, "normalized value must strictly decrease, raw=%v", raw)
		prev = got
	}
}

func TestNormalize_NegativeInverseRejected(t *testing.T) {
	for _, kind := range []core.NormalizationKind{
		core.NormalizationInverseIntensity,
		core.NormalizationInverseCount,
		core.NormalizationInverseDays,
	} {
		t.Run(string(kind), func(t *testing.T) {
			_, err := Normalize(inverseDef("G-ETH-INC", kind, 20), -1)
			assert.ErrorIs(t, err, ErrInvalidRawValue)
		})
	}
}

func TestNormalize_NegativePercentageClamped(t *testing.T) {
	// Only inverse kinds treat negatives as a data error; percentages clamp.
	got, err := Normalize(percentageDef("S-DIV-WF"), -20)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestNormalize_MissingCeiling(t *testing.T) {
	_, err := Normalize(inverseDef("E-WAT-INT", core.NormalizationInverseIntensity, 0), 5)
	assert.ErrorIs(t, err, core.ErrInvalidDefinition)
}

func TestNormalize_UnknownKind(t *testing.T) {
	def := &core.IndicatorDefinition{
		Code:          "E-BAD",
		Pillar:        core.PillarEnvironmental,
		Weight:        0.5,
		Normalization: core.NormalizationKind("logarithmic"),
	}
	_, err := Normalize(def, 5)
	assert.ErrorIs(t, err, core.ErrInvalidNormalization)
}
