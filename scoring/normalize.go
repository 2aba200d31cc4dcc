package scoring

import (
	"fmt"

	"github.com/mageshboopath1/live-esg/core"
)

// Normalize maps a raw extracted value onto the common 0-100 scale using the
// indicator's normalization kind.
//
// Percentage values are clamped into [0, 100]. Inverse kinds use a strictly
// decreasing linear ramp anchored at the definition's ceiling: a raw value of
// 0 scores 100, the ceiling and anything beyond it scores 0. Negative raw
// values are a data error for inverse kinds and are rejected, not clamped, so
// the caller excludes the indicator instead of crediting it.
func Normalize(def *core.IndicatorDefinition, raw float64) (float64, error) {
	switch def.Normalization {
	case core.NormalizationPercentage:
		return clamp(raw, 0, 100), nil

	case core.NormalizationInverseIntensity, core.NormalizationInverseCount, core.NormalizationInverseDays:
		if raw < 0 {
			return 0, fmt.Errorf("%w: %s: negative value %v for %s", ErrInvalidRawValue, def.Code, raw, def.Normalization)
		}
		if def.Ceiling <= 0 {
			return 0, fmt.Errorf("%w: %s has no positive ceiling", core.ErrInvalidDefinition, def.Code)
		}
		return clamp(100*(1-raw/def.Ceiling), 0, 100), nil

	default:
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidNormalization, def.Normalization)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
