package normalize

import "math"

// Band is a display bucket for a confidence value.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// NormalizeConfidence maps a fraction or a percentage onto [0,1]. Values
// above 1 are read as percentages.
func NormalizeConfidence(c float64) float64 {
	if math.IsNaN(c) || c <= 0 {
		return 0
	}
	if c > 1 {
		c /= 100
	}
	if c > 1 {
		return 1
	}
	return c
}

// ConfidenceBand buckets a confidence value after normalizing it.
func ConfidenceBand(c float64) Band {
	n := NormalizeConfidence(c)
	switch {
	case n >= 0.95:
		return BandHigh
	case n >= 0.85:
		return BandMedium
	default:
		return BandLow
	}
}
