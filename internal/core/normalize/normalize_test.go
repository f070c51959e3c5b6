package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"argentine grouping", "9.136,40", "9136.40"},
		{"us grouping", "9,136.40", "9136.40"},
		{"no separators", "913640", "9136.40"},
		{"two digits", "12", "0.12"},
		{"single digit", "7", "7"},
		{"surrounding space", "  1.000,00 ", "1000"},
		{"large", "12.345.678,90", "12345678.90"},
		{"letters", "abc", "0"},
		{"empty", "", "0"},
		{"only separators", ".,.", "0"},
		{"currency mark", "$100,00", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "9,136.40", FormatAmount(decimal.RequireFromString("9136.4")))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"22/08/2023", "2023-08-22"},
		{"22/8/2023", "2023-08-22"},
		{"1/2/2024", "2024-02-01"},
		{"2023-08-22", "2023-08-22"},
		{"22/08", "22/08"},
		{"aa/08/2023", "aa/08/2023"},
		{"22//2023", "22//2023"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

func TestNormalizeConfidence(t *testing.T) {
	assert.InDelta(t, 0.98, NormalizeConfidence(98), 1e-9)
	assert.InDelta(t, 0.98, NormalizeConfidence(0.98), 1e-9)
	assert.Equal(t, 1.0, NormalizeConfidence(1))
	assert.Equal(t, 1.0, NormalizeConfidence(150))
	assert.Equal(t, 0.0, NormalizeConfidence(-3))
}

func TestNormalizeConfidence_Idempotent(t *testing.T) {
	for _, x := range []float64{0, 0.5, 1, 1.01, 42, 98, 100, 250, 1e6} {
		once := NormalizeConfidence(x)
		assert.Equal(t, once, NormalizeConfidence(once), "x=%v", x)
		assert.GreaterOrEqual(t, once, 0.0)
		assert.LessOrEqual(t, once, 1.0)
	}
}

func TestConfidenceBand(t *testing.T) {
	assert.Equal(t, BandHigh, ConfidenceBand(0.95))
	assert.Equal(t, BandHigh, ConfidenceBand(99))
	assert.Equal(t, BandMedium, ConfidenceBand(0.85))
	assert.Equal(t, BandLow, ConfidenceBand(0.5))
}
