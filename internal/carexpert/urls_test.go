package carexpert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelURL(t *testing.T) {
	ref, err := ParseModelURL("https://www.carexpert.com.au/land-rover/range-rover-sport/2025-se")
	require.NoError(t, err)
	assert.Equal(t, ModelRef{Brand: "Land Rover", Model: "RANGE ROVER SPORT", Slug: "land-rover/range-rover-sport"}, ref)

	_, err = ParseModelURL("https://www.carexpert.com.au/ford")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestParseVariantURL(t *testing.T) {
	tests := []struct {
		url     string
		year    int
		variant string
	}{
		{"https://www.carexpert.com.au/ford/ranger/2024-xlt-abc123", 2024, "Xlt"},
		{"https://www.carexpert.com.au/ford/ranger/wildtrak-x/features-and-specs", DefaultYear, "Wildtrak X"},
		{"https://www.carexpert.com.au/ford/ranger/features-and-specs", DefaultYear, "Unknown"},
		{"https://www.carexpert.com.au/ford/ranger", DefaultYear, "Unknown"},
		{"https://www.carexpert.com.au/ford/ranger/raptor", DefaultYear, "Raptor"},
		{"https://www.carexpert.com.au/ford/ranger/sport-4x4", DefaultYear, "Sport"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			ref, err := ParseVariantURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, "Ford", ref.Brand)
			assert.Equal(t, "RANGER", ref.Model)
			assert.Equal(t, tt.year, ref.Year)
			assert.Equal(t, tt.variant, ref.Variant)
		})
	}
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "XUV700_AX7", SafeName(" XUV700 AX7 "))
	assert.Equal(t, "a_b_c", SafeName("a/b\\c"))
	assert.Equal(t, "_", SafeName(".."))
	assert.Equal(t, "unknown", SafeName("  "))
}

func TestAbsolute(t *testing.T) {
	assert.Equal(t, "https://www.carexpert.com.au/ford/ranger/xl/features-and-specs",
		Absolute("https://www.carexpert.com.au/ford/ranger", "/ford/ranger/xl/features-and-specs"))
	assert.Equal(t, "https://www.carexpert.com.au/kia",
		Absolute("", "/kia"))
	assert.Equal(t, "https://example.com/x",
		Absolute("https://www.carexpert.com.au/ford", "https://example.com/x"))
}
