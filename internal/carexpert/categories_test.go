package carexpert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSpecCategory(t *testing.T) {
	assert.Equal(t, "Engine & Transmission", MapSpecCategory(" Engine "))
	assert.Equal(t, "Dimensions & Weight", MapSpecCategory("Dimensions & Weights"))
	assert.Equal(t, DefaultSpecCategory, MapSpecCategory("Warranty"))
	assert.Equal(t, DefaultSpecCategory, MapSpecCategory(""))
}

func TestMapSectionCategory(t *testing.T) {
	tests := []struct {
		header   string
		category string
		feature  bool
	}{
		{"Safety", "Safety", true},
		{"ENGINE", "Engine & Transmission", false},
		{"Cargo Area", "Capacity", false},
		{"Service", "Manufacturer Warranty", false},
		{"Safety Features", "Safety", true},
		{"Engine Specs", "Engine & Transmission", false},
		{"Wheels & Tyres", "Suspensions, Brakes, Steering & Tyres", false},
		{"Mystery Box", DefaultFeatureCategory, true},
		{"", DefaultFeatureCategory, true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			category, feature := MapSectionCategory(tt.header)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.feature, feature)
		})
	}
}
