package carexpert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecPage(t *testing.T) {
	ref, err := ParseVariantURL("https://www.carexpert.com.au/ford/ranger/2024-xlt-abc123")
	require.NoError(t, err)

	html := `<div data-testid="accordion">
  <span data-testid="accordion-header-title-text">Engine</span>
  <table><tr><th>Power</th><td>184kW</td></tr><tr><th> </th><td>skipped</td></tr></table>
</div>
<div data-testid="accordion">
  <span data-testid="accordion-header-title-text">Mystery</span>
  <table><tr><th>Seats</th><td>5</td></tr></table>
</div>`

	specs, err := ParseSpecPage(mustDoc(t, html), ref)
	require.NoError(t, err)
	assert.Equal(t, []Specification{
		{ModelName: "RANGER", MakeYear: 2024, VariantName: "Xlt", SpecificationCategoryName: "Engine & Transmission", SpecificationName: "Power", SpecificationValue: "184kW"},
		{ModelName: "RANGER", MakeYear: 2024, VariantName: "Xlt", SpecificationCategoryName: "Capacity", SpecificationName: "Seats", SpecificationValue: "5"},
	}, specs)
}

func TestParseSpecPageNoAccordions(t *testing.T) {
	_, err := ParseSpecPage(mustDoc(t, `<table></table>`), VariantRef{})
	require.ErrorIs(t, err, ErrNotFound)
}
