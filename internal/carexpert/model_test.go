package carexpert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelURL = "https://www.carexpert.com.au/ford/ranger"

const modelHTML = `<html><body>
<h1 class="_1ivmml5i x">Ford Ranger</h1>
<div class="_19m0jur22"><p>The Ranger is a ute.</p><p> It is   popular. </p></div>
<div class="_19m0jurx"><div><p>Fuel Type</p><p>Diesel</p></div><div><p>Body Types</p><p>Ute</p></div></div>
<div class="_35h4t0m">
  <div class="_1ivmml5yu"><div><h3>Pros</h3></div><ul class="_6h1tsc2"><li>Strong engine</li><li> Comfortable  ride </li></ul></div>
  <div class="_1ivmml5yu"><div><h3>Cons</h3></div><ul class="_6h1tsc2"><li>Thirsty</li></ul></div>
</div>
<a class="_2mb3ted _18bmbcy6" href="/ford/ranger/xl"><h2>XL 4x2</h2><div class="_18bmbcy4">Price from $40,000†</div></a>
<div class="_1ivmml5yu _1ivmml517l">
  <a href="/ford/ranger/xl-4x2/features-and-specs">XL</a>
  <a href="/ford/ranger/xl-4x2/features-and-specs">XL again</a>
  <a href="https://www.carexpert.com.au/ford/ranger/wildtrak/features-and-specs">Wildtrak</a>
  <a href="/ford/features-and-specs">All</a>
</div>
<div data-testid="accordion">
  <h3><button data-testid="accordion-header-button" aria-expanded="true"><span data-testid="accordion-header-title-text">Is the Ranger safe?</span></button></h3>
  <div data-testid="accordion-content"><p class="m7p3v71">Yes, five stars.</p></div>
</div>
<div data-testid="accordion"><button>Unanswered?</button><div data-testid="accordion-content"></div></div>
</body></html>`

func TestParseModelPage(t *testing.T) {
	res, err := ParseModelPage(mustDoc(t, modelHTML), modelURL)
	require.NoError(t, err)

	assert.Equal(t, ModelInfo{
		BrandName:        "Ford",
		ModelName:        "Ranger",
		ModelDescription: "The Ranger is a ute. It is popular.",
		BodyType:         "Ute",
	}, res.Model)

	assert.Equal(t, []ProsCons{
		{ModelName: "Ranger", ProsConsType: "Pro", ProsConsContent: "Strong engine"},
		{ModelName: "Ranger", ProsConsType: "Pro", ProsConsContent: "Comfortable ride"},
		{ModelName: "Ranger", ProsConsType: "Con", ProsConsContent: "Thirsty"},
	}, res.ProsCons)

	assert.Equal(t, []FAQ{
		{ModelName: "Ranger", FAQQuestion: "Is the Ranger safe?", FAQAnswer: "Yes, five stars."},
	}, res.FAQs)

	assert.Equal(t, []string{
		"https://www.carexpert.com.au/ford/ranger/xl-4x2/features-and-specs",
		"https://www.carexpert.com.au/ford/ranger/wildtrak/features-and-specs",
	}, res.VariantURLs)

	require.Len(t, res.Variants, 1)
	assert.Equal(t, "Ford Ranger", res.Variants[0].ModelName)
	assert.Equal(t, "XL 4x2", res.Variants[0].VariantName)
	assert.Equal(t, "$40,000", res.Variants[0].VariantPrice)

	assert.Len(t, res.Items(), 1+3+1+1)
}

func TestParseModelPageHeroFallback(t *testing.T) {
	html := `<h1 class="_19m0jur1v">Mahindra XUV700</h1>
<div class="_19m0jurb"><p class="m7p3v71">A seven seat SUV.</p></div>
<div id="vehicle-spec"><p>Body Types</p><p>SUV</p></div>`

	res, err := ParseModelPage(mustDoc(t, html), "https://www.carexpert.com.au/mahindra/xuv700")
	require.NoError(t, err)
	assert.Equal(t, "Mahindra", res.Model.BrandName)
	assert.Equal(t, "XUV700", res.Model.ModelName)
	assert.Equal(t, "A seven seat SUV.", res.Model.ModelDescription)
	assert.Equal(t, "SUV", res.Model.BodyType)
	assert.Empty(t, res.ProsCons)
	assert.Empty(t, res.FAQs)
	assert.Empty(t, res.VariantURLs)
}

func TestParseModelPageNameFromURL(t *testing.T) {
	res, err := ParseModelPage(mustDoc(t, `<p>nothing here</p>`), "https://www.carexpert.com.au/kia/ev9")
	require.NoError(t, err)
	assert.Equal(t, "Kia", res.Model.BrandName)
	assert.Equal(t, "EV9", res.Model.ModelName)
}

func TestParseModelPageNoName(t *testing.T) {
	_, err := ParseModelPage(mustDoc(t, `<p>nothing here</p>`), "https://www.carexpert.com.au/")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestScrapeModelInteracts(t *testing.T) {
	page := &fakePage{html: modelHTML}
	res, err := (&Scraper{}).ScrapeModel(context.Background(), page, modelURL)
	require.NoError(t, err)
	assert.Equal(t, "Ranger", res.Model.ModelName)

	assert.True(t, page.ran(`"Read More"`))
	assert.True(t, page.ran(`"Show Stats"`))
	assert.True(t, page.ran("accordion-header-button"))
}

func TestParseFAQPage(t *testing.T) {
	faqs, err := ParseFAQPage(mustDoc(t, modelHTML), modelURL)
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	assert.Equal(t, "Ford Ranger", faqs[0].ModelName)

	_, err = ParseFAQPage(mustDoc(t, `<h1>Ford Ranger</h1>`), modelURL)
	require.ErrorIs(t, err, ErrNotFound)
}
