package carexpert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpiderLookup(t *testing.T) {
	assert.Equal(t, []string{"comprehensive", "faq", "model", "sections", "specs", "variants"}, SpiderNames())

	_, err := Spider("bogus")
	require.Error(t, err)
}

func TestComprehensiveFollowsVariants(t *testing.T) {
	run, err := Spider(SpiderComprehensive)
	require.NoError(t, err)

	res, err := run(context.Background(), &Scraper{}, &fakePage{html: modelHTML}, modelURL)
	require.NoError(t, err)
	assert.Equal(t, modelURL, res.URL)
	assert.Len(t, res.Follow, 2)
	assert.NotEmpty(t, res.Items)
}

func TestModelSpiderDoesNotFollow(t *testing.T) {
	run, err := Spider(SpiderModel)
	require.NoError(t, err)

	res, err := run(context.Background(), &Scraper{}, &fakePage{html: modelHTML}, modelURL)
	require.NoError(t, err)
	assert.Empty(t, res.Follow)
}

func TestSpecsSpiderPropagatesNotFound(t *testing.T) {
	run, err := Spider(SpiderSpecs)
	require.NoError(t, err)

	_, err = run(context.Background(), &Scraper{}, &fakePage{html: `<p>empty</p>`}, "https://www.carexpert.com.au/ford/ranger/xl/features-and-specs")
	require.ErrorIs(t, err, ErrNotFound)
}
