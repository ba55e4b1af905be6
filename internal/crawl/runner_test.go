package crawl

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/sawari_expert/internal/browser"
	"github.com/dgnsrekt/sawari_expert/internal/browser/browsertest"
	"github.com/dgnsrekt/sawari_expert/internal/carexpert"
	"github.com/dgnsrekt/sawari_expert/internal/tabpool"
)

const (
	rangerURL   = "https://www.carexpert.com.au/ford/ranger"
	everestURL  = "https://www.carexpert.com.au/ford/everest"
	xlURL       = "https://www.carexpert.com.au/ford/ranger/xl/features-and-specs"
	wildtrakURL = "https://www.carexpert.com.au/ford/ranger/wildtrak/features-and-specs"
)

const rangerHTML = `<h1 class="_1ivmml5i">Ford Ranger</h1>
<div class="_1ivmml5yu _1ivmml517l">
  <a href="/ford/ranger/xl/features-and-specs">XL</a>
  <a href="/ford/ranger/wildtrak/features-and-specs">Wildtrak</a>
</div>`

const everestHTML = `<h1 class="_1ivmml5i">Ford Everest</h1>
<div class="_1ivmml5yu _1ivmml517l"><a href="/ford/ranger/xl/features-and-specs">XL</a></div>`

const variantHTML = `<button aria-expanded="true" class="_1ivmml5q"><div>Safety</div></button>
<div id="vehicle-spec-airbags"><p><span>Airbags</span>: <span>Yes</span></p></div>
<button aria-expanded="true" class="_1ivmml5q"><div>Engine</div></button>
<div id="vehicle-spec-engine"><p><span>Power</span>: <span>184kW</span></p></div>`

type memorySink struct {
	mu    sync.Mutex
	items map[string][]carexpert.Item
	err   error
}

func (m *memorySink) Write(pageURL string, items []carexpert.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.items == nil {
		m.items = map[string][]carexpert.Item{}
	}
	m.items[pageURL] = append(m.items[pageURL], items...)
	return nil
}

func newRunner(t *testing.T, launch browser.LaunchFunc, sink Sink) (*Runner, *tabpool.SessionManager) {
	t.Helper()
	m := tabpool.NewSessionManager(tabpool.Config{Launch: launch})
	t.Cleanup(func() { _ = m.Release(context.Background()) })
	return &Runner{
		Dispatcher:  tabpool.NewDispatcher(m, tabpool.Options{TabCount: 2}),
		Scraper:     &carexpert.Scraper{},
		Sink:        sink,
		Concurrency: 3,
	}, m
}

func TestRunCountsFailuresAndStoresItems(t *testing.T) {
	site := browsertest.NewSite(map[string]string{rangerURL: rangerHTML, everestURL: everestHTML})
	sink := &memorySink{}
	r, m := newRunner(t, site.Launch, sink)

	missing := "https://www.carexpert.com.au/ford/mustang"
	sum, err := r.Run(context.Background(), carexpert.SpiderModel, []string{rangerURL, everestURL, missing, rangerURL})
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Requested)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, missing, sum.Failures[0].URL)
	assert.Equal(t, tabpool.CodeNavigationFailure, sum.Failures[0].Code)

	assert.Equal(t, 2, sum.Items)
	assert.Len(t, sink.items[rangerURL], 1)
	assert.Equal(t, 1, site.Launches())

	stats := m.Stats()
	assert.Equal(t, 2, stats.Width)
	assert.Equal(t, 2, stats.Available)
}

func TestRunComprehensiveFollowsVariantPages(t *testing.T) {
	site := browsertest.NewSite(map[string]string{
		rangerURL:   rangerHTML,
		everestURL:  everestHTML,
		xlURL:       variantHTML,
		wildtrakURL: variantHTML,
	})
	sink := &memorySink{}
	r, _ := newRunner(t, site.Launch, sink)

	sum, err := r.Run(context.Background(), carexpert.SpiderComprehensive, []string{rangerURL, everestURL})
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Requested)
	assert.Equal(t, 4, sum.Succeeded)
	assert.Zero(t, sum.Failed)

	require.Len(t, sink.items[xlURL], 2)
	kinds := map[string]int{}
	for _, it := range sink.items[xlURL] {
		kinds[it.Kind()]++
	}
	assert.Equal(t, map[string]int{carexpert.KindFeature: 1, carexpert.KindSpecification: 1}, kinds)

	var xlVisits int
	for _, v := range site.Visits() {
		if v == xlURL {
			xlVisits++
		}
	}
	assert.Equal(t, 1, xlVisits)
}

func TestRunParseFailureIsNotFatal(t *testing.T) {
	site := browsertest.NewSite(map[string]string{rangerURL: `<p>redesigned</p>`})
	r, _ := newRunner(t, site.Launch, &memorySink{})

	sum, err := r.Run(context.Background(), carexpert.SpiderVariants, []string{rangerURL})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Empty(t, sum.Failures[0].Code)
}

func TestRunSinkErrorCountsAsFailure(t *testing.T) {
	site := browsertest.NewSite(map[string]string{rangerURL: rangerHTML})
	r, _ := newRunner(t, site.Launch, &memorySink{err: errors.New("disk full")})

	sum, err := r.Run(context.Background(), carexpert.SpiderModel, []string{rangerURL})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Contains(t, sum.Failures[0].Error, "disk full")
}

func TestRunAbortsOnLaunchFailure(t *testing.T) {
	launch := func(context.Context, browser.Options) (browser.Driver, error) {
		return nil, errors.New("no chromium")
	}
	r, _ := newRunner(t, launch, &memorySink{})

	_, err := r.Run(context.Background(), carexpert.SpiderModel, []string{rangerURL, everestURL})
	require.Error(t, err)
	assert.True(t, tabpool.IsCode(err, tabpool.CodeLaunchFailure))
}

func TestRunAbortsAfterRelease(t *testing.T) {
	site := browsertest.NewSite(map[string]string{rangerURL: rangerHTML})
	r, m := newRunner(t, site.Launch, &memorySink{})
	_, err := r.Run(context.Background(), carexpert.SpiderModel, []string{rangerURL})
	require.NoError(t, err)
	require.NoError(t, m.Release(context.Background()))

	_, err = r.Run(context.Background(), carexpert.SpiderModel, []string{rangerURL})
	require.Error(t, err)
	assert.True(t, tabpool.IsCode(err, tabpool.CodeSessionClosed))
}

func TestRunUnknownSpider(t *testing.T) {
	r, _ := newRunner(t, browsertest.NewSite(nil).Launch, &memorySink{})
	_, err := r.Run(context.Background(), "bogus", []string{rangerURL})
	require.Error(t, err)
}

func TestScrapeSinglePage(t *testing.T) {
	site := browsertest.NewSite(map[string]string{xlURL: variantHTML})
	r, _ := newRunner(t, site.Launch, nil)

	res, err := r.Scrape(context.Background(), carexpert.SpiderSections, xlURL)
	require.NoError(t, err)
	assert.Equal(t, xlURL, res.URL)
	assert.Len(t, res.Items, 2)
}
