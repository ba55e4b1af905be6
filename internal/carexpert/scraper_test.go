package carexpert

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage serves fixed HTML and records every script it is asked to run.
type fakePage struct {
	mu      sync.Mutex
	html    string
	htmlErr error
	results map[string]any
	scripts []string
}

func (p *fakePage) Evaluate(_ context.Context, expression string, out any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts = append(p.scripts, expression)
	v, ok := p.results[expression]
	if !ok || out == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (p *fakePage) HTML(context.Context) (string, error) {
	return p.html, p.htmlErr
}

func (p *fakePage) ran(fragment string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.scripts {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

type fakeSaver struct {
	labels []string
	err    error
}

func (f *fakeSaver) SaveHTML(label, _, _ string) (string, error) {
	f.labels = append(f.labels, label)
	return "snap-" + label, f.err
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := parseHTML(html)
	require.NoError(t, err)
	return doc
}

func TestTextCollapsesWhitespace(t *testing.T) {
	doc := mustDoc(t, `<p id="a">  Strong
		engine   <b>and</b> ride </p>`)
	assert.Equal(t, "Strong engine and ride", text(doc.Find("#a")))
	assert.Equal(t, "Strong engine ride", ownText(doc.Find("#a")))
}

func TestDocumentSavesSnapshot(t *testing.T) {
	saver := &fakeSaver{}
	s := &Scraper{Snapshots: saver}
	page := &fakePage{html: `<h1>Hi</h1>`}

	doc, err := s.document(context.Background(), page, "model", "https://www.carexpert.com.au/ford/ranger")
	require.NoError(t, err)
	assert.Equal(t, "Hi", text(doc.Find("h1")))
	assert.Equal(t, []string{"model"}, saver.labels)
}

func TestDocumentSnapshotFailureIsNotFatal(t *testing.T) {
	s := &Scraper{Snapshots: &fakeSaver{err: errors.New("disk full")}}
	_, err := s.document(context.Background(), &fakePage{html: `<p>x</p>`}, "faq", "u")
	require.NoError(t, err)
}

func TestDocumentHTMLError(t *testing.T) {
	s := &Scraper{}
	_, err := s.document(context.Background(), &fakePage{htmlErr: errors.New("tab gone")}, "faq", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tab gone")
}

func TestClickButtonQuotesText(t *testing.T) {
	s := &Scraper{}
	page := &fakePage{}
	assert.False(t, s.clickButton(context.Background(), page, `Say "hi"`))
	assert.True(t, page.ran(`"Say \"hi\""`))
}

func TestScrollPageStopsWhenHeightStable(t *testing.T) {
	s := &Scraper{}
	page := &fakePage{results: map[string]any{scrollHeightJS: 1200}}
	s.scrollPage(context.Background(), page, 5)

	var scrolls int
	for _, sc := range page.scripts {
		if strings.Contains(sc, "window.scrollTo(0, document.body.scrollHeight)") {
			scrolls++
		}
	}
	assert.Equal(t, 1, scrolls)
	assert.True(t, page.ran("window.scrollTo(0, 0)"))
}

func TestScrollConfigurationsSteps(t *testing.T) {
	s := &Scraper{}
	page := &fakePage{results: map[string]any{
		configWidthJS: map[string]int{"scroll": 1000, "client": 400},
	}}
	s.scrollConfigurations(context.Background(), page)

	for _, pos := range []string{"= 0;", "= 200;", "= 400;", "= 600;", "= 800;", "= 1000;"} {
		assert.True(t, page.ran("scrollLeft "+pos), "missing scroll to %s", pos)
	}
}

func TestScrollConfigurationsMissingContainer(t *testing.T) {
	s := &Scraper{}
	page := &fakePage{}
	s.scrollConfigurations(context.Background(), page)
	assert.False(t, page.ran("scrollLeft ="))
}
