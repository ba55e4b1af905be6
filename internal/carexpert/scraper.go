// Package carexpert extracts model, variant, feature, specification, FAQ and
// pros/cons records from carexpert.com.au pages held in a pooled tab.
package carexpert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNotFound marks a page element that was expected but absent.
var ErrNotFound = errors.New("element not found")

// SnapshotSaver stores raw page HTML for debugging.
type SnapshotSaver interface {
	SaveHTML(label, pageURL, html string) (string, error)
}

// Scraper runs the page routines. The zero value works but skips all
// interaction waits.
type Scraper struct {
	// DelayScale multiplies every interaction wait; 0 disables them.
	DelayScale float64
	// Snapshots, when set, receives a copy of every page before parsing.
	Snapshots SnapshotSaver
}

func NewScraper(snapshots SnapshotSaver) *Scraper {
	return &Scraper{DelayScale: 1, Snapshots: snapshots}
}

// document re-reads the live page and parses it.
func (s *Scraper) document(ctx context.Context, page Page, label, pageURL string) (*goquery.Document, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	if s.Snapshots != nil {
		if id, err := s.Snapshots.SaveHTML(label, pageURL, html); err != nil {
			slog.Debug("debug snapshot not saved", "label", label, "error", err)
		} else {
			slog.Debug("debug snapshot saved", "label", label, "id", id)
		}
	}
	return parseHTML(html)
}

func parseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// text returns the whitespace-collapsed text of a selection.
func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// ownText returns only the selection's direct text nodes.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}
