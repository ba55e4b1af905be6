package carexpert

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeFAQ reads only the FAQ accordions of a model page.
func (s *Scraper) ScrapeFAQ(ctx context.Context, page Page, pageURL string) ([]FAQ, error) {
	s.scrollPage(ctx, page, 3)
	s.expandAccordions(ctx, page)

	doc, err := s.document(ctx, page, "faq", pageURL)
	if err != nil {
		return nil, err
	}
	return ParseFAQPage(doc, pageURL)
}

// ParseFAQPage labels each FAQ with "<Brand> <Model>".
func ParseFAQPage(doc *goquery.Document, pageURL string) ([]FAQ, error) {
	info, err := parseModelInfo(doc, pageURL)
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(info.BrandName + " " + info.ModelName)

	faqs := parseFAQs(doc, model)
	if len(faqs) == 0 {
		return nil, notFound("faq accordions")
	}
	slog.Info("faqs parsed", "model", model, "count", len(faqs))
	return faqs, nil
}
