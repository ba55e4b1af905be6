package carexpert

import (
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeSpecs reads the specification tables of a variant page. Brand,
// model, year and variant come from the URL.
func (s *Scraper) ScrapeSpecs(ctx context.Context, page Page, pageURL string) ([]Specification, error) {
	ref, err := ParseVariantURL(pageURL)
	if err != nil {
		return nil, err
	}

	s.scrollPage(ctx, page, 10)
	s.clickExpanders(ctx, page)
	s.expandAccordions(ctx, page)

	doc, err := s.document(ctx, page, "specs", pageURL)
	if err != nil {
		return nil, err
	}
	return ParseSpecPage(doc, ref)
}

// ParseSpecPage maps each accordion to a category and reads its th/td rows.
func ParseSpecPage(doc *goquery.Document, ref VariantRef) ([]Specification, error) {
	accordions := doc.Find(selAccordion)
	if accordions.Length() == 0 {
		return nil, notFound("specification accordions")
	}

	var out []Specification
	accordions.Each(func(_ int, acc *goquery.Selection) {
		header := text(acc.Find(selAccordionTitle).First())
		category := MapSpecCategory(header)

		acc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
			name := text(row.Find("th").First())
			if name == "" {
				return
			}
			out = append(out, Specification{
				ModelName:                 ref.Model,
				MakeYear:                  ref.Year,
				VariantName:               ref.Variant,
				SpecificationCategoryName: category,
				SpecificationName:         name,
				SpecificationValue:        text(row.Find("td").First()),
			})
		})
	})
	slog.Info("specifications parsed", "model", ref.Model, "variant", ref.Variant, "count", len(out))
	return out, nil
}
