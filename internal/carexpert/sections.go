package carexpert

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const sectionIDPrefix = "vehicle-spec-"

// SectionsResult holds the feature and specification rows of a variant page.
type SectionsResult struct {
	Features       []Feature
	Specifications []Specification
}

func (r *SectionsResult) Items() []Item {
	items := make([]Item, 0, len(r.Features)+len(r.Specifications))
	for _, f := range r.Features {
		items = append(items, f)
	}
	for _, s := range r.Specifications {
		items = append(items, s)
	}
	return items
}

// ScrapeVariantSections reads the vehicle-spec-* sections of a variant page
// and splits their rows into features and specifications.
func (s *Scraper) ScrapeVariantSections(ctx context.Context, page Page, pageURL string) (*SectionsResult, error) {
	ref, err := ParseVariantURL(pageURL)
	if err != nil {
		return nil, err
	}

	s.scrollPage(ctx, page, 10)
	s.expandAccordions(ctx, page)

	doc, err := s.document(ctx, page, "sections", pageURL)
	if err != nil {
		return nil, err
	}
	return ParseVariantSections(doc, ref)
}

// ParseVariantSections walks category buttons and spec sections in document
// order. A section belongs to the closest category button before it; without
// one the enclosing section's h2 is used, then the section id.
func ParseVariantSections(doc *goquery.Document, ref VariantRef) (*SectionsResult, error) {
	res := &SectionsResult{}
	var current string
	sections := 0

	doc.Find(selSectionOrCategory).Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "button" {
			label := text(node.Find("div").First())
			if label == "" {
				label = text(node)
			}
			if label != "" {
				current = label
			}
			return
		}

		sections++
		id, _ := node.Attr("id")
		subHeading := title(words(strings.TrimPrefix(id, sectionIDPrefix)))

		header := current
		if header == "" {
			header = text(node.Closest("section").ChildrenFiltered("h2").First())
		}
		if header == "" {
			header = subHeading
		}
		category, isFeature := MapSectionCategory(header)
		slog.Debug("section mapped",
			"section", id,
			"header", header,
			"category", category,
			"feature", isFeature)

		node.Find("p").Each(func(_ int, p *goquery.Selection) {
			spans := p.Find("span")
			if spans.Length() < 2 {
				return
			}
			name, value := text(spans.First()), text(spans.Last())
			if name == "" || value == "" {
				return
			}
			if isFeature {
				res.Features = append(res.Features, Feature{
					ModelName:           ref.Model,
					MakeYear:            ref.Year,
					VariantName:         ref.Variant,
					FeatureCategoryName: category,
					FeatureName:         name,
					FeatureValue:        value,
				})
				return
			}
			res.Specifications = append(res.Specifications, Specification{
				ModelName:                 ref.Model,
				MakeYear:                  ref.Year,
				VariantName:               ref.Variant,
				SpecificationCategoryName: category,
				SpecificationName:         name,
				SpecificationValue:        value,
			})
		})
	})

	if sections == 0 {
		return nil, notFound("vehicle-spec sections")
	}
	slog.Info("variant sections parsed",
		"model", ref.Model,
		"variant", ref.Variant,
		"sections", sections,
		"features", len(res.Features),
		"specifications", len(res.Specifications))
	return res, nil
}
