package carexpert

import (
	"context"
	"fmt"
	"sort"
)

// Spider names.
const (
	SpiderModel         = "model"
	SpiderVariants      = "variants"
	SpiderSpecs         = "specs"
	SpiderSections      = "sections"
	SpiderFAQ           = "faq"
	SpiderComprehensive = "comprehensive"
)

// Result is what one spider produced for one page.
type Result struct {
	URL   string
	Items []Item
	// Follow lists variant pages to crawl next (comprehensive only).
	Follow []string
}

// SpiderFunc extracts one page.
type SpiderFunc func(ctx context.Context, s *Scraper, page Page, pageURL string) (*Result, error)

var spiders = map[string]SpiderFunc{
	SpiderModel: func(ctx context.Context, s *Scraper, page Page, pageURL string) (*Result, error) {
		res, err := s.ScrapeModel(ctx, page, pageURL)
		if err != nil {
			return nil, err
		}
		return &Result{URL: pageURL, Items: res.Items()}, nil
	},
	SpiderVariants: func(ctx context.Context, s *Scraper, page Page, pageURL string) (*Result, error) {
		vs, err := s.ScrapeVariants(ctx, page, pageURL)
		if err != nil {
			return nil, err
		}
		return &Result{URL: pageURL, Items: toItems(vs)}, nil
	},
	SpiderSpecs: func(ctx context.Context, s *Scraper, page Page, pageURL string) (*Result, error) {
		specs, err := s.ScrapeSpecs(ctx, page, pageURL)
		if err != nil {
			return nil, err
		}
		return &Result{URL: pageURL, Items: toItems(specs)}, nil
	},
	SpiderSections: func(ctx context.Context, s *Scraper, page Page, pageURL string) (*Result, error) {
		res, err := s.ScrapeVariantSections(ctx, page, pageURL)
		if err != nil {
			return nil, err
		}
		return &Result{URL: pageURL, Items: res.Items()}, nil
	},
	SpiderFAQ: func(ctx context.Context, s *Scraper, page Page, pageURL string) (*Result, error) {
		faqs, err := s.ScrapeFAQ(ctx, page, pageURL)
		if err != nil {
			return nil, err
		}
		return &Result{URL: pageURL, Items: toItems(faqs)}, nil
	},
	SpiderComprehensive: func(ctx context.Context, s *Scraper, page Page, pageURL string) (*Result, error) {
		res, err := s.ScrapeModel(ctx, page, pageURL)
		if err != nil {
			return nil, err
		}
		return &Result{URL: pageURL, Items: res.Items(), Follow: res.VariantURLs}, nil
	},
}

// Spider looks up a spider by name.
func Spider(name string) (SpiderFunc, error) {
	fn, ok := spiders[name]
	if !ok {
		return nil, fmt.Errorf("unknown spider %q", name)
	}
	return fn, nil
}

// SpiderNames lists the registered spiders.
func SpiderNames() []string {
	names := make([]string, 0, len(spiders))
	for n := range spiders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func toItems[T Item](in []T) []Item {
	out := make([]Item, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
