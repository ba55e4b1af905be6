package carexpert

import (
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

// ScrapeVariants reads every configuration listed in the horizontal
// configurations strip of a model page.
func (s *Scraper) ScrapeVariants(ctx context.Context, page Page, pageURL string) ([]VariantInfo, error) {
	s.scrollConfigurations(ctx, page)

	doc, err := s.document(ctx, page, "variants", pageURL)
	if err != nil {
		return nil, err
	}
	return ParseVariantsPage(doc, pageURL)
}

// ParseVariantsPage returns one VariantInfo per configuration article.
func ParseVariantsPage(doc *goquery.Document, pageURL string) ([]VariantInfo, error) {
	articles := doc.Find(selConfigurations).Find(selConfigArticle)
	if articles.Length() == 0 {
		slog.Debug("no configurations in scroll container, searching whole page")
		articles = doc.Find(selConfigArticle)
	}

	var model string
	if ref, err := ParseModelURL(pageURL); err == nil {
		model = ref.Model
	}

	var out []VariantInfo
	articles.Each(func(i int, article *goquery.Selection) {
		name := text(article.Find(selConfigName).First())
		if name == "" {
			slog.Warn("skipping configuration without a name", "index", i+1)
			return
		}
		out = append(out, VariantInfo{ModelName: model, VariantName: name})
	})
	if len(out) == 0 {
		return nil, notFound("variant configurations")
	}
	slog.Info("variants parsed", "url", pageURL, "count", len(out))
	return out, nil
}
