package carexpert

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ModelResult is everything read from one model page.
type ModelResult struct {
	Model       ModelInfo
	ProsCons    []ProsCons
	FAQs        []FAQ
	Variants    []VariantInfo
	VariantURLs []string
}

// Items flattens the result for output.
func (r *ModelResult) Items() []Item {
	items := []Item{r.Model}
	for _, v := range r.ProsCons {
		items = append(items, v)
	}
	for _, v := range r.Variants {
		items = append(items, v)
	}
	for _, v := range r.FAQs {
		items = append(items, v)
	}
	return items
}

// ScrapeModel expands the model page's collapsible sections and reads the
// model record, pros/cons, variant cards and links, and FAQs.
func (s *Scraper) ScrapeModel(ctx context.Context, page Page, pageURL string) (*ModelResult, error) {
	s.clickButton(ctx, page, textReadMore)
	s.clickButton(ctx, page, textShowStats)
	s.scrollPage(ctx, page, 3)
	s.expandAccordions(ctx, page)

	doc, err := s.document(ctx, page, "model", pageURL)
	if err != nil {
		return nil, err
	}
	return ParseModelPage(doc, pageURL)
}

// ParseModelPage reads a model page snapshot. Only the model name is
// required; missing optional sections yield empty slices.
func ParseModelPage(doc *goquery.Document, pageURL string) (*ModelResult, error) {
	info, err := parseModelInfo(doc, pageURL)
	if err != nil {
		return nil, err
	}

	res := &ModelResult{Model: info}
	res.ProsCons = parseProsCons(doc, info.ModelName)
	res.FAQs = parseFAQs(doc, info.ModelName)
	res.VariantURLs = parseVariantURLs(doc, pageURL)
	res.Variants = parseVariantCards(doc, info.BrandName+" "+info.ModelName)

	slog.Info("model page parsed",
		"brand", info.BrandName,
		"model", info.ModelName,
		"pros_cons", len(res.ProsCons),
		"faqs", len(res.FAQs),
		"variants", len(res.Variants),
		"variant_urls", len(res.VariantURLs))
	return res, nil
}

func parseModelInfo(doc *goquery.Document, pageURL string) (ModelInfo, error) {
	var info ModelInfo

	name := text(doc.Find(selModelName).First())
	if name == "" {
		name = text(doc.Find(selModelNameHero).First())
	}
	if name == "" {
		name = text(doc.Find("h1").First())
	}

	switch parts := strings.SplitN(name, " ", 2); {
	case len(parts) == 2:
		info.BrandName, info.ModelName = parts[0], parts[1]
	case name != "":
		info.ModelName = name
	default:
		ref, err := ParseModelURL(pageURL)
		if err != nil {
			return ModelInfo{}, notFound("model name")
		}
		slog.Warn("model name missing from page, using url", "url", pageURL)
		info.BrandName, info.ModelName = ref.Brand, ref.Model
	}

	var paragraphs []string
	doc.Find(selDescription).Each(func(_ int, p *goquery.Selection) {
		if t := text(p); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if len(paragraphs) == 0 {
		if t := text(doc.Find(selDescriptionHero).First()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	}
	info.ModelDescription = strings.Join(paragraphs, " ")

	info.BodyType = statValue(doc, textBodyTypes)
	return info, nil
}

// statValue reads the paragraph that follows a label paragraph in the stats
// panel, e.g. <p>Body Types</p><p>SUV</p>.
func statValue(doc *goquery.Document, label string) string {
	scope := doc.Find(selStatsContainer)
	if scope.Length() == 0 {
		scope = doc.Find(selVehicleSpec)
	}
	if scope.Length() == 0 {
		scope = doc.Selection
	}
	labelP := scope.Find("p").FilterFunction(func(_ int, p *goquery.Selection) bool {
		return text(p) == label
	}).First()
	return text(labelP.NextAllFiltered("p").First())
}

func parseProsCons(doc *goquery.Document, model string) []ProsCons {
	scope := doc.Find(selProsConsSection).First()
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	var out []ProsCons
	for _, kind := range []struct{ heading, label string }{{"Pros", "Pro"}, {"Cons", "Con"}} {
		h3 := scope.Find("h3").FilterFunction(func(_ int, h *goquery.Selection) bool {
			return strings.Contains(h.Text(), kind.heading)
		}).First()
		if h3.Length() == 0 {
			slog.Debug("pros/cons heading not found", "heading", kind.heading)
			continue
		}
		column := h3.Closest(selProsConsColumn)
		if column.Length() == 0 {
			column = h3.Parent().Parent()
		}
		items := column.Find(selProsConsList).First().Find("li")
		if items.Length() == 0 {
			items = column.Find("ul").First().Find("li")
		}
		items.Each(func(_ int, li *goquery.Selection) {
			if t := text(li); t != "" {
				out = append(out, ProsCons{ModelName: model, ProsConsType: kind.label, ProsConsContent: t})
			}
		})
	}
	return out
}

func parseFAQs(doc *goquery.Document, model string) []FAQ {
	var out []FAQ
	doc.Find(selAccordion).Each(func(i int, acc *goquery.Selection) {
		question := text(acc.Find(selAccordionTitle).First())
		if question == "" {
			question = text(acc.Find("button").First())
		}

		content := acc.Find(selAccordionContent).First()
		answer := text(content.Find(selAnswerParagraph).First())
		if answer == "" {
			answer = text(content.Find("p").First())
		}
		if answer == "" {
			answer = text(content)
		}

		if question == "" || answer == "" {
			slog.Debug("skipping incomplete faq", "index", i)
			return
		}
		out = append(out, FAQ{ModelName: model, FAQQuestion: question, FAQAnswer: answer})
	})
	return out
}

// parseVariantURLs collects deduplicated absolute variant links. Generic
// model-level features links have too few path segments and are dropped.
func parseVariantURLs(doc *goquery.Document, pageURL string) []string {
	links := doc.Find(selVariantList)
	if links.Length() == 0 {
		links = doc.Find(selVariantLinks)
	}

	seen := map[string]bool{}
	var out []string
	links.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		abs := Absolute(pageURL, href)
		if seen[abs] || strings.Count(abs, "/") < minVariantPath {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	})
	return out
}

var pricePrefix = regexp.MustCompile(`Price from\s*`)

// parseVariantCards reads the variant cards on a model page.
func parseVariantCards(doc *goquery.Document, model string) []VariantInfo {
	cards := doc.Find(selVariantCard)
	if cards.Length() == 0 {
		cards = doc.Find(selVariantLinks)
	}

	var out []VariantInfo
	cards.Each(func(_ int, card *goquery.Selection) {
		name := text(card.Find("h2").First())
		if name == "" {
			return
		}
		price := text(card.Find(selVariantCardPrice).First())
		if price == "" {
			price = text(card.Find("div").FilterFunction(func(_ int, d *goquery.Selection) bool {
				t := ownText(d)
				return strings.Contains(t, "Price from") || strings.Contains(t, "$")
			}).First())
		}
		price = strings.TrimSpace(strings.ReplaceAll(pricePrefix.ReplaceAllString(price, ""), "†", ""))

		out = append(out, VariantInfo{
			ModelName:    strings.TrimSpace(model),
			MakeYear:     "2025",
			VariantName:  name,
			VariantPrice: price,
		})
	})
	return out
}
