package carexpert

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	BaseURL     = "https://www.carexpert.com.au"
	DefaultYear = 2025
)

// title upper-cases the first letter of each word. Casers are not safe for
// concurrent use, so one is built per call.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// ModelRef names a model page.
type ModelRef struct {
	Brand string // title case, e.g. "Ford"
	Model string // upper case, e.g. "RANGER"
	Slug  string // brand/model path, e.g. "ford/ranger"
}

// VariantRef names a variant page.
type VariantRef struct {
	ModelRef
	Year    int
	Variant string
}

func pathSegments(raw string) ([]string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", raw, err)
	}
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs, nil
}

func words(slug string) string {
	return strings.ReplaceAll(slug, "-", " ")
}

// ParseModelURL reads brand and model from https://www.carexpert.com.au/<brand>/<model>.
// Trailing segments after the model are ignored.
func ParseModelURL(raw string) (ModelRef, error) {
	segs, err := pathSegments(raw)
	if err != nil {
		return ModelRef{}, err
	}
	if len(segs) < 2 {
		return ModelRef{}, fmt.Errorf("%w: no brand/model in %q", ErrNotFound, raw)
	}
	return ModelRef{
		Brand: title(words(segs[0])),
		Model: strings.ToUpper(words(segs[1])),
		Slug:  segs[0] + "/" + segs[1],
	}, nil
}

// ParseVariantURL understands both variant page shapes:
//
//	/<brand>/<model>/<year>-<variant>-<code>
//	/<brand>/<model>/<variant>/features-and-specs
//
// Missing parts fall back to DefaultYear and "Unknown".
func ParseVariantURL(raw string) (VariantRef, error) {
	model, err := ParseModelURL(raw)
	if err != nil {
		return VariantRef{}, err
	}
	segs, _ := pathSegments(raw)
	ref := VariantRef{ModelRef: model, Year: DefaultYear, Variant: "Unknown"}
	if len(segs) < 3 {
		return ref, nil
	}

	part := segs[2]
	if part == "features-and-specs" {
		return ref, nil
	}
	if len(segs) >= 4 && segs[3] == "features-and-specs" {
		ref.Variant = title(words(part))
		return ref, nil
	}

	pieces := strings.Split(part, "-")
	if len(pieces) >= 2 {
		if year, err := strconv.Atoi(pieces[0]); err == nil {
			ref.Year = year
			ref.Variant = title(pieces[1])
			return ref, nil
		}
	}
	ref.Variant = title(pieces[0])
	return ref, nil
}

// SafeName makes s usable as a single path element.
func SafeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(s)
}

// Absolute resolves href against the page it was found on.
func Absolute(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		base, _ = url.Parse(BaseURL)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
