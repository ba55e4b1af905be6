package carexpert

import (
	"sort"
	"strings"
)

// SpecCategoryMapping maps spec accordion headers on variant spec pages to
// output categories. Unlisted headers map to DefaultSpecCategory.
var SpecCategoryMapping = map[string]string{
	"Engine":                    "Engine & Transmission",
	"Transmission & Drivetrain": "Engine & Transmission",
	"Fuel":                      "Capacity",
	"Wheels & Tyres":            "Suspensions, Brakes, Steering & Tyres",
	"Dimensions & Weights":      "Dimensions & Weight",
	"Other":                     "Capacity",
	"Safety":                    "Suspensions, Brakes, Steering & Tyres",
}

const (
	DefaultSpecCategory    = "Capacity"
	DefaultFeatureCategory = "Other"
)

// FeatureCategoryMapping maps lowercased section headers to feature categories.
var FeatureCategoryMapping = map[string]string{
	"convenience":     "Comfort & Convenience",
	"instrumentation": "Instrumentation",
	"body exterior":   "Exterior",
	"doors":           "Doors, Windows, Mirrors & Wipers",
	"lights":          "Lighting",
	"visibility":      "Doors, Windows, Mirrors & Wipers",
	"audio":           "Entertainment, Information & Communication",
	"interior trim":   "Seats & Upholstery",
	"safety":          "Safety",
	"seats":           "Seats & Upholstery",
	"storage":         "Storage",
	"ventilation":     "Comfort & Convenience",
	"locks":           "Locks & Security",
	"service":         "Manufacturer Warranty",
}

// SectionSpecMapping maps lowercased section headers to spec categories.
var SectionSpecMapping = map[string]string{
	"engine":       "Engine & Transmission",
	"performance":  "Engine & Transmission",
	"transmission": "Engine & Transmission",
	"brakes":       "Suspensions, Brakes, Steering & Tyres",
	"steering":     "Suspensions, Brakes, Steering & Tyres",
	"suspension":   "Suspensions, Brakes, Steering & Tyres",
	"wheels":       "Suspensions, Brakes, Steering & Tyres",
	"dimensions":   "Dimensions & Weight",
	"weights":      "Dimensions & Weight",
	"fuel":         "Capacity",
	"cargo area":   "Capacity",
}

var featureCategories = map[string]bool{
	"Comfort & Convenience":                      true,
	"Instrumentation":                            true,
	"Exterior":                                   true,
	"Doors, Windows, Mirrors & Wipers":           true,
	"Lighting":                                   true,
	"Entertainment, Information & Communication": true,
	"Seats & Upholstery":                         true,
	"Safety":                                     true,
	"Storage":                                    true,
	"Ventilation":                                true,
	"Locks & Security":                           true,
}

var specCategories = map[string]bool{
	"Engine & Transmission":                 true,
	"Suspensions, Brakes, Steering & Tyres": true,
	"Dimensions & Weight":                   true,
	"Capacity":                              true,
	"Manufacturer Warranty":                 true,
}

// Ordered keys so partial matching is deterministic.
var (
	featureKeys = sortedKeys(FeatureCategoryMapping)
	specKeys    = sortedKeys(SectionSpecMapping)
)

// MapSpecCategory maps a spec accordion header.
func MapSpecCategory(header string) string {
	if c, ok := SpecCategoryMapping[strings.TrimSpace(header)]; ok {
		return c
	}
	return DefaultSpecCategory
}

// MapSectionCategory maps a feature/spec section header to an output category
// and reports whether rows under it are features. Exact matches win, then
// partial matches against feature headers, then spec headers. Unknown headers
// are features under DefaultFeatureCategory.
func MapSectionCategory(header string) (category string, isFeature bool) {
	h := strings.ToLower(strings.TrimSpace(header))

	switch {
	case FeatureCategoryMapping[h] != "":
		category, isFeature = FeatureCategoryMapping[h], true
	case SectionSpecMapping[h] != "":
		category, isFeature = SectionSpecMapping[h], false
	default:
		category, isFeature = DefaultFeatureCategory, true
		if k, ok := partialMatch(h, featureKeys); ok {
			category, isFeature = FeatureCategoryMapping[k], true
		} else if k, ok := partialMatch(h, specKeys); ok {
			category, isFeature = SectionSpecMapping[k], false
		}
	}

	if featureCategories[category] {
		isFeature = true
	} else if specCategories[category] {
		isFeature = false
	}
	return category, isFeature
}

func partialMatch(h string, keys []string) (string, bool) {
	if h == "" {
		return "", false
	}
	for _, k := range keys {
		if strings.Contains(h, k) || strings.Contains(k, h) {
			return k, true
		}
	}
	return "", false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
