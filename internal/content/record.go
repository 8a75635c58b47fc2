// Package content loads calculator content documents.
//
// Each calculator lives in one JSON document keyed by locale code. The store
// is loaded once, fail-fast, and is read-only afterwards.
package content

import (
	"fmt"
	"sort"

	"github.com/quick-calculator/calcdir/internal/errors"
)

// Category groups calculators on the site.
type Category string

const (
	CategoryFinancial  Category = "financial"
	CategoryHealth     Category = "health"
	CategoryMath       Category = "math"
	CategoryConversion Category = "conversion"
	CategoryUtility    Category = "utility"
	CategoryLifestyle  Category = "lifestyle"
	CategoryOther      Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFinancial,
	CategoryHealth,
	CategoryMath,
	CategoryConversion,
	CategoryUtility,
	CategoryLifestyle,
	CategoryOther,
}

// ParseCategory maps a raw value to a Category. An empty value is "other".
func ParseCategory(raw string) (Category, error) {
	if raw == "" {
		return CategoryOther, nil
	}
	for _, c := range Categories {
		if string(c) == raw {
			return c, nil
		}
	}

	return "", fmt.Errorf("unknown category %q", raw)
}

// LocaleContent is one locale's section of a calculator document.
type LocaleContent struct {
	Title           string         `json:"title"`
	SEOTitle        string         `json:"seoTitle"`
	MetaDescription string         `json:"metaDescription"`
	Summary         string         `json:"summary"`
	Slug            string         `json:"slug"`
	Category        string         `json:"category"`
	Component       string         `json:"component"`
	SEOContent      map[string]any `json:"seoContent"`

	// Raw is the whole decoded section, including free-form keys.
	Raw map[string]any `json:"-"`
}

// Record is a calculator with all of its locale sections.
type Record struct {
	Slug        string
	Filename    string
	Category    Category
	ComponentID string
	Locales     map[string]*LocaleContent
}

// GetLocale returns the record's section for locale. A missing section is
// reported through the boolean, not as an error.
func GetLocale(r *Record, locale string) (*LocaleContent, bool) {
	if r == nil {
		return nil, false
	}
	lc, ok := r.Locales[locale]

	return lc, ok && lc != nil
}

// Locale is the method form of GetLocale.
func (r *Record) Locale(locale string) (*LocaleContent, bool) {
	return GetLocale(r, locale)
}

// LocaleCodes returns the locales present in the document, sorted.
func (r *Record) LocaleCodes() []string {
	codes := make([]string, 0, len(r.Locales))
	for code := range r.Locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return codes
}

// HasComponentField reports whether the base section declares a component.
func (r *Record) HasComponentField(base string) bool {
	lc, ok := r.Locale(base)
	if !ok {
		return false
	}
	_, present := lc.Raw["component"]

	return present
}

func notFound(code, subject string) error {
	return errors.NewNotFoundError(code, "no such calculator").WithSubject(subject)
}
